package domain

// Product is a denormalized catalog snapshot. Prices are in VND, which has
// no minor unit, so int64 holds the face value directly.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         int64    `json:"price"`
	OriginalPrice int64    `json:"original_price,omitempty"`
	Category      string   `json:"category,omitempty"`
	Images        []string `json:"images,omitempty"`
	Stock         int      `json:"stock"`
	Rating        float64  `json:"rating,omitempty"`
}
