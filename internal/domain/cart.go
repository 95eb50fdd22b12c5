package domain

import "time"

// Ownership describes who the in-memory cart belongs to.
type Ownership string

const (
	// OwnershipGuest marks a local-only scratch cart with no persisted identity.
	OwnershipGuest Ownership = "guest"
	// OwnershipUser marks a cart mirrored to a specific user's persisted record.
	OwnershipUser Ownership = "user_bound"
)

// CartLine is one product's presence in a cart. The embedded product
// snapshot is captured when the line is added and never re-fetched, so it
// can go stale relative to the catalog.
type CartLine struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice int64   `json:"unit_price"`
}

// Subtotal returns the line's contribution to the cart total.
func (l CartLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Cart is the in-memory aggregate: an ordered list of lines, unique by
// product ID, with a derived total.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	Total     int64      `json:"total"`
	Ownership Ownership  `json:"ownership"`
}

// TotalOf computes the sum of unit price times quantity over the given lines.
func TotalOf(lines []CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// ItemCount returns the sum of all line quantities.
func (c Cart) ItemCount() int {
	var count int
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// FindLine returns the index of the line holding the given product, or -1.
func (c Cart) FindLine(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// UserCartRecord is the persisted cart document, one per user identity.
// The cart store treats it as a mirror and merge target, not as state it
// owns the lifecycle of.
type UserCartRecord struct {
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	Total     int64      `json:"total"`
	UpdatedAt time.Time  `json:"updated_at"`
}
