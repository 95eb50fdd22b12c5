package domain

import "time"

// WishlistItem is one saved product on a user's wishlist.
type WishlistItem struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Product   Product   `json:"product"`
	AddedAt   time.Time `json:"added_at"`
}
