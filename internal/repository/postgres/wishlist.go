package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
	"github.com/VATuan2710/final-project-thuc-tap/pkg/database"
	apperrors "github.com/VATuan2710/final-project-thuc-tap/pkg/errors"
)

// WishlistRepository implements repository.WishlistRepository using
// PostgreSQL. The product snapshot is stored as jsonb so the wishlist
// renders without a product lookup.
type WishlistRepository struct {
	db database.DBTX
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(db database.DBTX) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Add inserts a product into the user's wishlist.
// Uses ON CONFLICT DO NOTHING for idempotent behavior.
func (r *WishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) error {
	product, err := json.Marshal(item.Product)
	if err != nil {
		return fmt.Errorf("marshal product snapshot: %w", err)
	}

	query := `
		INSERT INTO wishlists (user_id, product_id, product, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, item.UserID, item.ProductID, product, item.AddedAt); err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}

	return nil
}

// Remove deletes a product from the user's wishlist.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	query := `DELETE FROM wishlists WHERE user_id = $1 AND product_id = $2`

	ct, err := r.db.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist item", productID)
	}

	return nil
}

// List returns the user's wishlist items, most recent first.
func (r *WishlistRepository) List(ctx context.Context, userID string) ([]*domain.WishlistItem, error) {
	query := `
		SELECT user_id, product_id, product, added_at
		FROM wishlists
		WHERE user_id = $1
		ORDER BY added_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	defer rows.Close()

	var items []*domain.WishlistItem
	for rows.Next() {
		var (
			item    domain.WishlistItem
			product []byte
		)
		if err := rows.Scan(&item.UserID, &item.ProductID, &product, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		if err := json.Unmarshal(product, &item.Product); err != nil {
			return nil, fmt.Errorf("unmarshal product snapshot: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist items: %w", err)
	}

	return items, nil
}

// Contains reports whether the product is in the user's wishlist.
func (r *WishlistRepository) Contains(ctx context.Context, userID, productID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM wishlists WHERE user_id = $1 AND product_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check wishlist item: %w", err)
	}

	return exists, nil
}
