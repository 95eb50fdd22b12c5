package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
	"github.com/VATuan2710/final-project-thuc-tap/internal/repository"
	apperrors "github.com/VATuan2710/final-project-thuc-tap/pkg/errors"
)

// WishlistService manages per-user saved products.
type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	logger       *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(wishlistRepo repository.WishlistRepository, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		logger:       logger,
	}
}

// Add saves a product to the user's wishlist. Adding a product that is
// already saved is a no-op.
func (s *WishlistService) Add(ctx context.Context, userID string, product domain.Product) error {
	if product.ID == "" {
		return apperrors.InvalidInput("product id is required")
	}

	exists, err := s.wishlistRepo.Contains(ctx, userID, product.ID)
	if err != nil {
		return fmt.Errorf("check wishlist: %w", err)
	}
	if exists {
		return nil
	}

	item := &domain.WishlistItem{
		UserID:    userID,
		ProductID: product.ID,
		Product:   product,
		AddedAt:   time.Now().UTC(),
	}
	if err := s.wishlistRepo.Add(ctx, item); err != nil {
		return fmt.Errorf("add wishlist item: %w", err)
	}

	s.logger.InfoContext(ctx, "wishlist item added",
		slog.String("user_id", userID),
		slog.String("product_id", product.ID),
	)
	return nil
}

// Remove deletes a product from the user's wishlist.
func (s *WishlistService) Remove(ctx context.Context, userID, productID string) error {
	if err := s.wishlistRepo.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}

// List returns the user's saved products, most recent first.
func (s *WishlistService) List(ctx context.Context, userID string) ([]*domain.WishlistItem, error) {
	items, err := s.wishlistRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	return items, nil
}
