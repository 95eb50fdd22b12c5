// Package repository defines the persistence ports the storefront core
// depends on. Implementations live in the redis and postgres subpackages.
package repository

import (
	"context"

	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
)

// CartRepository is the persistence provider contract for per-user cart
// documents. This is the only interface the cart store core depends on.
type CartRepository interface {
	// Fetch retrieves the persisted cart document for a user. Returns an
	// error wrapping the pkg/errors NotFound sentinel when no document exists.
	Fetch(ctx context.Context, userID string) (*domain.UserCartRecord, error)

	// Write overwrites the persisted cart document for a user with the full
	// line list and total.
	Write(ctx context.Context, userID string, lines []domain.CartLine, total int64) error
}

// UserRepository stores registered accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// OrderRepository stores placed orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)

	// SetPayment records the outcome of a payment attempt along with the
	// resulting order status.
	SetPayment(ctx context.Context, id string, status domain.OrderStatus, payment domain.PaymentStatus, transactionID string) error
}

// WishlistRepository stores per-user saved products.
type WishlistRepository interface {
	Add(ctx context.Context, item *domain.WishlistItem) error
	Remove(ctx context.Context, userID, productID string) error
	List(ctx context.Context, userID string) ([]*domain.WishlistItem, error)
	Contains(ctx context.Context, userID, productID string) (bool, error)
}
