// Package cart implements the in-memory shopping cart state container and
// the guest/user reconciliation protocol that runs on sign-in.
//
// A Store starts as a guest cart: local scratch state with no persisted
// identity. Binding it to a user runs the merge protocol against the
// persistence provider and switches the store to mirroring that user's
// persisted cart document. Mutations while bound are persisted in the
// background; persistence is never allowed to fail a cart operation.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
	"github.com/VATuan2710/final-project-thuc-tap/internal/repository"
	apperrors "github.com/VATuan2710/final-project-thuc-tap/pkg/errors"
)

// Store holds one session's cart state. All mutations are serialized by the
// store's lock; the returned snapshots are copies and safe to retain.
type Store struct {
	repo   repository.CartRepository
	writer *persistWriter
	logger *slog.Logger

	mu        sync.Mutex
	lines     []domain.CartLine
	total     int64
	ownership domain.Ownership
	userID    string
}

// NewStore creates an empty guest cart store backed by the given
// persistence provider.
func NewStore(repo repository.CartRepository, logger *slog.Logger) *Store {
	return &Store{
		repo:      repo,
		writer:    newPersistWriter(repo, logger),
		logger:    logger,
		ownership: domain.OwnershipGuest,
	}
}

// Close stops the background persistence writer, flushing the latest
// pending write first.
func (s *Store) Close() {
	s.writer.Close()
}

// Snapshot returns a copy of the current cart state.
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ItemCount returns the sum of all line quantities.
func (s *Store) ItemCount() int {
	return s.Snapshot().ItemCount()
}

// BoundUser returns the user the store is bound to, if any.
func (s *Store) BoundUser() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.ownership == domain.OwnershipUser
}

// AddItem adds quantity of the product to the cart, merging into an
// existing line for the same product. Quantities below 1 are treated as 1.
// The unit price is captured from the product snapshot at add time.
func (s *Store) AddItem(product domain.Product, quantity int) domain.Cart {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.findLocked(product.ID); i >= 0 {
		s.lines[i].Quantity += quantity
	} else {
		s.lines = append(s.lines, domain.CartLine{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Product:   product,
			Quantity:  quantity,
			UnitPrice: product.Price,
		})
	}

	s.total = domain.TotalOf(s.lines)
	s.persistLocked()
	return s.snapshotLocked()
}

// RemoveItem deletes the line for the given product. Removing an absent
// product is a no-op, not an error.
func (s *Store) RemoveItem(productID string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.findLocked(productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		s.total = domain.TotalOf(s.lines)
		s.persistLocked()
	}
	return s.snapshotLocked()
}

// UpdateQuantity sets the line's quantity to the given absolute value.
// A quantity of zero or less removes the line.
func (s *Store) UpdateQuantity(productID string, quantity int) domain.Cart {
	if quantity <= 0 {
		return s.RemoveItem(productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.findLocked(productID); i >= 0 {
		s.lines[i].Quantity = quantity
		s.total = domain.TotalOf(s.lines)
		s.persistLocked()
	}
	return s.snapshotLocked()
}

// Clear empties the cart. When bound, the empty state is persisted so a
// future login elsewhere sees the clear.
func (s *Store) Clear() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.total = 0
	s.persistLocked()
	return s.snapshotLocked()
}

// BindToUser runs the sign-in merge protocol and binds the store to the
// user's persisted cart document:
//
//   - If the persisted cart has at least one line, it wins: the local guest
//     lines are discarded wholesale and the persisted lines are adopted.
//     Guest additions are deliberately NOT merged in, so items can never be
//     duplicated across merges.
//   - If the persisted cart is empty or missing, the local guest lines are
//     written through as the user's new persisted cart and kept as-is.
//   - Any provider failure degrades to the second case: the user proceeds
//     with whatever is in their basket, and the error is only logged.
//
// The store always ends up bound. Calling BindToUser again for the same
// user re-runs the protocol, which is idempotent by construction.
//
// The whole read-then-write sequence runs under the store lock so that no
// mutation can interleave mid-merge. There is no cross-device locking: two
// devices binding the same user concurrently race on the provider, and the
// last write wins.
func (s *Store) BindToUser(ctx context.Context, userID string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.Fetch(ctx, userID)
	switch {
	case err == nil && len(rec.Lines) > 0:
		s.lines = append([]domain.CartLine(nil), rec.Lines...)
		s.total = domain.TotalOf(s.lines)

	default:
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("cart fetch failed during bind, promoting local cart",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		if len(s.lines) > 0 {
			if werr := s.repo.Write(ctx, userID, s.copyLinesLocked(), s.total); werr != nil {
				s.logger.Error("cart write failed during bind",
					slog.String("user_id", userID),
					slog.String("error", werr.Error()),
				)
			}
		}
	}

	s.ownership = domain.OwnershipUser
	s.userID = userID

	s.logger.Info("cart bound to user",
		slog.String("user_id", userID),
		slog.Int("lines", len(s.lines)),
		slog.Int64("total", s.total),
	)

	return s.snapshotLocked()
}

// Unbind resets the store to an empty guest cart. No persistence call is
// made: the user's server-side cart is preserved exactly as last written.
func (s *Store) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.total = 0
	s.ownership = domain.OwnershipGuest
	s.userID = ""
}

func (s *Store) findLocked(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) copyLinesLocked() []domain.CartLine {
	return append([]domain.CartLine(nil), s.lines...)
}

func (s *Store) snapshotLocked() domain.Cart {
	return domain.Cart{
		Lines:     s.copyLinesLocked(),
		Total:     s.total,
		Ownership: s.ownership,
	}
}

// persistLocked schedules a background write of the full current state when
// the store is bound. Guest mutations stay local.
func (s *Store) persistLocked() {
	if s.ownership != domain.OwnershipUser {
		return
	}
	s.writer.Enqueue(s.userID, s.copyLinesLocked(), s.total)
}
