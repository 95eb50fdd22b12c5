// Package redis implements the cart persistence provider on Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
	"github.com/VATuan2710/final-project-thuc-tap/internal/repository"
	apperrors "github.com/VATuan2710/final-project-thuc-tap/pkg/errors"
)

const keyPrefix = "cart:"

// CartRepository implements repository.CartRepository using Redis. Each
// user's cart is one JSON document under a single key, replaced wholesale
// on every write.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ repository.CartRepository = (*CartRepository)(nil)

// NewCartRepository creates a new Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Fetch retrieves a user's cart document.
func (r *CartRepository) Fetch(ctx context.Context, userID string) (*domain.UserCartRecord, error) {
	key := keyPrefix + userID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var rec domain.UserCartRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return &rec, nil
}

// Write overwrites a user's cart document with the full line list.
func (r *CartRepository) Write(ctx context.Context, userID string, lines []domain.CartLine, total int64) error {
	key := keyPrefix + userID

	rec := domain.UserCartRecord{
		UserID:    userID,
		Lines:     lines,
		Total:     total,
		UpdatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}
