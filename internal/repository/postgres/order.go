package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
	"github.com/VATuan2710/final-project-thuc-tap/pkg/database"
	apperrors "github.com/VATuan2710/final-project-thuc-tap/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// Order lines, shipping address, and customer info are stored as jsonb
// snapshots since they are immutable once the order is placed.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order into the database.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("marshal order lines: %w", err)
	}
	address, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer info: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, lines, total, status, payment_status, payment_method, transaction_id, shipping_address, customer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.db.Exec(ctx, query,
		o.ID,
		o.UserID,
		lines,
		o.Total,
		o.Status,
		o.PaymentStatus,
		o.PaymentMethod,
		o.TransactionID,
		address,
		customer,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, user_id, lines, total, status, payment_status, payment_method, transaction_id, shipping_address, customer, created_at, updated_at
		FROM orders
		WHERE id = $1`

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, err
	}

	return o, nil
}

// ListByUser retrieves all orders for a user, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, lines, total, status, payment_status, payment_method, transaction_id, shipping_address, customer, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

// SetPayment records the payment outcome and resulting order status.
func (r *OrderRepository) SetPayment(ctx context.Context, id string, status domain.OrderStatus, payment domain.PaymentStatus, transactionID string) error {
	query := `
		UPDATE orders
		SET status = $1, payment_status = $2, transaction_id = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.db.Exec(ctx, query, status, payment, transactionID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order payment: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// scanOrder scans a single order row, decoding the jsonb snapshots.
func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		lines    []byte
		address  []byte
		customer []byte
	)

	err := row.Scan(
		&o.ID,
		&o.UserID,
		&lines,
		&o.Total,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.TransactionID,
		&address,
		&customer,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal order lines: %w", err)
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer info: %w", err)
	}

	return &o, nil
}
