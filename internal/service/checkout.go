package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/VATuan2710/final-project-thuc-tap/internal/cart"
	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
	"github.com/VATuan2710/final-project-thuc-tap/internal/event"
	"github.com/VATuan2710/final-project-thuc-tap/internal/repository"
	apperrors "github.com/VATuan2710/final-project-thuc-tap/pkg/errors"
)

// PaymentGateway charges an order and returns a transaction id.
type PaymentGateway interface {
	Charge(ctx context.Context, order *domain.Order) (string, error)
}

// SimulatedGateway approves roughly nine out of ten charges after a short
// artificial delay. No real payment provider is contacted.
type SimulatedGateway struct{}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (g *SimulatedGateway) Charge(ctx context.Context, order *domain.Order) (string, error) {
	select {
	case <-time.After(150 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if rand.Float64() >= 0.9 {
		return "", apperrors.PaymentFailed("card declined by issuer")
	}

	txn := "TXN_" + strconv.FormatInt(time.Now().Unix(), 10) + "_" + strconv.FormatInt(rand.Int63n(1<<40), 36)
	return txn, nil
}

// CheckoutService places orders from a session's bound cart.
type CheckoutService struct {
	orderRepo repository.OrderRepository
	gateway   PaymentGateway
	producer  *event.Producer
	logger    *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	gateway PaymentGateway,
	producer *event.Producer,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		orderRepo: orderRepo,
		gateway:   gateway,
		producer:  producer,
		logger:    logger,
	}
}

// PlaceOrderInput holds the parameters for placing an order.
type PlaceOrderInput struct {
	PaymentMethod   domain.PaymentMethod
	ShippingAddress domain.Address
	Customer        domain.CustomerInfo
}

// PlaceOrder snapshots the cart into an order, runs the payment charge,
// and clears the cart on success. A declined charge leaves the cart
// intact so the customer can retry.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string, store *cart.Store, input PlaceOrderInput) (*domain.Order, error) {
	snapshot := store.Snapshot()
	if len(snapshot.Lines) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Lines:           snapshot.Lines,
		Total:           snapshot.Total,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		Customer:        input.Customer,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	txn, err := s.gateway.Charge(ctx, order)
	if err != nil {
		// The order stays pending so the customer can retry the payment.
		order.PaymentStatus = domain.PaymentStatusFailed
		if uerr := s.orderRepo.SetPayment(ctx, order.ID, order.Status, order.PaymentStatus, ""); uerr != nil {
			s.logger.ErrorContext(ctx, "failed to record declined payment",
				slog.String("order_id", order.ID),
				slog.String("error", uerr.Error()),
			)
		}
		s.logger.WarnContext(ctx, "payment declined",
			slog.String("order_id", order.ID),
			slog.String("user_id", userID),
		)
		return nil, fmt.Errorf("charge order: %w", err)
	}

	order.Status = domain.OrderStatusConfirmed
	order.PaymentStatus = domain.PaymentStatusCompleted
	order.TransactionID = txn
	if err := s.orderRepo.SetPayment(ctx, order.ID, order.Status, order.PaymentStatus, txn); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	store.Clear()

	// Publish order event (non-blocking on failure).
	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int64("total", order.Total),
		slog.String("transaction_id", txn),
	)

	return order, nil
}

// GetOrder returns one of the user's orders. Requesting another user's
// order reports not found rather than leaking its existence.
func (s *CheckoutService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != userID {
		return nil, apperrors.NotFound("order", orderID)
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *CheckoutService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
