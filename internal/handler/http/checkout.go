package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
	"github.com/VATuan2710/final-project-thuc-tap/internal/service"
	"github.com/VATuan2710/final-project-thuc-tap/internal/session"
	"github.com/VATuan2710/final-project-thuc-tap/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout and order endpoints.
type CheckoutHandler struct {
	service  *service.CheckoutService
	registry *session.Registry
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, registry *session.Registry, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:  svc,
		registry: registry,
		logger:   logger,
	}
}

// PlaceOrderRequest is the JSON request body for placing an order.
type PlaceOrderRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=credit_card debit_card paypal bank_transfer cash_on_delivery"`

	ShippingAddress struct {
		Street  string `json:"street" validate:"required"`
		City    string `json:"city" validate:"required"`
		State   string `json:"state"`
		ZipCode string `json:"zip_code"`
		Country string `json:"country" validate:"required"`
	} `json:"shipping_address" validate:"required"`

	Customer struct {
		FullName    string `json:"full_name" validate:"required"`
		PhoneNumber string `json:"phone_number" validate:"required"`
		Email       string `json:"email" validate:"required,email"`
	} `json:"customer" validate:"required"`
}

// PlaceOrder handles POST /api/v1/checkout. The order is built from the
// session's cart, which must be bound to the authenticated user.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, response{
			Error: &errorResponse{Code: "INTERNAL_ERROR", Message: "session not established"},
		})
		return
	}

	var req PlaceOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	store := h.registry.GetOrCreate(sid)
	if bound, isBound := store.BoundUser(); !isBound || bound != userID {
		writeJSON(w, http.StatusConflict, response{
			Error: &errorResponse{Code: "CONFLICT", Message: "cart is not bound to the authenticated user"},
		})
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), userID, store, service.PlaceOrderInput{
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		ShippingAddress: domain.Address{
			Street:  req.ShippingAddress.Street,
			City:    req.ShippingAddress.City,
			State:   req.ShippingAddress.State,
			ZipCode: req.ShippingAddress.ZipCode,
			Country: req.ShippingAddress.Country,
		},
		Customer: domain.CustomerInfo{
			FullName:    req.Customer.FullName,
			PhoneNumber: req.Customer.PhoneNumber,
			Email:       req.Customer.Email,
		},
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: order})
}

// ListOrders handles GET /api/v1/orders
func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	orders, err := h.service.ListOrders(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}

	writeJSON(w, http.StatusOK, response{Data: orders})
}

// GetOrder handles GET /api/v1/orders/{orderId}
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	orderID := chi.URLParam(r, "orderId")
	order, err := h.service.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: order})
}
