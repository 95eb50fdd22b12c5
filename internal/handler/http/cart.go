package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/VATuan2710/final-project-thuc-tap/internal/cart"
	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
	"github.com/VATuan2710/final-project-thuc-tap/internal/event"
	"github.com/VATuan2710/final-project-thuc-tap/internal/session"
	"github.com/VATuan2710/final-project-thuc-tap/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints. Each browser
// session gets its own cart store from the registry.
type CartHandler struct {
	registry *session.Registry
	events   *event.Producer
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(registry *session.Registry, events *event.Producer, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		registry: registry,
		events:   events,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
// The product snapshot travels with the request so the cart can render
// offline from its own state.
type AddItemRequest struct {
	Product  ProductPayload `json:"product" validate:"required"`
	Quantity int            `json:"quantity" validate:"gte=0"`
}

// ProductPayload is the denormalized product snapshot captured at add time.
type ProductPayload struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name" validate:"required,min=1,max=500"`
	Description   string   `json:"description"`
	Price         int64    `json:"price" validate:"gte=0"`
	OriginalPrice int64    `json:"original_price" validate:"gte=0"`
	Category      string   `json:"category"`
	Images        []string `json:"images"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Rating        float64  `json:"rating" validate:"gte=0,lte=5"`
}

// UpdateQuantityRequest is the JSON request body for updating a line's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CartResponse is the JSON shape of a cart snapshot.
type CartResponse struct {
	Lines     []domain.CartLine `json:"lines"`
	Total     int64             `json:"total"`
	ItemCount int               `json:"item_count"`
	Ownership domain.Ownership  `json:"ownership"`
}

func cartResponse(c domain.Cart) CartResponse {
	if c.Lines == nil {
		c.Lines = []domain.CartLine{}
	}
	return CartResponse{
		Lines:     c.Lines,
		Total:     c.Total,
		ItemCount: c.ItemCount(),
		Ownership: c.Ownership,
	}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, response{Data: cartResponse(store.Snapshot())})
}

// GetItemCount handles GET /api/v1/cart/count
func (h *CartHandler) GetItemCount(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, response{Data: map[string]int{"count": store.ItemCount()}})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	snapshot := store.AddItem(domain.Product{
		ID:            req.Product.ID,
		Name:          req.Product.Name,
		Description:   req.Product.Description,
		Price:         req.Product.Price,
		OriginalPrice: req.Product.OriginalPrice,
		Category:      req.Product.Category,
		Images:        req.Product.Images,
		Stock:         req.Product.Stock,
		Rating:        req.Product.Rating,
	}, req.Quantity)

	h.publishUpdated(r, store, snapshot)
	writeJSON(w, http.StatusOK, response{Data: cartResponse(snapshot)})
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "productId is required"},
		})
		return
	}

	var req UpdateQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	snapshot := store.UpdateQuantity(productID, req.Quantity)
	h.publishUpdated(r, store, snapshot)
	writeJSON(w, http.StatusOK, response{Data: cartResponse(snapshot)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "productId is required"},
		})
		return
	}

	snapshot := store.RemoveItem(productID)
	h.publishUpdated(r, store, snapshot)
	writeJSON(w, http.StatusOK, response{Data: cartResponse(snapshot)})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	snapshot := store.Clear()

	if userID, bound := store.BoundUser(); bound {
		if err := h.events.PublishCartCleared(r.Context(), userID); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to publish cart.cleared event",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	writeJSON(w, http.StatusOK, response{Data: cartResponse(snapshot)})
}

// --- Helpers ---

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, response{
			Error: &errorResponse{Code: "INTERNAL_ERROR", Message: "session not established"},
		})
		return nil, false
	}
	return h.registry.GetOrCreate(sid), true
}

// publishUpdated emits a cart.updated event for bound carts. Guest carts
// have no user identity, so nothing is published for them.
func (h *CartHandler) publishUpdated(r *http.Request, store *cart.Store, snapshot domain.Cart) {
	userID, bound := store.BoundUser()
	if !bound {
		return
	}
	if err := h.events.PublishCartUpdated(r.Context(), userID, snapshot); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to publish cart.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
