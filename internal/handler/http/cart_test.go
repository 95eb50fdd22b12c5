package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
	"github.com/VATuan2710/final-project-thuc-tap/internal/event"
	"github.com/VATuan2710/final-project-thuc-tap/internal/session"
	apperrors "github.com/VATuan2710/final-project-thuc-tap/pkg/errors"
	pkgkafka "github.com/VATuan2710/final-project-thuc-tap/pkg/kafka"
)

// --- In-memory CartRepository ---

type memCartRepo struct {
	mu   sync.Mutex
	docs map[string]*domain.UserCartRecord
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{docs: make(map[string]*domain.UserCartRecord)}
}

func (m *memCartRepo) Fetch(ctx context.Context, userID string) (*domain.UserCartRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.docs[userID]
	if !ok {
		return nil, apperrors.NotFound("cart", userID)
	}
	return rec, nil
}

func (m *memCartRepo) Write(ctx context.Context, userID string, lines []domain.CartLine, total int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[userID] = &domain.UserCartRecord{
		UserID:    userID,
		Lines:     append([]domain.CartLine(nil), lines...),
		Total:     total,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

// --- Test helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func newCartTestRouter(t *testing.T) (http.Handler, *session.Registry) {
	t.Helper()
	registry := session.NewRegistry(newMemCartRepo(), testLogger())
	t.Cleanup(registry.Close)

	h := NewCartHandler(registry, testEventProducer(), testLogger())

	r := chi.NewRouter()
	r.Use(SessionCookie)
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Get("/count", h.GetItemCount)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productId}", h.UpdateQuantity)
		r.Delete("/items/{productId}", h.RemoveItem)
	})
	return r, registry
}

func addItemBody(t *testing.T, productID string, price int64, qty int) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(AddItemRequest{
		Product: ProductPayload{
			ID:    productID,
			Name:  "Product " + productID,
			Price: price,
			Stock: 10,
		},
		Quantity: qty,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func doRequest(router http.Handler, req *http.Request, sid string) *httptest.ResponseRecorder {
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sid})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartResponse {
	t.Helper()
	var env struct {
		Data CartResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

// --- Tests ---

func TestCartHandler_GetCart_EmptyGuestCart(t *testing.T) {
	router, _ := newCartTestRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), "")

	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeCart(t, rec)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, int64(0), cart.Total)
	assert.Equal(t, domain.OwnershipGuest, cart.Ownership)
}

func TestCartHandler_GetCart_SetsSessionCookie(t *testing.T) {
	router, _ := newCartTestRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), "")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestCartHandler_AddItem(t *testing.T) {
	router, _ := newCartTestRouter(t)
	sid := "2b1f4b9e-51f2-4b63-a6a1-000000000001"

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", addItemBody(t, "p1", 100_000, 2))
	rec := doRequest(router, req, sid)

	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeCart(t, rec)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "p1", cart.Lines[0].ProductID)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, int64(200_000), cart.Total)
	assert.Equal(t, 2, cart.ItemCount)
}

func TestCartHandler_AddItem_SameSessionAccumulates(t *testing.T) {
	router, _ := newCartTestRouter(t)
	sid := "2b1f4b9e-51f2-4b63-a6a1-000000000002"

	doRequest(router, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", addItemBody(t, "p1", 100_000, 1)), sid)
	rec := doRequest(router, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", addItemBody(t, "p1", 100_000, 2)), sid)

	cart := decodeCart(t, rec)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, int64(300_000), cart.Total)
}

func TestCartHandler_AddItem_DistinctSessionsAreIsolated(t *testing.T) {
	router, _ := newCartTestRouter(t)
	sidA := "2b1f4b9e-51f2-4b63-a6a1-00000000000a"
	sidB := "2b1f4b9e-51f2-4b63-a6a1-00000000000b"

	doRequest(router, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", addItemBody(t, "p1", 100_000, 1)), sidA)
	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), sidB)

	cart := decodeCart(t, rec)
	assert.Empty(t, cart.Lines)
}

func TestCartHandler_AddItem_ValidationError(t *testing.T) {
	router, _ := newCartTestRouter(t)

	body := bytes.NewBufferString(`{"product":{"id":"","name":""},"quantity":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body)
	rec := doRequest(router, req, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestCartHandler_UpdateQuantity(t *testing.T) {
	router, _ := newCartTestRouter(t)
	sid := "2b1f4b9e-51f2-4b63-a6a1-000000000003"

	doRequest(router, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", addItemBody(t, "p1", 100_000, 1)), sid)

	body := bytes.NewBufferString(`{"quantity":5}`)
	rec := doRequest(router, httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/p1", body), sid)

	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeCart(t, rec)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestCartHandler_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	router, _ := newCartTestRouter(t)
	sid := "2b1f4b9e-51f2-4b63-a6a1-000000000004"

	doRequest(router, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", addItemBody(t, "p1", 100_000, 2)), sid)

	body := bytes.NewBufferString(`{"quantity":0}`)
	rec := doRequest(router, httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/p1", body), sid)

	cart := decodeCart(t, rec)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, int64(0), cart.Total)
}

func TestCartHandler_RemoveItem_AbsentIsOK(t *testing.T) {
	router, _ := newCartTestRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/missing", nil), "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartHandler_ClearCart(t *testing.T) {
	router, _ := newCartTestRouter(t)
	sid := "2b1f4b9e-51f2-4b63-a6a1-000000000005"

	doRequest(router, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", addItemBody(t, "p1", 100_000, 2)), sid)
	rec := doRequest(router, httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil), sid)

	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeCart(t, rec)
	assert.Empty(t, cart.Lines)
}

func TestCartHandler_GetItemCount(t *testing.T) {
	router, _ := newCartTestRouter(t)
	sid := "2b1f4b9e-51f2-4b63-a6a1-000000000006"

	doRequest(router, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", addItemBody(t, "p1", 100_000, 3)), sid)
	doRequest(router, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", addItemBody(t, "p2", 50_000, 2)), sid)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/cart/count", nil), sid)

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 5, env.Data["count"])
}

func TestCartHandler_SignInFlow_BindsSessionCart(t *testing.T) {
	router, registry := newCartTestRouter(t)
	hub := session.NewHub()
	observer := session.NewObserver(hub, registry, testLogger())
	t.Cleanup(observer.Stop)

	sid := "2b1f4b9e-51f2-4b63-a6a1-000000000007"
	doRequest(router, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", addItemBody(t, "p1", 100_000, 3)), sid)

	hub.Publish(session.Event{Kind: session.SignedIn, SessionID: sid, UserID: "u1"})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), sid)
	cart := decodeCart(t, rec)
	assert.Equal(t, domain.OwnershipUser, cart.Ownership)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)

	hub.Publish(session.Event{Kind: session.SignedOut, SessionID: sid})

	rec = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), sid)
	cart = decodeCart(t, rec)
	assert.Equal(t, domain.OwnershipGuest, cart.Ownership)
	assert.Empty(t, cart.Lines)
}
