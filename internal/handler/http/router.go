package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VATuan2710/final-project-thuc-tap/internal/auth"
	"github.com/VATuan2710/final-project-thuc-tap/internal/event"
	"github.com/VATuan2710/final-project-thuc-tap/internal/service"
	"github.com/VATuan2710/final-project-thuc-tap/internal/session"
	"github.com/VATuan2710/final-project-thuc-tap/pkg/health"
	"github.com/VATuan2710/final-project-thuc-tap/pkg/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Registry      *session.Registry
	Events        *event.Producer
	AuthService   *service.AuthService
	Checkout      *service.CheckoutService
	Wishlist      *service.WishlistService
	JWTManager    *auth.JWTManager
	HealthHandler *health.Handler
	CORS          middleware.CORSConfig
	Logger        *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS(deps.CORS))

	// Health check endpoints
	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	cartHandler := NewCartHandler(deps.Registry, deps.Events, deps.Logger)
	authHandler := NewAuthHandler(deps.AuthService, deps.Logger)
	checkoutHandler := NewCheckoutHandler(deps.Checkout, deps.Registry, deps.Logger)
	wishlistHandler := NewWishlistHandler(deps.Wishlist, deps.Logger)

	requireAuth := Auth(deps.JWTManager)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionCookie)

		// The cart works for guests and signed-in users alike.
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Get("/count", cartHandler.GetItemCount)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productId}", cartHandler.UpdateQuantity)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)

			r.With(requireAuth).Get("/me", authHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/checkout", checkoutHandler.PlaceOrder)
			r.Get("/orders", checkoutHandler.ListOrders)
			r.Get("/orders/{orderId}", checkoutHandler.GetOrder)

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistHandler.List)
				r.Post("/", wishlistHandler.Add)
				r.Delete("/{productId}", wishlistHandler.Remove)
			})
		})
	})

	return r
}
