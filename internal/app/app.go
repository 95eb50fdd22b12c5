// Package app wires the storefront's dependencies together and manages
// its lifecycle.
package app

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/VATuan2710/final-project-thuc-tap/internal/auth"
	"github.com/VATuan2710/final-project-thuc-tap/internal/config"
	"github.com/VATuan2710/final-project-thuc-tap/internal/event"
	handler "github.com/VATuan2710/final-project-thuc-tap/internal/handler/http"
	postgresrepo "github.com/VATuan2710/final-project-thuc-tap/internal/repository/postgres"
	redisrepo "github.com/VATuan2710/final-project-thuc-tap/internal/repository/redis"
	"github.com/VATuan2710/final-project-thuc-tap/internal/service"
	"github.com/VATuan2710/final-project-thuc-tap/internal/session"
	"github.com/VATuan2710/final-project-thuc-tap/pkg/database"
	"github.com/VATuan2710/final-project-thuc-tap/pkg/health"
	pkgkafka "github.com/VATuan2710/final-project-thuc-tap/pkg/kafka"
	"github.com/VATuan2710/final-project-thuc-tap/pkg/middleware"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	rdb        *redis.Client
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	registry   *session.Registry
	observer   *session.Observer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize Redis client.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Initialize Postgres pool.
	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to Postgres")

	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		rdb.Close()
		pool.Close()
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations, logger); err != nil {
		rdb.Close()
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	cartTTL := time.Duration(cfg.CartTTL) * time.Hour
	cartRepo := redisrepo.NewCartRepository(rdb, cartTTL)
	userRepo := postgresrepo.NewUserRepository(pool)
	orderRepo := postgresrepo.NewOrderRepository(pool)
	wishlistRepo := postgresrepo.NewWishlistRepository(pool)

	eventProducer := event.NewProducer(producer, logger)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)

	hub := session.NewHub()
	registry := session.NewRegistry(cartRepo, logger)
	observer := session.NewObserver(hub, registry, logger)

	authService := service.NewAuthService(userRepo, jwtManager, hub, logger)
	checkoutService := service.NewCheckoutService(orderRepo, service.NewSimulatedGateway(), eventProducer, logger)
	wishlistService := service.NewWishlistService(wishlistRepo, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("kafka", producer.Ping)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.AllowedOrigins
	corsCfg.AllowCredentials = true

	// HTTP router.
	router := handler.NewRouter(handler.RouterDeps{
		Registry:      registry,
		Events:        eventProducer,
		AuthService:   authService,
		Checkout:      checkoutService,
		Wishlist:      wishlistService,
		JWTManager:    jwtManager,
		HealthHandler: healthHandler,
		CORS:          corsCfg,
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		rdb:        rdb,
		pool:       pool,
		producer:   producer,
		registry:   registry,
		observer:   observer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components. The session registry is
// closed before the stores' backing clients so pending cart writes flush
// to live connections.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Stop observing auth events, then flush every session's pending writes.
	a.observer.Stop()
	a.registry.Close()

	// Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	// Close backing stores.
	a.pool.Close()
	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
