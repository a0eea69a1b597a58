package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/adledger/internal/adapter/http/handler"
	"github.com/iho/adledger/internal/adapter/http/middleware"
	"github.com/iho/adledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ViewHandler      *handler.ViewHandler
	AdHandler        *handler.AdHandler
	EarningsHandler  *handler.EarningsHandler
	ReportHandler    *handler.ReportHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// View gateway: the public redirect endpoint ad links point at.
	r.Get("/view/{adID}/{viewerID}", cfg.ViewHandler.Redirect)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Ads
		r.Route("/ads", func(r chi.Router) {
			r.Post("/", cfg.AdHandler.Create)
			r.Get("/", cfg.AdHandler.List)
			r.Get("/{id}", cfg.AdHandler.Get)
			r.Delete("/{id}", cfg.AdHandler.Delete)
			r.Get("/{id}/views", cfg.ReportHandler.ListViews)
			r.Get("/{id}/leaderboard", cfg.ReportHandler.Leaderboard)
		})

		// Viewers
		r.Route("/viewers", func(r chi.Router) {
			r.Get("/{viewerID}/earnings", cfg.EarningsHandler.Get)
		})
	})

	return r
}
