package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/StorefrontFilterGo/internal/service"
	"github.com/utafrali/StorefrontFilterGo/pkg/health"
	"github.com/utafrali/StorefrontFilterGo/pkg/middleware"
)

// RouterConfig holds the dependencies for the HTTP router.
type RouterConfig struct {
	SearchService       *service.SearchService
	FilterConfigService *service.FilterConfigService
	HealthHandler       *health.Handler
	PairSeparator       string
	CORS                middleware.CORSConfig
	Logger              *slog.Logger
}

// NewRouter creates a chi router with all filter service routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("filter"))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	storefrontHandler := NewStorefrontHandler(cfg.SearchService, cfg.PairSeparator, cfg.Logger)
	configHandler := NewFilterConfigHandler(cfg.FilterConfigService, cfg.Logger)
	indexHandler := NewIndexHandler(cfg.SearchService, cfg.Logger)

	// Public storefront endpoints consumed by the theme widget.
	r.Route("/api/v1/storefront", func(r chi.Router) {
		r.Get("/filters", storefrontHandler.Filters)
		r.Get("/search", storefrontHandler.Search)
	})

	// Merchant admin endpoints for filter configurations.
	r.Route("/api/v1/filter-configs", func(r chi.Router) {
		r.Get("/", configHandler.List)
		r.Get("/{id}", configHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/", configHandler.Create)
			r.Put("/{id}", configHandler.Update)
			r.Delete("/{id}", configHandler.Delete)
			r.Post("/{id}/activate", configHandler.Activate)
		})
	})

	// Internal index management endpoints.
	r.Route("/api/v1/index", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Post("/", indexHandler.IndexProduct)
		r.Post("/bulk", indexHandler.BulkIndex)
		r.Delete("/{id}", indexHandler.DeleteProduct)
		r.Post("/reindex", indexHandler.Reindex)
	})

	return r
}
