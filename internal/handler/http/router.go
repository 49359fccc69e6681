package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kryptonum-dev/audiofast-filters/internal/service"
	"github.com/kryptonum-dev/audiofast-filters/pkg/health"
	"github.com/kryptonum-dev/audiofast-filters/pkg/middleware"
)

// NewRouter creates a chi router with all filter service routes registered.
func NewRouter(
	filterService *service.FilterService,
	healthHandler *health.Handler,
	corsCfg middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing("filters"))
	r.Use(middleware.PrometheusMetrics("filters"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	filterHandler := NewFilterHandler(filterService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/filters", filterHandler.ComputeFilters)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", filterHandler.ListProducts)

			r.Group(func(r chi.Router) {
				r.Use(ContentTypeJSON)
				r.Post("/", filterHandler.UpsertProduct)
				r.Post("/bulk", filterHandler.BulkUpsert)
				r.Post("/reindex", filterHandler.Reindex)
				r.Delete("/{id}", filterHandler.DeleteProduct)
			})
		})
	})

	return r
}
