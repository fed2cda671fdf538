package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/delivery/http/handler"
	"github.com/user/catalog-sync/internal/delivery/http/middleware"
)

// New wires the API routes. requestTimeout bounds every request, including
// crawl and import runs that pace themselves between fetches.
func New(h *handler.Handler, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Post("/crawl/next", h.HandleCrawlNext)
		r.Post("/crawl/import", h.HandleImportPage)
		r.Get("/crawl/sessions", h.HandleListSessions)
		r.Delete("/crawl/sessions", h.HandleResetSessions)
		r.Post("/reconcile", h.HandleReconcile)
	})

	return r
}
