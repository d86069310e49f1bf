package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/careward/alert-relay/internal/api/handler"
	apimw "github.com/careward/alert-relay/internal/api/middleware"
	"github.com/careward/alert-relay/internal/bridge"
	"github.com/careward/alert-relay/internal/orchestrator"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	b *bridge.Bridge,
	orch *orchestrator.Orchestrator,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(logger))

	eh := handler.NewEventHandler(b, logger)
	nh := handler.NewNotificationHandler(orch, logger)
	hh := handler.NewHealthHandler()

	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/events", eh.Ingest)
		r.Delete("/notifications/{id}", nh.Cancel)
		r.Get("/queues", nh.Queues)
	})

	return r
}
