package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prompty/notifier/internal/api/handler"
	apimw "github.com/prompty/notifier/internal/api/middleware"
	"github.com/prompty/notifier/internal/dispatcher"
	"github.com/prompty/notifier/internal/repository"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	d *dispatcher.Dispatcher,
	queue repository.QueueRepository,
	tokens repository.DeviceTokenRepository,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	qh := handler.NewQueueHandler(d, queue, logger)
	th := handler.NewTokenHandler(tokens, logger)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// Queue consumer: manual trigger for schedulers plus a stats snapshot.
		r.Post("/queue/process", qh.Process)
		r.Get("/queue/stats", qh.Stats)

		// Device token registry maintained by the Prompty app.
		r.Post("/tokens", th.Register)
		r.Delete("/tokens/{token}", th.Deactivate)
	})

	return r
}
