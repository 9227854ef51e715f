package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/prompty/notifier/internal/dispatcher"
	"github.com/prompty/notifier/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	ItemsProcessed    *prometheus.CounterVec
	PushesSent        prometheus.Counter
	PushesFailed      *prometheus.CounterVec
	TokensDeactivated prometheus.Counter
	BatchDuration     prometheus.Histogram
	QueuePending      prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ItemsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_items_processed_total",
			Help: "Total queue rows marked processed, by outcome.",
		}, []string{"outcome"}),

		PushesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pushes_sent_total",
			Help: "Total push notifications accepted by the provider.",
		}),

		PushesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pushes_failed_total",
			Help: "Total failed push sends, by classified reason.",
		}, []string{"reason"}),

		TokensDeactivated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "device_tokens_deactivated_total",
			Help: "Total device tokens deactivated after terminal provider rejections.",
		}),

		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "queue_batch_seconds",
			Help:    "Duration of one full queue-processing invocation.",
			Buckets: prometheus.DefBuckets,
		}),

		QueuePending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_pending",
			Help: "Unprocessed rows currently in the notification queue.",
		}),
	}

	reg.MustRegister(
		m.ItemsProcessed,
		m.PushesSent,
		m.PushesFailed,
		m.TokensDeactivated,
		m.BatchDuration,
		m.QueuePending,
	)

	return m
}

// DispatcherHooks returns the metric callbacks expected by dispatcher.Hooks.
// Centralises the prometheus observation calls so the dispatcher stays
// metrics-agnostic.
func (m *Metrics) DispatcherHooks() dispatcher.Hooks {
	return dispatcher.Hooks{
		OnItemProcessed: func(failed bool) {
			outcome := "ok"
			if failed {
				outcome = "error"
			}
			m.ItemsProcessed.WithLabelValues(outcome).Inc()
		},
		OnSent: func() {
			m.PushesSent.Inc()
		},
		OnSendFailed: func(reason domain.FailureReason) {
			m.PushesFailed.WithLabelValues(string(reason)).Inc()
		},
		OnDeactivated: func() {
			m.TokensDeactivated.Inc()
		},
		OnBatch: func(d time.Duration) {
			m.BatchDuration.Observe(d.Seconds())
		},
	}
}
