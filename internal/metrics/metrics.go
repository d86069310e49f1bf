package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/careward/alert-relay/internal/domain"
	"github.com/careward/alert-relay/internal/orchestrator"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	AlertsDelivered    *prometheus.CounterVec
	AlertsFailed       *prometheus.CounterVec
	AlertsAbandoned    *prometheus.CounterVec
	AttemptLatency     *prometheus.HistogramVec
	QueueDepthNormal   prometheus.Gauge
	QueueDepthCritical prometheus.Gauge
	AuditWriteFailures prometheus.Counter
}

// New registers all instruments with the given Prometheus registerer.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AlertsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_delivered_total",
			Help: "Total number of successfully delivered alerts.",
		}, []string{"priority"}),

		AlertsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_failed_total",
			Help: "Total number of failed delivery attempts (including retried ones).",
		}, []string{"priority"}),

		AlertsAbandoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_abandoned_total",
			Help: "Total number of alerts abandoned after exhausted retries or rejection.",
		}, []string{"priority"}),

		AttemptLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alert_attempt_seconds",
			Help:    "Delivery attempt latency from dequeue to channel confirmation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"priority"}),

		QueueDepthNormal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_depth_normal",
			Help: "Current number of items in the normal priority queue.",
		}),
		QueueDepthCritical: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_depth_critical",
			Help: "Current number of items in the critical alert lane.",
		}),

		AuditWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Total number of failed audit sink writes escalated to the host.",
		}),
	}

	reg.MustRegister(
		m.AlertsDelivered,
		m.AlertsFailed,
		m.AlertsAbandoned,
		m.AttemptLatency,
		m.QueueDepthNormal,
		m.QueueDepthCritical,
		m.AuditWriteFailures,
	)

	return m
}

// OrchestratorHooks returns the outcome callbacks expected by the
// orchestrator. Centralises the prometheus observation calls so the
// orchestrator stays metrics-agnostic.
func (m *Metrics) OrchestratorHooks() orchestrator.Hooks {
	return orchestrator.Hooks{
		OnDelivered: func(p domain.Priority, latency time.Duration) {
			m.AlertsDelivered.WithLabelValues(string(p)).Inc()
			m.AttemptLatency.WithLabelValues(string(p)).Observe(latency.Seconds())
		},
		OnFailed: func(p domain.Priority) {
			m.AlertsFailed.WithLabelValues(string(p)).Inc()
		},
		OnAbandoned: func(p domain.Priority) {
			m.AlertsAbandoned.WithLabelValues(string(p)).Inc()
		},
	}
}

// SetQueueDepths updates the lane depth gauges; the host calls this on a
// fixed tick.
func (m *Metrics) SetQueueDepths(normal, critical int) {
	m.QueueDepthNormal.Set(float64(normal))
	m.QueueDepthCritical.Set(float64(critical))
}
