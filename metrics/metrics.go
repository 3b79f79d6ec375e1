// Package metrics exposes practice-run counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the practice metrics. A nil *Manager is valid and records
// nothing, so callers never need to check.
type Manager struct {
	namespace string
	buckets   []float64
	enabled   bool
	registry  *prometheus.Registry

	runsStarted    prometheus.Counter
	runsFinished   *prometheus.CounterVec
	accuracy       prometheus.Histogram
	ticks          prometheus.Counter
	hitsCaptured   *prometheus.CounterVec
	hitsDropped    prometheus.Counter
	captureFailure *prometheus.CounterVec
}

// Option applies a configuration option to the Manager
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithAccuracyBuckets sets the histogram buckets for run accuracy
func WithAccuracyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithMetricsEnabled enables or disables collection
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRegistry sets the registry metrics are registered on
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a manager on a private registry
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "drum_practice",
		buckets:   prometheus.LinearBuckets(10, 10, 10),
		enabled:   true,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "runs_started_total",
		Help:      "Practice runs started",
	})
	m.runsFinished = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "runs_finished_total",
		Help:      "Practice runs finished, by how they ended",
	}, []string{"end"})
	m.accuracy = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "run_accuracy_percent",
		Help:      "Accuracy of finished runs",
		Buckets:   m.buckets,
	})
	m.ticks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "clock_ticks_total",
		Help:      "Playback clock ticks",
	})
	m.hitsCaptured = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "hits_captured_total",
		Help:      "Drum hits recorded, by label",
	}, []string{"label"})
	m.hitsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "hits_dropped_total",
		Help:      "Drum hits lost to a full capture queue",
	})
	m.captureFailure = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "capture_failures_total",
		Help:      "Capture problems, by reason",
	}, []string{"reason"})
}

func (m *Manager) on() bool {
	return m != nil && m.enabled
}

// RunStarted counts a run start
func (m *Manager) RunStarted() {
	if !m.on() {
		return
	}
	m.runsStarted.Inc()
}

// RunFinished records a finished run and its accuracy
func (m *Manager) RunFinished(completed bool, accuracy float64) {
	if !m.on() {
		return
	}
	end := "stopped"
	if completed {
		end = "completed"
	}
	m.runsFinished.WithLabelValues(end).Inc()
	m.accuracy.Observe(accuracy)
}

// Tick counts a clock tick
func (m *Manager) Tick() {
	if !m.on() {
		return
	}
	m.ticks.Inc()
}

// HitCaptured counts a recorded hit
func (m *Manager) HitCaptured(label string) {
	if !m.on() {
		return
	}
	m.hitsCaptured.WithLabelValues(label).Inc()
}

// HitsDropped counts hits lost to a full queue
func (m *Manager) HitsDropped(n uint64) {
	if !m.on() || n == 0 {
		return
	}
	m.hitsDropped.Add(float64(n))
}

// CaptureFailed counts a capture problem
func (m *Manager) CaptureFailed(reason string) {
	if !m.on() {
		return
	}
	m.captureFailure.WithLabelValues(reason).Inc()
}

// Registry returns the registry metrics are registered on
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
