package pipeline

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-stage throughput and latency.
type Metrics struct {
	processed *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics registers the stage collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontoflow",
			Name:      "stage_events_processed_total",
			Help:      "Revision events successfully processed per stage.",
		}, []string{"stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontoflow",
			Name:      "stage_events_failed_total",
			Help:      "Revision events that failed per stage.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ontoflow",
			Name:      "stage_duration_seconds",
			Help:      "Stage processing time per revision event.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(m.processed, m.failures, m.duration)
	}
	return m
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns process-wide stage metrics registered on the
// default Prometheus registerer. Stage components share this instance.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// Observe records one handled event for a stage.
func (m *Metrics) Observe(stage string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failures.WithLabelValues(stage).Inc()
	} else {
		m.processed.WithLabelValues(stage).Inc()
	}
	m.duration.WithLabelValues(stage).Observe(elapsed.Seconds())
}
