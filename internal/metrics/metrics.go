// Package metrics holds the prometheus instrumentation for the pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the pipeline's instruments. A nil *Metrics is a valid
// no-op receiver so components do not need nil checks at every call site.
type Metrics struct {
	turns             *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	operationAttempts *prometheus.CounterVec
}

// New registers the instruments with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "movi",
			Name:      "turns_total",
			Help:      "Completed turns by response category.",
		}, []string{"category"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "movi",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		operationAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "movi",
			Name:      "operation_attempts_total",
			Help:      "Operation execution attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
}

// ObserveTurn counts a completed turn.
func (m *Metrics) ObserveTurn(category string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(category).Inc()
}

// ObserveStage records a stage duration.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveOperation counts execution attempts for an operation.
func (m *Metrics) ObserveOperation(operation string, attempts int, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.operationAttempts.WithLabelValues(operation, outcome).Add(float64(attempts))
}
