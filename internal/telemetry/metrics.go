package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vvka-141/transient/pkg/transient"
)

const namespace = "transient"

// Metrics holds the Prometheus collectors for retried calls.
type Metrics struct {
	retries    *prometheus.CounterVec   // Retries scheduled by strategy
	retryDelay *prometheus.HistogramVec // Backoff delay by strategy
	calls      *prometheus.CounterVec   // Finished calls by strategy and outcome
	duration   *prometheus.HistogramVec // Call duration by strategy
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg returns nil metrics; every method is a no-op on nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil // Metrics disabled
	}

	m := &Metrics{
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Total number of retries scheduled after a transient failure",
		}, []string{"strategy"}),

		retryDelay: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retry_delay_seconds",
			Help:      "Backoff delay before a retry",
			Buckets:   []float64{0, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"strategy"}),

		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Total number of retried calls by terminal outcome",
		}, []string{"strategy", "outcome"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Wall time of a retried call including backoff delays",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
	}

	var err error
	if m.retries, err = register(reg, m.retries); err != nil {
		return nil, err
	}
	if m.retryDelay, err = register(reg, m.retryDelay); err != nil {
		return nil, err
	}
	if m.calls, err = register(reg, m.calls); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the already registered collector when an identical one exists,
// so several executors in one process share the same series.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// Observe records a retry event. It has the transient.RetryHandler signature.
func (m *Metrics) Observe(event transient.RetryEvent) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(event.Strategy).Inc()
	m.retryDelay.WithLabelValues(event.Strategy).Observe(event.Delay.Seconds())
}

// ObserveOutcome records the end of a call started at start.
func (m *Metrics) ObserveOutcome(strategy string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := transient.OutcomeOf(err)
	label := outcome.Kind.String()
	if outcome.Cause == transient.CauseAborted {
		label = outcome.Cause.String()
	}
	m.calls.WithLabelValues(strategy, label).Inc()
	m.duration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
}
