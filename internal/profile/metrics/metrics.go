package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the profile guard.
type Metrics struct {
	// Decision outcomes by outcome label
	DecisionOutcome *prometheus.CounterVec

	// Reference writer results
	WriterResult *prometheus.CounterVec

	// Repository call latency by operation
	RepositoryLatency *prometheus.HistogramVec

	// Overall decision latency
	DecideLatency prometheus.Histogram

	// Accounts with a decision currently running
	ChecksInFlight prometheus.Gauge
}

// New registers the guard metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the guard metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DecisionOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "profileguard_decisions_total",
			Help: "Total access decisions by outcome",
		}, []string{"outcome", "allowed"}),

		WriterResult: f.NewCounterVec(prometheus.CounterOpts{
			Name: "profileguard_reference_writes_total",
			Help: "Reference writer results: stored, cached, already_exists, in_progress, limit_reached, error",
		}, []string{"result"}),

		RepositoryLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "profileguard_repository_duration_seconds",
			Help:    "Duration of repository operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		DecideLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "profileguard_decide_duration_seconds",
			Help:    "Duration of a full access decision including repository I/O",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		ChecksInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "profileguard_checks_in_flight",
			Help: "Number of accounts with an access check currently running",
		}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(outcome string, allowed bool) {
	if m != nil {
		a := "false"
		if allowed {
			a = "true"
		}
		m.DecisionOutcome.WithLabelValues(outcome, a).Inc()
	}
}

// IncrementWriterResult records a reference writer result.
func (m *Metrics) IncrementWriterResult(result string) {
	if m != nil {
		m.WriterResult.WithLabelValues(result).Inc()
	}
}

// ObserveRepositoryLatency records the duration of a repository call.
func (m *Metrics) ObserveRepositoryLatency(operation string, d time.Duration) {
	if m != nil {
		m.RepositoryLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// ObserveDecideLatency records the total decision duration.
func (m *Metrics) ObserveDecideLatency(d time.Duration) {
	if m != nil {
		m.DecideLatency.Observe(d.Seconds())
	}
}

// CheckStarted and CheckFinished track the in-flight gauge.
func (m *Metrics) CheckStarted() {
	if m != nil {
		m.ChecksInFlight.Inc()
	}
}

func (m *Metrics) CheckFinished() {
	if m != nil {
		m.ChecksInFlight.Dec()
	}
}
