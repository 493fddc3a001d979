package assist

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values for the kind label.
const (
	kindAutocomplete = "autocomplete"
	kindGrammar      = "grammar"
	kindCorrection   = "correction"
)

// Discard reasons.
const (
	reasonGate  = "gate"
	reasonStale = "stale"
	reasonEmpty = "empty"
	reasonError = "error"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	Requested      *prometheus.CounterVec
	Shown          *prometheus.CounterVec
	Discarded      *prometheus.CounterVec
	Accepted       *prometheus.CounterVec
	RateLimitTrips prometheus.Counter
	Latency        *prometheus.HistogramVec
}

// NewMetrics creates the engine metrics and registers them with reg. A nil
// reg leaves them unregistered, which is what tests that build many
// engines want.
//
// Metrics:
//   - proofline_suggestions_requested_total{kind}
//   - proofline_suggestions_shown_total{kind}
//   - proofline_suggestions_discarded_total{kind,reason}
//   - proofline_suggestions_accepted_total{kind}
//   - proofline_rate_limit_trips_total
//   - proofline_provider_latency_seconds{kind}
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requested: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proofline_suggestions_requested_total",
				Help: "Provider requests started",
			},
			[]string{"kind"},
		),
		Shown: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proofline_suggestions_shown_total",
				Help: "Suggestions handed to the overlay",
			},
			[]string{"kind"},
		),
		Discarded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proofline_suggestions_discarded_total",
				Help: "Requests or results dropped before display",
			},
			[]string{"kind", "reason"}, // gate, stale, empty, error
		),
		Accepted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proofline_suggestions_accepted_total",
				Help: "Suggestions applied to the document",
			},
			[]string{"kind"},
		),
		RateLimitTrips: f.NewCounter(
			prometheus.CounterOpts{
				Name: "proofline_rate_limit_trips_total",
				Help: "Times the rate-limit guard was tripped",
			},
		),
		Latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proofline_provider_latency_seconds",
				Help:    "Provider call latency",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) requested(kind string) {
	m.Requested.WithLabelValues(kind).Inc()
}

func (m *Metrics) shown(kind string, n int) {
	m.Shown.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) discarded(kind, reason string) {
	m.Discarded.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) accepted(kind string) {
	m.Accepted.WithLabelValues(kind).Inc()
}

func (m *Metrics) observe(kind string, d time.Duration) {
	m.Latency.WithLabelValues(kind).Observe(d.Seconds())
}
