package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Decode outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeDegenerate = "degenerate"
	OutcomeError      = "error"
)

// Metrics holds the decoder collectors on a private registry so several
// instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	decodes  *prometheus.CounterVec
	duration prometheus.Histogram
	length   prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viterbi_decodes_total",
			Help: "Decoded observation sequences by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "viterbi_decode_duration_seconds",
			Help:    "Time spent decoding one observation sequence.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		length: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "viterbi_observation_length",
			Help:    "Number of observations per decoded sequence.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		}),
	}
	m.registry.MustRegister(
		m.decodes,
		m.duration,
		m.length,
		collectors.NewGoCollector(),
	)
	for _, outcome := range []string{OutcomeOK, OutcomeDegenerate, OutcomeError} {
		m.decodes.WithLabelValues(outcome)
	}
	return m
}

// ObserveDecode records one decode. A nil receiver is a no-op.
func (m *Metrics) ObserveDecode(outcome string, observations int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.decodes.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	m.length.Observe(float64(observations))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
