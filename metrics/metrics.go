package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for URL safety evaluation.
type Metrics struct {
	// Verdicts by risk level
	Verdicts *prometheus.CounterVec

	// Heuristic hits by check name
	HeuristicHits *prometheus.CounterVec

	// DNS blocklist queries by zone and result
	BlocklistLookups *prometheus.CounterVec

	// Blocklist cache lookups by outcome
	CacheLookups *prometheus.CounterVec

	// Full evaluation latency, including DNS
	CheckLatency prometheus.Histogram
}

// New registers all metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "urlsafety_verdicts_total",
			Help: "Total URL safety verdicts by risk level",
		}, []string{"risk_level"}), // risk_level: "low", "medium", "high"

		HeuristicHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "urlsafety_heuristic_hits_total",
			Help: "Total heuristic findings by check name",
		}, []string{"heuristic"}),

		BlocklistLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "urlsafety_dnsbl_lookups_total",
			Help: "DNS blocklist queries by zone and result",
		}, []string{"zone", "result"}), // result: "listed", "clean", "inconclusive"

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "urlsafety_dnsbl_cache_lookups_total",
			Help: "DNS blocklist cache lookups by outcome",
		}, []string{"outcome"}),

		CheckLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "urlsafety_check_duration_seconds",
			Help:    "Duration of a full URL safety check",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementVerdict records a verdict's risk level.
func (m *Metrics) IncrementVerdict(riskLevel string) {
	if m != nil {
		m.Verdicts.WithLabelValues(riskLevel).Inc()
	}
}

// IncrementHeuristic records a heuristic that produced a finding.
func (m *Metrics) IncrementHeuristic(name string) {
	if m != nil {
		m.HeuristicHits.WithLabelValues(name).Inc()
	}
}

// IncrementBlocklistLookup records one DNSBL zone query.
func (m *Metrics) IncrementBlocklistLookup(zone, result string) {
	if m != nil {
		m.BlocklistLookups.WithLabelValues(zone, result).Inc()
	}
}

// IncrementCacheLookup records a cache "hit" or "miss".
func (m *Metrics) IncrementCacheLookup(outcome string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(outcome).Inc()
	}
}

// ObserveCheckLatency records the duration of one check.
func (m *Metrics) ObserveCheckLatency(d time.Duration) {
	if m != nil {
		m.CheckLatency.Observe(d.Seconds())
	}
}
