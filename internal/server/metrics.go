package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the lookup API.
type Metrics struct {
	// Lookups by resolution method: direct, ring, unresolved
	Lookups *prometheus.CounterVec

	// Ring radius of lookups resolved by the ring search
	RingRadius prometheus.Histogram

	// Requests rejected before lookup, by reason
	Rejected *prometheus.CounterVec

	LookupLatency prometheus.Histogram
}

// NewMetrics registers the API metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coord2country_lookups_total",
			Help: "Total lookups by resolution method",
		}, []string{"method"}),

		RingRadius: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "coord2country_ring_radius_pixels",
			Help:    "Ring radius at which ring-resolved lookups found a country",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		}),

		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coord2country_rejected_requests_total",
			Help: "Requests rejected before lookup, by reason",
		}, []string{"reason"}), // reason: "bad_request", "invalid_coordinate", "out_of_range"

		LookupLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "coord2country_lookup_duration_seconds",
			Help:    "Duration of a single lookup",
			Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3},
		}),
	}
}

// ObserveLookup records a completed lookup.
func (m *Metrics) ObserveLookup(method string, radius int, d time.Duration) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(method).Inc()
	if radius > 0 {
		m.RingRadius.Observe(float64(radius))
	}
	m.LookupLatency.Observe(d.Seconds())
}

// IncrementRejected records a rejected request.
func (m *Metrics) IncrementRejected(reason string) {
	if m != nil {
		m.Rejected.WithLabelValues(reason).Inc()
	}
}
