package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics for the search engine
type Metrics struct {
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	UpstreamFetches    prometheus.Counter
	UpstreamErrors     *prometheus.CounterVec
	SearchDuration     prometheus.Histogram
	ItinerariesBuilt   prometheus.Counter
	RateLimitRemaining prometheus.Gauge
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "The total number of per-date cache probes satisfied from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "The total number of per-date cache probes that required an upstream fetch",
		}),
		UpstreamFetches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "The total number of upstream availability requests issued",
		}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "The total number of failed upstream requests",
		}, []string{"reason"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time taken to serve one itinerary search",
			Buckets:   prometheus.DefBuckets,
		}),
		ItinerariesBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "itineraries_built_total",
			Help:      "The total number of itinerary candidates composed",
		}),
		RateLimitRemaining: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_limit_remaining",
			Help:      "Minimum rate-limit-remaining observed across the last upstream batch",
		}),
	}
}
