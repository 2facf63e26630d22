// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration tracks request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates",
			Help:    "Number of recipes returned by the storage pre-filter",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	RecommendResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_results",
			Help:    "Number of ranked recipes returned to the client",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_rank_duration_seconds",
			Help:    "Time spent ranking candidates",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	RecommendCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_cache_total",
			Help: "Recommendation cache lookups by result",
		},
		[]string{"result"},
	)

	DetectorRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detector_requests_total",
			Help: "Calls to the ingredient detector by outcome",
		},
		[]string{"outcome"},
	)

	DetectedIngredients = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "detector_ingredients_detected",
			Help:    "Number of ingredients detected per image",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)

	DetectorBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "detector_circuit_breaker_state",
			Help: "Detector circuit breaker state (1 for the current state)",
		},
		[]string{"state"},
	)
)

// ObserveRecommendation records one ranking pass.
func ObserveRecommendation(candidates, results int, took time.Duration) {
	RecommendCandidates.Observe(float64(candidates))
	RecommendResults.Observe(float64(results))
	RankDuration.Observe(took.Seconds())
}

// RecordCacheHit and RecordCacheMiss track the recommendation cache.
func RecordCacheHit()  { RecommendCacheTotal.WithLabelValues("hit").Inc() }
func RecordCacheMiss() { RecommendCacheTotal.WithLabelValues("miss").Inc() }

// SetBreakerState marks state as the current detector breaker state.
func SetBreakerState(state string) {
	for _, s := range []string{"closed", "half-open", "open"} {
		v := 0.0
		if s == state {
			v = 1
		}
		DetectorBreakerState.WithLabelValues(s).Set(v)
	}
}
