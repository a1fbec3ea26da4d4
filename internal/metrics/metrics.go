// Package metrics exposes Prometheus instrumentation for the recommender.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	// SearchRequests counts finished searches by outcome ("success" or an error kind).
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_search_requests_total",
			Help: "Total number of recipe searches by outcome",
		},
		[]string{"outcome"},
	)

	// StageDuration tracks time spent in each pipeline stage.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_search_stage_duration_seconds",
			Help:    "Duration of recipe search pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// ExcludedMatches counts candidates dropped by the safety filter.
	ExcludedMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_search_excluded_matches_total",
			Help: "Total number of index matches removed by the safety filter",
		},
		[]string{"reason"}, // "allergy", "dislike", "unverified"
	)

	// EmbeddingCacheRequests counts embedding cache lookups.
	EmbeddingCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_cache_requests_total",
			Help: "Total number of embedding cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// HTTPRequestDuration tracks HTTP latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// CircuitBreakerState reports 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

// ObserveStage records how long a stage took.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordBreakerState is a resilience.Config.OnStateChange hook.
func RecordBreakerState(name string, _, to gobreaker.State) {
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
