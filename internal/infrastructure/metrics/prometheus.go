// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notecanvas"

var (
	// CacheLookupsTotal tracks result cache lookups.
	// Labels:
	//   - cache_namespace: ocr, transcript
	//   - result: hit, miss, expired
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of result cache lookups",
		},
		[]string{"cache_namespace", "result"},
	)

	// CacheEntries is the current number of entries per cache namespace,
	// including expired entries that have not been purged yet.
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Current number of result cache entries",
		},
		[]string{"cache_namespace"},
	)

	// CacheRemovalsTotal tracks entries removed from the cache.
	// Labels:
	//   - cache_namespace: ocr, transcript
	//   - reason: expired, purged, evicted
	CacheRemovalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_removals_total",
			Help:      "Total number of result cache entries removed",
		},
		[]string{"cache_namespace", "reason"},
	)

	// EngineRunsTotal tracks OCR and speech engine invocations.
	// Labels:
	//   - engine: ocr, speech
	//   - status: success, error
	EngineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_runs_total",
			Help:      "Total number of recognition engine runs",
		},
		[]string{"engine", "status"},
	)

	// EngineDuration observes wall time of recognition engine runs.
	EngineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_duration_seconds",
			Help:      "Duration of recognition engine runs",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"engine"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// QueueMessagesTotal tracks how consumed processing tasks were settled.
	// Labels:
	//   - outcome: acked, retried, dead_lettered, dropped
	QueueMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_messages_total",
			Help:      "Total number of consumed processing task messages by outcome",
		},
		[]string{"outcome"},
	)

	// RateLimitedRequestsTotal counts processing requests rejected with 429.
	RateLimitedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Total number of processing requests rejected by the rate limiter",
		},
	)
)

// Cache lookup result constants.
const (
	CacheResultHit     = "hit"
	CacheResultMiss    = "miss"
	CacheResultExpired = "expired"
)

// Cache removal reason constants.
const (
	CacheRemovalExpired = "expired"
	CacheRemovalPurged  = "purged"
	CacheRemovalEvicted = "evicted"
)

// Engine constants.
const (
	EngineOCR    = "ocr"
	EngineSpeech = "speech"
)

// Engine status constants.
const (
	EngineStatusSuccess = "success"
	EngineStatusError   = "error"
)

// Queue outcome constants.
const (
	QueueOutcomeAcked        = "acked"
	QueueOutcomeRetried      = "retried"
	QueueOutcomeDeadLettered = "dead_lettered"
	QueueOutcomeDropped      = "dropped"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)
