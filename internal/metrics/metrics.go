package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_sync_attempts_total",
			Help: "Sync attempts by endpoint and resulting state",
		},
		[]string{"endpoint", "state"},
	)

	SyncAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "account_sync_attempt_duration_seconds",
			Help:    "Duration of one fetch, map and commit attempt",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EntityWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_sync_entity_writes_total",
			Help: "Versioned entity writes by endpoint and kind (inserted, evolved, removed)",
		},
		[]string{"endpoint", "kind"},
	)

	InvariantViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_sync_invariant_violations_total",
			Help: "Commits aborted because the store reported an invariant violation",
		},
		[]string{"endpoint"},
	)

	ThrottleWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "account_sync_throttle_wait_seconds",
			Help:    "Time spent waiting for a throttle permit",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	RemoteResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_sync_remote_responses_total",
			Help: "Remote API responses by status class (2xx, 4xx, 5xx, error)",
		},
		[]string{"class"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "account_sync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "account_sync_cycle_duration_seconds",
			Help:    "Duration of a full orchestrator cycle",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)
)
