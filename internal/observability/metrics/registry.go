// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Revision metrics
var (
	// RevisionsTotal counts revision attempts by strategy and outcome
	RevisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revisions_total",
			Help: "Total number of revision attempts",
		},
		[]string{"strategy", "status"}, // status: success, failure
	)

	// RevisionDuration measures the end-to-end time of a revision
	RevisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "revision_duration_seconds",
			Help:    "Time taken to complete a revision attempt",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"strategy"},
	)

	// RevisionFailuresByStage counts failed revisions by the stage that failed
	RevisionFailuresByStage = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revision_failures_total",
			Help: "Total number of failed revisions by stage",
		},
		[]string{"stage"},
	)

	// ProviderCallsTotal counts provider calls by provider, kind and result
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_calls_total",
			Help: "Total number of generation, humanization and enrichment provider calls",
		},
		[]string{"provider", "kind", "result"},
	)

	// VersionsCreatedTotal counts versions appended by type
	VersionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "versions_created_total",
			Help: "Total number of article versions created",
		},
		[]string{"version_type"},
	)
)

// Auto-publish metrics
var (
	// AutopublishItemsTotal counts processed candidates by outcome
	AutopublishItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopublish_items_total",
			Help: "Total number of auto-publish candidates processed",
		},
		[]string{"outcome"}, // outcome: published, failed, skipped
	)

	// AutopublishCycleDuration measures a full cycle
	AutopublishCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autopublish_cycle_duration_seconds",
			Help:    "Time taken to run one auto-publish cycle",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	// EligibilityChecksTotal counts eligibility evaluations by result
	EligibilityChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_checks_total",
			Help: "Total number of eligibility evaluations",
		},
		[]string{"result"}, // result: eligible, ineligible
	)
)

// CircuitBreakerState reports each breaker's state: 0 closed, 1 half-open, 2 open.
var CircuitBreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	},
	[]string{"name"},
)

// SetCircuitBreakerState records the state of the named breaker.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
