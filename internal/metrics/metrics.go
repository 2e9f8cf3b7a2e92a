// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImageStoreRequests counts image store calls by operation (upload, delete) and result.
	ImageStoreRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadervibe_image_store_requests_total",
			Help: "Image store calls by operation and result.",
		},
		[]string{"operation", "result"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "leadervibe_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		},
		[]string{"name"},
	)

	// AssetCleanupFailures counts best-effort asset deletions that failed.
	AssetCleanupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadervibe_asset_cleanup_failures_total",
			Help: "Best-effort image store deletions that failed.",
		},
		[]string{"scope"},
	)

	// EmailsSent counts transactional emails by template and result.
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadervibe_emails_sent_total",
			Help: "Transactional emails by template and result.",
		},
		[]string{"template", "result"},
	)
)
