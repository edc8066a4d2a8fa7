// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for BackendRequestsTotal.
const (
	OutcomeOK        = "ok"
	OutcomeStatus    = "http_error"
	OutcomeTransport = "transport_error"
	OutcomeDecode    = "decode_error"
)

var (
	// BackendRequestsTotal counts dispatched backend requests by endpoint and outcome.
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmerchat_backend_requests_total",
			Help: "Total number of requests dispatched to the inference and alert backends",
		},
		[]string{"endpoint", "outcome"},
	)

	// BackendRequestDuration tracks round-trip time of backend requests in seconds.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "farmerchat_backend_request_duration_seconds",
			Help:    "Round-trip duration of backend requests in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"endpoint"},
	)

	// PageSessionsActive is the number of page sessions held in memory.
	PageSessionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "farmerchat_page_sessions_active",
			Help: "Number of page sessions currently held in memory",
		},
		[]string{"app"},
	)

	// PageSessionsExpiredTotal counts page sessions removed by the idle sweeper.
	PageSessionsExpiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmerchat_page_sessions_expired_total",
			Help: "Total number of page sessions removed after the idle TTL",
		},
		[]string{"app"},
	)

	// LiveConnectionsActive is the number of open live page connections.
	LiveConnectionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "farmerchat_live_connections_active",
			Help: "Number of open live page connections",
		},
		[]string{"app"},
	)

	// StaleResponsesDiscardedTotal counts backend responses dropped because a
	// newer selection superseded them.
	StaleResponsesDiscardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farmerchat_stale_responses_discarded_total",
			Help: "Total number of alert responses discarded because a newer selection superseded them",
		},
	)
)
