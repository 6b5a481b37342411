package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ledger outcomes, labelled by operation and result.
	LedgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_ledger_operations_total",
			Help: "Total number of coupon ledger operations by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "ok", "not_found", "rejected", "error"
	)

	// TopUpRetries counts inserts that lost the first-coupon race and were
	// retried as a merge.
	TopUpRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coupon_ledger_topup_retries_total",
			Help: "Total number of top-ups retried after a concurrent first insert",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coupon_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordOutcome bumps LedgerOperations for a single call.
func RecordOutcome(operation, outcome string) {
	LedgerOperations.WithLabelValues(operation, outcome).Inc()
}
