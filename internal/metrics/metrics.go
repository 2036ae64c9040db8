package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout outcome labels.
const (
	OutcomeCompleted    = "completed"
	OutcomeVerifyFailed = "verify_failed"
	OutcomeStockFailed  = "stock_failed"
	OutcomeError        = "error"
)

var (
	// CheckoutAttempts counts verify-payment workflows by terminal outcome.
	CheckoutAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "attempts_total",
		Help:      "Verify-payment workflows by terminal outcome.",
	}, []string{"outcome"})

	// StockConflicts counts conditional decrements that matched no rows.
	StockConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "stock_conflicts_total",
		Help:      "Conditional stock decrements lost to a concurrent checkout.",
	})

	// WorkflowDuration observes wall time of the verify-payment workflow.
	WorkflowDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "checkout",
		Name:      "workflow_duration_seconds",
		Help:      "End-to-end duration of the verify-payment workflow.",
		Buckets:   prometheus.DefBuckets,
	})

	// GatewayOrders counts gateway order creations by result.
	GatewayOrders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "gateway_orders_total",
		Help:      "Payment-gateway order creations by result.",
	}, []string{"result"})
)
