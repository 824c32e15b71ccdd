package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Order lifecycle
var (
	// TransitionsTotal counts order units of work by action and outcome (ok, idempotent, rejected, error)
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_order_transitions_total",
			Help: "Order state transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// UnitOfWorkDuration is the time spent holding the order lock
	UnitOfWorkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_order_unit_of_work_duration_seconds",
			Help:    "Duration of locked order units of work",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	// LockFailuresTotal counts order lock acquisitions that ran out of wait time
	LockFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_order_lock_failures_total",
			Help: "Order lock acquisitions that failed",
		},
		[]string{"action"},
	)

	// RefundApprovedAmount sums approved refund amounts
	RefundApprovedAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_refund_approved_amount_total",
			Help: "Total refund amount approved",
		},
	)
)

// Outbox
var (
	OutboxDeliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_outbox_delivered_total",
			Help: "Outbox messages delivered by topic",
		},
		[]string{"topic"},
	)

	OutboxFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_outbox_failed_total",
			Help: "Outbox delivery attempts that failed, by topic",
		},
		[]string{"topic"},
	)
)
