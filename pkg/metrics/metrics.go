package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents counts processed Stripe webhook deliveries by outcome.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "monsoon",
		Subsystem: "webhook",
		Name:      "events_total",
		Help:      "Stripe webhook deliveries by outcome.",
	}, []string{"outcome"})

	// OrdersPaid counts orders transitioned to paid.
	OrdersPaid = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "monsoon",
		Subsystem: "orders",
		Name:      "paid_total",
		Help:      "Orders marked paid by the webhook.",
	})

	// EmailFailures counts confirmation emails that could not be delivered.
	EmailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "monsoon",
		Subsystem: "email",
		Name:      "failures_total",
		Help:      "Order confirmation emails that failed to send.",
	})
)

const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
	OutcomeIgnored   = "ignored"
)
