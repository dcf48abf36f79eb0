// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelmind_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pixelmind_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelmind_webhook_events_total",
		Help: "Webhook deliveries by provider, event type and outcome",
	}, []string{"provider", "type", "outcome"})

	CreditsGrantedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelmind_credits_granted_total",
		Help: "Credits added to balances by settled purchases",
	})

	CreditsSpentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelmind_credits_spent_total",
		Help: "Credits charged for applied transformations",
	})
)

// Webhook outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeIgnored  = "ignored"
)
