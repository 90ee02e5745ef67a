// Package metrics holds the Prometheus collectors for notification runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus Metrics.
var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobwatch",
			Name:      "runs_total",
			Help:      "Notification runs by outcome",
		},
		[]string{"status"},
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "jobwatch",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a notification run",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	SubscriptionsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobwatch",
			Name:      "subscriptions_processed_total",
			Help:      "Subscriptions processed by outcome",
		},
		[]string{"status"},
	)

	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jobwatch",
			Name:      "emails_sent_total",
			Help:      "Digest emails accepted by the provider",
		},
	)

	ListingsMatched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jobwatch",
			Name:      "listings_matched_total",
			Help:      "Listings included in sent digests",
		},
	)
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(RunsTotal, RunDuration, SubscriptionsProcessed, EmailsSent, ListingsMatched)
}
