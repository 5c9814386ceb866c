/*
Package metrics holds the Prometheus instruments exported on /metrics.

Instruments are package-level and registered with the default registry at init.
*/
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome and result label values.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"

	ResultDelivered = "delivered"
	ResultDropped   = "dropped"
)

var (
	// Connection registry
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "socialhub_connections_active",
			Help: "Number of registered realtime connections",
		},
	)

	OnlineUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "socialhub_online_users",
			Help: "Number of users with at least one registered connection",
		},
	)

	// Inbound events
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialhub_events_total",
			Help: "Inbound realtime events by name and outcome",
		},
		[]string{"event", "outcome"},
	)

	// Outbound deliveries
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialhub_deliveries_total",
			Help: "Outbound frames handed to connections, by event and result",
		},
		[]string{"event", "result"},
	)

	// Presence
	PresenceTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialhub_presence_transitions_total",
			Help: "Presence transitions published, by new status",
		},
		[]string{"status"},
	)

	PresencePersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socialhub_presence_persist_failures_total",
			Help: "Presence upserts that failed or were short-circuited",
		},
	)

	// Store
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "socialhub_store_query_duration_seconds",
			Help:    "Duration of social graph store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// ObserveStore records the duration of a store operation started at start.
func ObserveStore(operation string, start time.Time) {
	StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
