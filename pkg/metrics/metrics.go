package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTransitions counts durable request status changes by kind and target status.
	RequestTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrdesk_request_transitions_total",
			Help: "Total number of durable request status transitions",
		},
		[]string{"kind", "status"},
	)

	// NotificationsPublished counts notifications created and fanned out.
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrdesk_notifications_published_total",
			Help: "Total number of notifications published to realtime streams",
		},
		[]string{"type"},
	)

	// RealtimeClients tracks websocket subscribers currently connected.
	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hrdesk_realtime_clients",
			Help: "Number of connected realtime subscribers",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hrdesk_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
