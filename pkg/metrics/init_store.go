package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStoreMetrics() {
	r.StoreOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_store_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"operation", "status"},
	)

	r.StoreOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agora_store_operation_duration_seconds",
			Help:    "Store operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
}

func (r *Registry) initRealtimeMetrics() {
	r.SubscriptionsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "agora_subscriptions_active",
			Help: "Current number of active pubsub subscriptions",
		},
	)

	r.EventsPublishedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_events_published_total",
			Help: "Total number of events published by type",
		},
		[]string{"type"},
	)

	r.EventsDroppedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "agora_events_dropped_total",
			Help: "Events dropped because a subscriber channel was full",
		},
	)

	r.WebsocketClientsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "agora_websocket_clients_active",
			Help: "Current number of connected websocket clients",
		},
	)
}
