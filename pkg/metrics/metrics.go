package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordLayoutRun records a completed layout computation
func (r *Registry) RecordLayoutRun(status string, nodeCount int, duration time.Duration) {
	r.LayoutRunsTotal.WithLabelValues(status).Inc()
	r.LayoutDuration.Observe(duration.Seconds())
	r.LayoutNodesPerRun.Observe(float64(nodeCount))
}

// RecordStoreOperation records a store operation
func (r *Registry) RecordStoreOperation(operation, status string, duration time.Duration) {
	r.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	r.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordEventPublished records one published event
func (r *Registry) RecordEventPublished(eventType string) {
	r.EventsPublishedTotal.WithLabelValues(eventType).Inc()
}

// RecordEventDropped records an event discarded because a subscriber
// buffer was full
func (r *Registry) RecordEventDropped() {
	r.EventsDroppedTotal.Inc()
}
