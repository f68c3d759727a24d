package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the service
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Layout Metrics
	LayoutRunsTotal          *prometheus.CounterVec
	LayoutDuration           prometheus.Histogram
	LayoutNodesPerRun        prometheus.Histogram
	LayoutFallbackPlacements prometheus.Counter

	// Store Metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// Realtime Metrics
	SubscriptionsActive    prometheus.Gauge
	EventsPublishedTotal   *prometheus.CounterVec
	EventsDroppedTotal     prometheus.Counter
	WebsocketClientsActive prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.registry.MustRegister(collectors.NewGoCollector())
	r.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r.initHTTPMetrics()
	r.initLayoutMetrics()
	r.initStoreMetrics()
	r.initRealtimeMetrics()

	return r
}

// Handler returns the HTTP handler that exposes the registry in
// Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Prometheus exposes the underlying registry, mainly for tests.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}
