package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLayoutMetrics() {
	r.LayoutRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_layout_runs_total",
			Help: "Total number of layout computations by outcome",
		},
		[]string{"status"},
	)

	r.LayoutDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agora_layout_duration_seconds",
			Help:    "Layout computation latency in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		},
	)

	r.LayoutNodesPerRun = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agora_layout_nodes_per_run",
			Help:    "Number of nodes per layout computation",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	r.LayoutFallbackPlacements = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "agora_layout_fallback_placements_total",
			Help: "Overlapping node pairs left after a collision search exhausted its attempt budget",
		},
	)
}
