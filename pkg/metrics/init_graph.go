package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "xnetgraph_nodes_total",
			Help: "Active node count of the last observed graph",
		},
	)

	r.GraphEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "xnetgraph_edges_total",
			Help: "Active edge count of the last observed graph",
		},
	)

	r.GraphMutationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnetgraph_mutations_total",
			Help: "Total number of node/edge mutations by kind and status",
		},
		[]string{"operation", "status"},
	)

	r.GraphMutationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xnetgraph_mutation_duration_seconds",
			Help:    "Duration of node/edge mutation calls",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"operation"},
	)
}
