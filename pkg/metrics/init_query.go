package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initQueryMetrics() {
	r.QueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnetgraph_queries_total",
			Help: "Total number of selector query evaluations by status",
		},
		[]string{"status"},
	)

	r.QueryDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xnetgraph_query_duration_seconds",
			Help:    "Selector query evaluation duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 5.0},
		},
		[]string{"scope"},
	)

	r.QueryNodesScanned = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xnetgraph_query_elements_scanned",
			Help:    "Number of elements visited per selector query evaluation",
			Buckets: prometheus.ExponentialBuckets(1, 8, 8),
		},
		[]string{"scope"},
	)
}
