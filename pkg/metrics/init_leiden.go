package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLeidenMetrics() {
	r.LeidenLevelsTotal = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "xnetgraph_leiden_levels",
			Help:    "Number of coarsening levels a Leiden session ran through before converging",
			Buckets: prometheus.LinearBuckets(1, 1, 12),
		},
	)

	r.LeidenModularity = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "xnetgraph_leiden_modularity",
			Help: "Modularity of the last completed Leiden session",
		},
	)

	r.LeidenSessionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "xnetgraph_leiden_session_duration_seconds",
			Help:    "Wall-clock duration of a Leiden session from NewSession to PhaseDone",
			Buckets: []float64{0.01, 0.1, 1.0, 10.0, 60.0, 300.0},
		},
	)
}
