package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initFileMetrics() {
	r.FileReadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnetgraph_file_reads_total",
			Help: "Total number of file container reads by format and status",
		},
		[]string{"format", "status"},
	)

	r.FileWritesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnetgraph_file_writes_total",
			Help: "Total number of file container writes by format and status",
		},
		[]string{"format", "status"},
	)

	r.FileBytesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "xnetgraph_file_bytes_total",
			Help: "Total bytes read or written by format and direction",
		},
		[]string{"format", "direction"},
	)

	r.FileOpDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xnetgraph_file_op_duration_seconds",
			Help:    "Duration of a file container read or write",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"format", "direction"},
	)
}
