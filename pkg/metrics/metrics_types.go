// Package metrics exposes a Prometheus registry of counters,
// histograms, and gauges for graph mutation, query evaluation, file
// I/O, and community-detection operations.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every metric this module emits.
type Registry struct {
	GraphNodesTotal prometheus.Gauge
	GraphEdgesTotal prometheus.Gauge
	GraphMutationsTotal   *prometheus.CounterVec
	GraphMutationDuration *prometheus.HistogramVec

	QueriesTotal      *prometheus.CounterVec
	QueryDuration     *prometheus.HistogramVec
	QueryNodesScanned *prometheus.HistogramVec

	FileReadsTotal    *prometheus.CounterVec
	FileWritesTotal   *prometheus.CounterVec
	FileBytesTotal    *prometheus.CounterVec
	FileOpDuration    *prometheus.HistogramVec

	LeidenLevelsTotal     prometheus.Histogram
	LeidenModularity      prometheus.Gauge
	LeidenSessionDuration prometheus.Histogram

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry builds an independent registry with all metrics
// registered, suitable for tests that don't want the global singleton.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.initGraphMetrics()
	r.initQueryMetrics()
	r.initFileMetrics()
	r.initLeidenMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry, for
// wiring into an HTTP exposition handler.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
