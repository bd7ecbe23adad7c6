package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the viewer
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Graph Metrics
	GraphNodes         prometheus.Gauge
	GraphEdges         prometheus.Gauge
	GraphCommunities   prometheus.Gauge
	GraphRenderedNodes prometheus.Gauge
	GraphNodeLimit     prometheus.Gauge

	// Community Metrics
	CommunityOperationsTotal *prometheus.CounterVec
	CommunitySize            prometheus.Histogram

	// Joiner Metrics
	JoinerRequestsTotal *prometheus.CounterVec
	JoinerDuration      *prometheus.HistogramVec
	JoinerDroppedTotal  prometheus.Counter

	// Layout Metrics
	LayoutRunsTotal  prometheus.Counter
	LayoutTicksTotal prometheus.Counter
	LayoutAlpha      prometheus.Gauge

	// Zoom Metrics
	ZoomLimit prometheus.Gauge
	ZoomScale prometheus.Gauge

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initProcessMetrics()
	r.initGraphMetrics()
	r.initCommunityMetrics()
	r.initJoinerMetrics()
	r.initLayoutMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
