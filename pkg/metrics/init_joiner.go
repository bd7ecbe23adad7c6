package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initJoinerMetrics() {
	r.JoinerRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphviewer_joiner_requests_total",
			Help: "Modularity joiner commands by command and status",
		},
		[]string{"cmd", "status"},
	)

	r.JoinerDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphviewer_joiner_duration_seconds",
			Help:    "Modularity joiner command latency in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"cmd"},
	)

	r.JoinerDroppedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphviewer_joiner_dropped_total",
			Help: "Collapse requests dropped because one was already in flight",
		},
	)
}
