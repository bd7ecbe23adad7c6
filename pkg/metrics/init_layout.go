package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLayoutMetrics() {
	r.LayoutRunsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphviewer_layout_runs_total",
			Help: "Number of times the force simulation was (re)started",
		},
	)

	r.LayoutTicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphviewer_layout_ticks_total",
			Help: "Number of simulation ticks computed",
		},
	)

	r.LayoutAlpha = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphviewer_layout_alpha",
			Help: "Current simulation temperature",
		},
	)

	r.ZoomLimit = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphviewer_zoom_node_limit",
			Help: "Node budget derived from the current zoom level",
		},
	)

	r.ZoomScale = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphviewer_zoom_scale",
			Help: "Current zoom scale",
		},
	)
}
