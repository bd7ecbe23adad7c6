package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphviewer_graph_nodes",
			Help: "Live nodes in the graph store, communities included",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphviewer_graph_edges",
			Help: "Live edges in the graph store",
		},
	)

	r.GraphCommunities = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphviewer_graph_communities",
			Help: "Live community nodes",
		},
	)

	r.GraphRenderedNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphviewer_graph_rendered_nodes",
			Help: "Rendered node count including members of expanded communities",
		},
	)

	r.GraphNodeLimit = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphviewer_graph_node_limit",
			Help: "Current rendered node budget",
		},
	)
}
