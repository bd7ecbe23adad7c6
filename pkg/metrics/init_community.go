package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCommunityMetrics() {
	r.CommunityOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphviewer_community_operations_total",
			Help: "Community operations by kind (collapse, dissolve, expand, explore_collapse)",
		},
		[]string{"operation"},
	)

	r.CommunitySize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphviewer_community_size",
			Help:    "Member count of newly collapsed communities",
			Buckets: []float64{2, 4, 8, 16, 32, 64, 128, 256},
		},
	)
}
