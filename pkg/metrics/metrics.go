package metrics

import (
	"runtime"
	"time"
)

// Community operation labels.
const (
	OpCollapse         = "collapse"
	OpDissolve         = "dissolve"
	OpExpand           = "expand"
	OpCollapseExpanded = "collapse_expanded"
	OpExploreCollapse  = "explore_collapse"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// UpdateGraph sets the graph size gauges
func (r *Registry) UpdateGraph(nodes, edges, communities, rendered int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
	r.GraphCommunities.Set(float64(communities))
	r.GraphRenderedNodes.Set(float64(rendered))
}

// SetNodeLimit records the current node budget
func (r *Registry) SetNodeLimit(limit int) {
	r.GraphNodeLimit.Set(float64(limit))
}

// RecordCommunityOperation counts a community operation. size is only
// observed for collapses.
func (r *Registry) RecordCommunityOperation(operation string, size int) {
	r.CommunityOperationsTotal.WithLabelValues(operation).Inc()
	if operation == OpCollapse && size > 0 {
		r.CommunitySize.Observe(float64(size))
	}
}

// RecordJoinerRequest records a joiner command and its outcome
func (r *Registry) RecordJoinerRequest(cmd, status string, duration time.Duration) {
	r.JoinerRequestsTotal.WithLabelValues(cmd, status).Inc()
	r.JoinerDuration.WithLabelValues(cmd).Observe(duration.Seconds())
}

// RecordJoinerDropped counts a collapse request dropped by the in-flight guard
func (r *Registry) RecordJoinerDropped() {
	r.JoinerDroppedTotal.Inc()
}

// RecordLayoutStart counts a simulation (re)start
func (r *Registry) RecordLayoutStart() {
	r.LayoutRunsTotal.Inc()
}

// RecordLayoutTick counts a tick and records the temperature after it
func (r *Registry) RecordLayoutTick(alpha float64) {
	r.LayoutTicksTotal.Inc()
	r.LayoutAlpha.Set(alpha)
}

// RecordZoom records the zoom scale and the node budget derived from it
func (r *Registry) RecordZoom(scale float64, limit int) {
	r.ZoomScale.Set(scale)
	r.ZoomLimit.Set(float64(limit))
}

// UpdateSystemMetrics refreshes process gauges
func (r *Registry) UpdateSystemMetrics(started time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.UptimeSeconds.Set(time.Since(started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}
