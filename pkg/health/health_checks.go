package health

import (
	"context"
	"runtime"
)

// LoopCheck is unhealthy when ping cannot complete a round trip through
// the event loop before ctx expires.
func LoopCheck(ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Check {
		if err := ping(ctx); err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		}
		return Check{Status: StatusHealthy, Message: "Loop responsive"}
	}
}

// GraphCheck reports whether a graph has been loaded. An empty graph is
// degraded, not unhealthy.
func GraphCheck(count func(ctx context.Context) (nodes, limit int, err error)) CheckFunc {
	return func(ctx context.Context) Check {
		nodes, limit, err := count(ctx)
		if err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		}
		check := Check{
			Status:  StatusHealthy,
			Message: "Graph loaded",
			Details: map[string]any{"nodes": nodes, "node_limit": limit},
		}
		if nodes == 0 {
			check.Status = StatusDegraded
			check.Message = "No graph loaded"
		}
		return check
	}
}

// MemoryCheck is degraded when the heap uses more than 90% of the memory
// obtained from the OS.
func MemoryCheck() CheckFunc {
	return func(context.Context) Check {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		check := Check{
			Status:  StatusHealthy,
			Message: "Memory usage normal",
			Details: map[string]any{
				"alloc_bytes": m.Alloc,
				"sys_bytes":   m.Sys,
			},
		}
		if m.Sys > 0 && float64(m.Alloc)/float64(m.Sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		}
		return check
	}
}
