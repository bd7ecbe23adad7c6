package api

import (
	"time"

	"github.com/dd0wney/cluso-graphviewer/pkg/api/middleware"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	Uptime      string    `json:"uptime"`
	Nodes       int       `json:"nodes"`
	Edges       int       `json:"edges"`
	Communities int       `json:"communities"`
	NodeLimit   int       `json:"node_limit"`
}

// LoadRequest starts a new exploration: at ID, at the first node whose
// Attribute equals Value, or at a random node.
type LoadRequest struct {
	ID        string `json:"id,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Value     string `json:"value,omitempty"`
	Random    bool   `json:"random,omitempty"`
}

// ExploreRequest names the node or community to toggle or dissolve.
type ExploreRequest struct {
	ID string `json:"id"`
}

// ZoomRequest sets the zoom scale.
type ZoomRequest struct {
	Scale float64 `json:"scale"`
}

// WidthRequest resizes the canvas.
type WidthRequest struct {
	Width float64 `json:"width"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics serves and records into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Server) { s.metrics = r }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithCORS enables CORS for the given configuration.
func WithCORS(cfg middleware.CORSConfig) Option {
	return func(s *Server) { s.cors = cfg }
}
