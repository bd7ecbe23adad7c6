// Package api serves a running viewer over HTTP: the rendered scene as
// JSON (optionally snappy compressed), exploration and zoom commands, a
// GraphQL endpoint and Prometheus metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dd0wney/cluso-graphviewer/pkg/api/middleware"
	"github.com/dd0wney/cluso-graphviewer/pkg/graphql"
	"github.com/dd0wney/cluso-graphviewer/pkg/health"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
	"github.com/dd0wney/cluso-graphviewer/pkg/viewer"
)

// Server represents the HTTP API server
type Server struct {
	backend        viewerBackend
	graphqlHandler *graphql.Handler
	health         *health.HealthChecker
	metrics        *metrics.Registry
	logger         logging.Logger
	cors           middleware.CORSConfig
	startTime      time.Time
	version        string
}

// NewServer creates the API over v. The viewer's loop must be running for
// requests to complete.
func NewServer(v *viewer.GraphViewer, opts ...Option) (*Server, error) {
	s := &Server{
		backend:   viewerBackend{v: v},
		startTime: time.Now(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger).With(logging.Component("api"))

	schema, err := graphql.NewSchema(s.backend)
	if err != nil {
		return nil, fmt.Errorf("graphql schema: %w", err)
	}
	s.graphqlHandler = graphql.NewHandler(schema, s.logger)

	s.health = health.NewHealthChecker(health.DefaultTimeout)
	s.health.RegisterLivenessCheck("loop", health.LoopCheck(func(ctx context.Context) error {
		return v.Query(ctx, func() {})
	}))
	s.health.RegisterLivenessCheck("memory", health.MemoryCheck())
	s.health.RegisterReadinessCheck("graph", health.GraphCheck(func(ctx context.Context) (int, int, error) {
		st, err := s.backend.Stats(ctx)
		return st.nodes, st.nodeLimit, err
	}))
	return s, nil
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/live", s.health.LivenessHandler())
	mux.HandleFunc("/health/ready", s.health.ReadinessHandler())
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/graph", s.handleGraph)
	mux.HandleFunc("/graph/load", s.handleLoad)
	mux.HandleFunc("/explore", s.handleExplore)
	mux.HandleFunc("/dissolve", s.handleDissolve)
	mux.HandleFunc("/zoom", s.handleZoom)
	mux.HandleFunc("/width", s.handleWidth)

	mux.Handle("/graphql", s.graphqlHandler)

	return middleware.Chain(mux,
		middleware.PanicRecovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.Metrics(s.metrics),
		middleware.CORS(s.cors),
		middleware.BodySizeLimit(MaxBodyBytes),
	)
}
