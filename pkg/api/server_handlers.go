package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/shaper"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	st, err := s.backend.Stats(r.Context())
	if err != nil {
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "unhealthy",
			Timestamp: time.Now(),
			Version:   s.version,
			Uptime:    time.Since(s.startTime).String(),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now(),
		Version:     s.version,
		Uptime:      time.Since(s.startTime).String(),
		Nodes:       st.nodes,
		Edges:       st.edges,
		Communities: st.communities,
		NodeLimit:   st.nodeLimit,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		s.respondError(w, http.StatusNotFound, "Metrics disabled")
		return
	}
	s.metrics.UpdateSystemMetrics(s.startTime)
	s.metrics.Handler().ServeHTTP(w, r)
}

// handleGraph writes the current scene. ?compress=snappy returns a snappy
// block instead of plain JSON.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var compress bool
	switch c := r.URL.Query().Get("compress"); c {
	case "":
	case "snappy":
		compress = true
	default:
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported compression %q", c))
		return
	}

	sc, err := s.backend.Scene(r.Context())
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	if compress {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "x-snappy-block")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	if err := shaper.WriteScene(w, sc, compress); err != nil {
		s.logger.Warn("writing scene failed", logging.Error(err))
	}
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if !s.decode(w, r, http.MethodPost, &req) {
		return
	}

	var (
		found bool
		err   error
	)
	switch {
	case req.Random:
		found, err = s.backend.LoadRandom(r.Context())
	case req.Attribute != "":
		found, err = s.backend.LoadByAttribute(r.Context(), req.Attribute, req.Value)
	case req.ID != "":
		found, err = s.backend.Load(r.Context(), req.ID)
	default:
		s.respondError(w, http.StatusBadRequest, "One of id, attribute or random is required")
		return
	}
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	if !found {
		s.respondError(w, http.StatusNotFound, "No matching start node")
		return
	}
	s.respondScene(w, r)
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	var req ExploreRequest
	if !s.decode(w, r, http.MethodPost, &req) {
		return
	}
	if req.ID == "" {
		s.respondError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := s.backend.Explore(r.Context(), req.ID); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondScene(w, r)
}

func (s *Server) handleDissolve(w http.ResponseWriter, r *http.Request) {
	var req ExploreRequest
	if !s.decode(w, r, http.MethodPost, &req) {
		return
	}
	if req.ID == "" {
		s.respondError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := s.backend.Dissolve(r.Context(), req.ID); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondScene(w, r)
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if !s.decode(w, r, http.MethodPost, &req) {
		return
	}
	if err := s.backend.Zoom(r.Context(), req.Scale); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondScene(w, r)
}

func (s *Server) handleWidth(w http.ResponseWriter, r *http.Request) {
	var req WidthRequest
	if !s.decode(w, r, http.MethodPost, &req) {
		return
	}
	if err := s.backend.ChangeWidth(r.Context(), req.Width); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondScene(w, r)
}

func (s *Server) respondScene(w http.ResponseWriter, r *http.Request) {
	sc, err := s.backend.Scene(r.Context())
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sc)
}
