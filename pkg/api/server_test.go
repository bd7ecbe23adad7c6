package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-graphviewer/pkg/adapter/jsonadapter"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/layout"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
	"github.com/dd0wney/cluso-graphviewer/pkg/shaper"
	"github.com/dd0wney/cluso-graphviewer/pkg/viewer"
	"github.com/dd0wney/cluso-graphviewer/pkg/zoom"
)

func document() *jsonadapter.Document {
	return &jsonadapter.Document{
		Nodes: []graph.Data{
			{"_id": "v/a", "name": "A"},
			{"_id": "v/b", "name": "B"},
			{"_id": "v/c", "name": "C"},
		},
		Edges: []graph.Data{
			{"_id": "e/ab", "_from": "v/a", "_to": "v/b"},
			{"_id": "e/bc", "_from": "v/b", "_to": "v/c"},
		},
	}
}

// setupTestServer starts a viewer loop and returns the API handler over it.
func setupTestServer(t *testing.T, opts ...Option) (*Server, http.Handler) {
	t.Helper()
	v, err := viewer.New(viewer.JSONSource(document()), viewer.Config{
		Width:      960,
		Height:     640,
		NodeShaper: shaper.NodeConfig{Label: &shaper.LabelConfig{Attribute: "name"}},
		Layouter:   layout.DefaultConfig(),
		Zoom:       &zoom.Config{Width: 960, Height: 640},
	}, viewer.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = v.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		v.Close()
	})

	opts = append([]Option{WithLogger(logging.NewNopLogger())}, opts...)
	s, err := NewServer(v, opts...)
	require.NoError(t, err)
	return s, s.Handler()
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data)))
	return rr
}

func decodeScene(t *testing.T, rr *httptest.ResponseRecorder) shaper.Scene {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var sc shaper.Scene
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sc))
	return sc
}

func sceneIDs(sc shaper.Scene) []string {
	ids := make([]string, 0, len(sc.Nodes))
	for _, n := range sc.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestHealth(t *testing.T) {
	_, h := setupTestServer(t, WithVersion("1.2.3"))

	post(t, h, "/graph/load", LoadRequest{ID: "v/a"})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, 2, resp.Nodes)
	assert.Equal(t, 1, resp.Edges)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestLivenessAndReadiness(t *testing.T) {
	_, h := setupTestServer(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"loop"`)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	post(t, h, "/graph/load", LoadRequest{ID: "v/a"})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLoadAndExplore(t *testing.T) {
	_, h := setupTestServer(t)

	sc := decodeScene(t, post(t, h, "/graph/load", LoadRequest{ID: "v/a"}))
	assert.ElementsMatch(t, []string{"v/a", "v/b"}, sceneIDs(sc))

	sc = decodeScene(t, post(t, h, "/explore", ExploreRequest{ID: "v/b"}))
	assert.ElementsMatch(t, []string{"v/a", "v/b", "v/c"}, sceneIDs(sc))
	assert.Len(t, sc.Edges, 2)

	rr := post(t, h, "/explore", ExploreRequest{ID: "v/zzz"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDissolve(t *testing.T) {
	s, h := setupTestServer(t)
	v := s.backend.v

	decodeScene(t, post(t, h, "/graph/load", LoadRequest{ID: "v/a"}))
	decodeScene(t, post(t, h, "/explore", ExploreRequest{ID: "v/b"}))

	var (
		c   *graph.CommunityNode
		err error
	)
	require.NoError(t, v.Query(context.Background(), func() {
		c, err = v.Source().Core().CollapseCommunity([]string{"v/b", "v/c"}, graph.Reason{Type: graph.ReasonModular})
	}))
	require.NoError(t, err)
	id := c.ID

	sc := decodeScene(t, post(t, h, "/dissolve", ExploreRequest{ID: id}))
	assert.ElementsMatch(t, []string{"v/a", "v/b", "v/c"}, sceneIDs(sc))

	rr := post(t, h, "/dissolve", ExploreRequest{ID: "v/a"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = post(t, h, "/dissolve", ExploreRequest{ID: id})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = post(t, h, "/dissolve", ExploreRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoadVariants(t *testing.T) {
	_, h := setupTestServer(t)

	sc := decodeScene(t, post(t, h, "/graph/load", LoadRequest{Attribute: "name", Value: "C"}))
	assert.Equal(t, []string{"v/c"}, sceneIDs(sc))

	sc = decodeScene(t, post(t, h, "/graph/load", LoadRequest{Random: true}))
	assert.NotEmpty(t, sc.Nodes)

	rr := post(t, h, "/graph/load", LoadRequest{ID: "v/missing"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = post(t, h, "/graph/load", LoadRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/graph/load", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/graph/load", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestGraphSnappy(t *testing.T) {
	_, h := setupTestServer(t)
	post(t, h, "/graph/load", LoadRequest{ID: "v/a"})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/graph?compress=snappy", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/octet-stream", rr.Header().Get("Content-Type"))

	sc, err := shaper.ReadScene(rr.Body, true)
	require.NoError(t, err)
	assert.Equal(t, 960.0, sc.Width)
	assert.Len(t, sc.Nodes, 2)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/graph?compress=gzip", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestZoomAndWidth(t *testing.T) {
	_, h := setupTestServer(t)
	post(t, h, "/graph/load", LoadRequest{ID: "v/a"})

	sc := decodeScene(t, post(t, h, "/zoom", ZoomRequest{Scale: 0.5}))
	assert.Equal(t, 0.5, sc.Scale)

	rr := post(t, h, "/zoom", ZoomRequest{Scale: -1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	sc = decodeScene(t, post(t, h, "/width", WidthRequest{Width: 480}))
	assert.Equal(t, 480.0, sc.Width)
	assert.Equal(t, 320.0, sc.Height)

	rr = post(t, h, "/width", WidthRequest{Width: 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGraphQLRoute(t *testing.T) {
	_, h := setupTestServer(t)

	rr := post(t, h, "/graphql", map[string]any{"query": `mutation { loadGraph(id: "v/a") }`})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"loadGraph":true`)

	rr = post(t, h, "/graphql", map[string]any{"query": `{ node(id: "v/b") { label } }`})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"label":"B"`)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := metrics.NewRegistry()
	_, h := setupTestServer(t, WithMetrics(reg))
	post(t, h, "/graph/load", LoadRequest{ID: "v/a"})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "graphviewer_http_requests_total")

	_, bare := setupTestServer(t)
	rr = httptest.NewRecorder()
	bare.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStoppedViewer(t *testing.T) {
	v, err := viewer.New(viewer.JSONSource(document()), viewer.Config{
		Width: 960, Height: 640, Layouter: layout.DefaultConfig(),
	}, viewer.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	v.Close()

	s, err := NewServer(v)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/graph", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
