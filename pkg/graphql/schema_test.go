package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dd0wney/cluso-graphviewer/pkg/colour"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/shaper"
)

type fakeBackend struct {
	scene     shaper.Scene
	loaded    []string
	explored  []string
	dissolved []string
	scales    []float64
	err       error
}

func (f *fakeBackend) Scene(context.Context) (shaper.Scene, error) { return f.scene, nil }

func (f *fakeBackend) Load(_ context.Context, id string) (bool, error) {
	f.loaded = append(f.loaded, id)
	return id == "v/a", nil
}

func (f *fakeBackend) Explore(_ context.Context, id string) error {
	f.explored = append(f.explored, id)
	return f.err
}

func (f *fakeBackend) Dissolve(_ context.Context, id string) error {
	f.dissolved = append(f.dissolved, id)
	return f.err
}

func (f *fakeBackend) Zoom(_ context.Context, scale float64) error {
	f.scales = append(f.scales, scale)
	f.scene.Scale = scale
	return nil
}

func sampleScene() shaper.Scene {
	return shaper.Scene{
		Width:  960,
		Height: 640,
		Scale:  1,
		Nodes: []shaper.NodeVisual{
			{ID: "v/a", X: 10, Y: 20, Label: "A", Shape: shaper.ShapeConfig{Type: shaper.ShapeCircle, Radius: 8}},
			{
				ID:        "*community_1",
				Community: true,
				Expanded:  true,
				Size:      2,
				Reason:    &graph.Reason{Type: graph.ReasonModular},
				Members: []shaper.NodeVisual{
					{ID: "v/b", Label: "B"},
					{ID: "v/c", Label: "C"},
				},
			},
		},
		Edges: []shaper.EdgeVisual{
			{ID: "e/1", Source: "v/a", Target: "*community_1", Shape: shaper.ShapeArrow},
		},
		Legend: []colour.Entry{{Value: "core", Pair: colour.Pair{Fill: "#111111", Text: "#ffffff"}}},
	}
}

func run(t *testing.T, b Backend, query string) map[string]any {
	t.Helper()
	schema, err := NewSchema(b)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	result := ExecuteQuery(query, schema)
	if result.HasErrors() {
		t.Fatalf("query errors: %v", result.Errors)
	}
	data, ok := result.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data %T", result.Data)
	}
	return data
}

func TestSceneQuery(t *testing.T) {
	b := &fakeBackend{scene: sampleScene()}
	data := run(t, b, `{ scene { width scale nodeCount nodes { id label shape { type radius } } edges { id shape } legend { value fill } } }`)

	scene := data["scene"].(map[string]any)
	if scene["width"] != 960.0 || scene["nodeCount"] != 2 {
		t.Errorf("scene = %v", scene)
	}
	nodes := scene["nodes"].([]any)
	first := nodes[0].(map[string]any)
	if first["id"] != "v/a" || first["label"] != "A" {
		t.Errorf("first node = %v", first)
	}
	if shape := first["shape"].(map[string]any); shape["type"] != "circle" || shape["radius"] != 8.0 {
		t.Errorf("shape = %v", shape)
	}
	edge := scene["edges"].([]any)[0].(map[string]any)
	if edge["shape"] != "arrow" {
		t.Errorf("edge = %v", edge)
	}
	legend := scene["legend"].([]any)[0].(map[string]any)
	if legend["value"] != "core" || legend["fill"] != "#111111" {
		t.Errorf("legend = %v", legend)
	}
}

func TestNodeQueryFindsMembers(t *testing.T) {
	b := &fakeBackend{scene: sampleScene()}

	data := run(t, b, `{ node(id: "v/c") { id label } }`)
	node := data["node"].(map[string]any)
	if node["label"] != "C" {
		t.Errorf("node = %v", node)
	}

	data = run(t, b, `{ node(id: "*community_1") { size expanded reason { type } members { id } } }`)
	node = data["node"].(map[string]any)
	if node["size"] != 2 || node["expanded"] != true {
		t.Errorf("community = %v", node)
	}
	if reason := node["reason"].(map[string]any); reason["type"] != graph.ReasonModular {
		t.Errorf("reason = %v", reason)
	}
	if members := node["members"].([]any); len(members) != 2 {
		t.Errorf("members = %v", members)
	}

	data = run(t, b, `{ node(id: "v/zzz") { id } }`)
	if data["node"] != nil {
		t.Errorf("unknown node = %v", data["node"])
	}
}

func TestMutations(t *testing.T) {
	b := &fakeBackend{scene: sampleScene()}

	data := run(t, b, `mutation { loadGraph(id: "v/a") }`)
	if data["loadGraph"] != true {
		t.Errorf("loadGraph = %v", data["loadGraph"])
	}
	data = run(t, b, `mutation { loadGraph(id: "v/x") }`)
	if data["loadGraph"] != false {
		t.Errorf("loadGraph missing = %v", data["loadGraph"])
	}

	data = run(t, b, `mutation { explore(id: "v/a") { nodeCount } }`)
	if len(b.explored) != 1 || b.explored[0] != "v/a" {
		t.Errorf("explored = %v", b.explored)
	}
	if data["explore"].(map[string]any)["nodeCount"] != 2 {
		t.Errorf("explore = %v", data["explore"])
	}

	data = run(t, b, `mutation { dissolve(id: "*community_1") { nodeCount } }`)
	if len(b.dissolved) != 1 || b.dissolved[0] != "*community_1" {
		t.Errorf("dissolved = %v", b.dissolved)
	}
	if data["dissolve"] == nil {
		t.Error("dissolve returned no scene")
	}

	data = run(t, b, `mutation { zoom(scale: 0.5) { scale } }`)
	if data["zoom"].(map[string]any)["scale"] != 0.5 {
		t.Errorf("zoom = %v", data["zoom"])
	}
}

func TestExploreErrorIsReported(t *testing.T) {
	b := &fakeBackend{scene: sampleScene(), err: errors.New("node not found")}
	schema, err := NewSchema(b)
	if err != nil {
		t.Fatal(err)
	}
	result := ExecuteQuery(`mutation { explore(id: "v/q") { nodeCount } }`, schema)
	if !result.HasErrors() {
		t.Fatal("expected an error")
	}
}

func TestGraphQLHTTPHandler(t *testing.T) {
	schema, err := NewSchema(&fakeBackend{scene: sampleScene()})
	if err != nil {
		t.Fatal(err)
	}
	handler := NewHandler(schema, nil)

	body, _ := json.Marshal(Request{
		Query:     `query Q($id: ID!) { node(id: $id) { label } }`,
		Variables: map[string]any{"id": "v/a"},
	})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp Response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Errors) != 0 {
		t.Fatalf("errors = %v", resp.Errors)
	}
	node := resp.Data.(map[string]any)["node"].(map[string]any)
	if node["label"] != "A" {
		t.Errorf("node = %v", node)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/graphql", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader([]byte("{"))))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d", rr.Code)
	}
}

func TestGraphQLHandlerReportsErrorPath(t *testing.T) {
	schema, err := NewSchema(&fakeBackend{scene: sampleScene(), err: errors.New("not a community")})
	if err != nil {
		t.Fatal(err)
	}
	handler := NewHandler(schema, nil)

	body, _ := json.Marshal(Request{Query: `mutation { dissolve(id: "v/a") { nodeCount } }`})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp Response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Message != "not a community" {
		t.Fatalf("errors = %+v", resp.Errors)
	}
	if len(resp.Errors[0].Path) != 1 || resp.Errors[0].Path[0] != "dissolve" {
		t.Errorf("path = %v", resp.Errors[0].Path)
	}

	body, _ = json.Marshal(Request{})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body)))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty query status = %d", rr.Code)
	}
}
