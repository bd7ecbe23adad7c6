package adapter

import (
	"errors"
	"testing"

	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/joiner"
)

func TestNewRequiresArguments(t *testing.T) {
	store := graph.NewStore()
	tests := []struct {
		name string
		fn   func() (*Abstract, error)
	}{
		{"store", func() (*Abstract, error) { return New(nil, &fakeDescendant{}, &fakeViewer{}) }},
		{"descendant", func() (*Abstract, error) { return New(store, nil, &fakeViewer{}) }},
		{"viewer", func() (*Abstract, error) { return New(store, &fakeDescendant{}, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := tt.fn()
			if a != nil || !errors.Is(err, ErrMissingArgument) {
				t.Errorf("New() = %v, %v; want ErrMissingArgument", a, err)
			}
		})
	}
}

func TestInsertNodeIsIdempotent(t *testing.T) {
	a, _, _ := newTestAdapter(t, WithSize(100, 50))

	first := mustInsertNodes(t, a, "v/1")[0]
	second := mustInsertNodes(t, a, "v/1")[0]
	if first != second {
		t.Error("inserting a known id should return the existing node")
	}
	if a.Store().NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", a.Store().NodeCount())
	}
	if first.X < 0 || first.X > 100 || first.Y < 0 || first.Y > 50 {
		t.Errorf("node placed outside the canvas at (%v, %v)", first.X, first.Y)
	}

	if _, err := a.InsertNode(graph.Data{"name": "anonymous"}); !errors.Is(err, graph.ErrInvalidData) {
		t.Errorf("missing _id: err = %v, want ErrInvalidData", err)
	}
}

func TestInsertInitialNode(t *testing.T) {
	a, _, _ := newTestAdapter(t, WithSize(200, 100))
	n, err := a.InsertInitialNode(nodeData("root"))
	if err != nil {
		t.Fatalf("InsertInitialNode: %v", err)
	}
	if n.X != 100 || n.Y != 50 || !n.Fixed || !n.Expanded {
		t.Errorf("initial node = %+v", n.Vertex)
	}
}

func TestInsertEdgeUnknownEndpoint(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	mustInsertNodes(t, a, "a")

	_, err := a.InsertEdge(edgeData("e1", "a", "missing"))
	if !graph.IsUnknownEndpoint(err) {
		t.Fatalf("err = %v, want ErrUnknownEndpoint", err)
	}
	var gerr *graph.Error
	if !errors.As(err, &gerr) || gerr.ID != "e1" {
		t.Errorf("error should name the edge, got %v", err)
	}
	if a.Store().EdgeCount() != 0 {
		t.Error("failed insert must not add an edge")
	}
	requireInvariants(t, a)
}

func TestInsertEdgeIsIdempotent(t *testing.T) {
	b := &recordingBackend{}
	a, _, _ := newTestAdapter(t, WithJoiner(b))
	nodes := mustInsertNodes(t, a, "a", "b")

	e1 := mustInsertEdge(t, a, "ab", "a", "b")
	e2 := mustInsertEdge(t, a, "ab", "a", "b")
	if e1 != e2 {
		t.Error("duplicate edge id should return the existing edge")
	}
	if nodes[0].OutboundCounter != 1 || nodes[1].InboundCounter != 1 {
		t.Errorf("counters = %d/%d, want 1/1", nodes[0].OutboundCounter, nodes[1].InboundCounter)
	}
	if got := b.count(joiner.CmdInsertEdge); got != 1 {
		t.Errorf("joiner inserts = %d, want 1", got)
	}
	requireInvariants(t, a)
}

func TestRemoveEdgeUpdatesCounters(t *testing.T) {
	b := &recordingBackend{}
	a, _, _ := newTestAdapter(t, WithJoiner(b))
	nodes := mustInsertNodes(t, a, "a", "b")
	e := mustInsertEdge(t, a, "ab", "a", "b")

	a.RemoveEdge(e)
	a.RemoveEdge(e)
	if nodes[0].OutboundCounter != 0 || nodes[1].InboundCounter != 0 {
		t.Errorf("counters = %d/%d, want 0/0", nodes[0].OutboundCounter, nodes[1].InboundCounter)
	}
	if got := b.count(joiner.CmdDeleteEdge); got != 1 {
		t.Errorf("joiner deletes = %d, want 1", got)
	}
	requireInvariants(t, a)
}

func TestRemoveEdgesForNode(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	mustInsertNodes(t, a, "a", "b", "c")
	mustInsertEdge(t, a, "ab", "a", "b")
	mustInsertEdge(t, a, "ca", "c", "a")
	mustInsertEdge(t, a, "bc", "b", "c")

	n := a.Store().FindNode("a")
	a.RemoveEdgesForNode(n)
	a.RemoveNode(n)

	if a.Store().EdgeCount() != 1 || a.Store().FindEdge("bc") == nil {
		t.Errorf("only bc should remain, have %d edges", a.Store().EdgeCount())
	}
	requireInvariants(t, a)
}

func TestResetClearsEverything(t *testing.T) {
	b := &recordingBackend{}
	a, _, _ := newTestAdapter(t, WithJoiner(b))
	mustInsertNodes(t, a, "a", "b", "c")
	mustInsertEdge(t, a, "ab", "a", "b")
	if _, err := a.CollapseCommunity([]string{"a", "b"}, graph.Reason{}); err != nil {
		t.Fatal(err)
	}

	a.Reset()
	if a.Store().NodeCount() != 0 || len(a.Communities()) != 0 || a.CommunityOf("a") != nil {
		t.Error("Reset should empty the graph")
	}
	if b.count(joiner.CmdReset) != 1 {
		t.Error("Reset should reset the joiner")
	}
}

func TestBackendErrorFormat(t *testing.T) {
	cause := errors.New("document not found")
	err := NewBackendError(404, "vertex missing", cause)
	if err.Error() != "[404] vertex missing" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("BackendError should unwrap to its cause")
	}
}

func TestLoadResultNotFound(t *testing.T) {
	if !(LoadResult{ErrorCode: NotFoundCode}).NotFound() {
		t.Error("404 result should report NotFound")
	}
	if (LoadResult{}).NotFound() {
		t.Error("zero result should not report NotFound")
	}
}
