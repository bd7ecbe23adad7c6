package adapter

import (
	"errors"
	"testing"

	"github.com/dd0wney/cluso-graphviewer/pkg/compute"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/joiner"
)

func TestExploreExpandsAndCollapsesNode(t *testing.T) {
	j := joiner.New()
	a, d, v := newTestAdapter(t, WithJoiner(compute.NewInline(j.Handle)))
	d.onLoad = func(id string, cb LoadCallback) {
		root, err := a.InsertNeighbourhood(id,
			[]graph.Data{nodeData("a"), nodeData("b")},
			[]graph.Data{edgeData("ra", id, "a"), edgeData("rb", id, "b"), edgeData("ab", "a", "b")})
		cb(LoadResult{Node: root}, err)
	}
	root := mustInsertNodes(t, a, "root")[0]

	var got error = errors.New("not called")
	a.Explore(root, func(err error) { got = err })
	if got != nil {
		t.Fatalf("Explore: %v", got)
	}
	if len(d.loads) != 1 || d.loads[0] != "root" || !root.Expanded {
		t.Fatalf("loads = %v, expanded = %v", d.loads, root.Expanded)
	}
	if a.Store().NodeCount() != 3 || j.EdgeCount() != 3 {
		t.Fatalf("after expand: %d nodes, joiner %d edges", a.Store().NodeCount(), j.EdgeCount())
	}
	requireInvariants(t, a)

	starts := v.starts
	a.Explore(root, nil)
	requireInvariants(t, a)
	if root.Expanded {
		t.Error("second Explore should collapse the node")
	}
	if a.Store().NodeCount() != 1 || a.Store().EdgeCount() != 0 {
		t.Errorf("after collapse: %d nodes, %d edges; want 1, 0", a.Store().NodeCount(), a.Store().EdgeCount())
	}
	if j.EdgeCount() != 0 {
		t.Errorf("joiner still holds %d edges", j.EdgeCount())
	}
	if v.starts != starts+1 {
		t.Error("collapse should restart the viewer")
	}
}

func TestExpandNodeReportsLoadError(t *testing.T) {
	a, d, _ := newTestAdapter(t)
	d.onLoad = func(_ string, cb LoadCallback) {
		cb(LoadResult{}, NewBackendError(500, "backend down", nil))
	}
	n := mustInsertNodes(t, a, "a")[0]

	var got error
	a.Explore(n, func(err error) { got = err })
	var berr *BackendError
	if !errors.As(got, &berr) || berr.Code != 500 {
		t.Errorf("err = %v, want backend error", got)
	}
}

func TestCollapseNodeKeepsReachableTargets(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	if _, err := a.InsertInitialNode(nodeData("r")); err != nil {
		t.Fatal(err)
	}
	mustInsertNodes(t, a, "a", "b")
	mustInsertEdge(t, a, "ra", "r", "a")
	mustInsertEdge(t, a, "rb", "r", "b")
	mustInsertEdge(t, a, "ba", "b", "a")

	a.CollapseNode(a.Store().FindNode("b"))
	requireInvariants(t, a)
	if a.Store().FindNode("a") == nil {
		t.Error("a is still reachable from r")
	}
	if a.Store().EdgeCount() != 2 {
		t.Errorf("edges = %d, want 2", a.Store().EdgeCount())
	}
}

func TestCollapseNodeKeepsFixedNodes(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	if _, err := a.InsertInitialNode(nodeData("r")); err != nil {
		t.Fatal(err)
	}
	mustInsertNodes(t, a, "s")
	mustInsertEdge(t, a, "sr", "s", "r")

	a.CollapseNode(a.Store().FindNode("s"))
	requireInvariants(t, a)
	if a.Store().FindNode("r") == nil {
		t.Error("fixed node must survive losing its inbound edges")
	}
}

func TestCascadeCollapsesUnreachableCommunity(t *testing.T) {
	j := joiner.New()
	a, _, _ := newTestAdapter(t, WithJoiner(compute.NewInline(j.Handle)))
	r, err := a.InsertInitialNode(nodeData("r"))
	if err != nil {
		t.Fatal(err)
	}
	mustInsertNodes(t, a, "a", "b", "c")
	mustInsertEdge(t, a, "ra", "r", "a")
	mustInsertEdge(t, a, "ab", "a", "b")
	mustInsertEdge(t, a, "bc", "b", "c")

	c, err := a.CollapseCommunity([]string{"a", "b"}, graph.Reason{})
	if err != nil {
		t.Fatal(err)
	}
	if c.InboundCounter != 1 {
		t.Fatalf("community inbound = %d, want 1", c.InboundCounter)
	}

	a.CollapseNode(r)
	requireInvariants(t, a)

	if a.Store().NodeCount() != 1 || a.Store().FindNode("r") == nil {
		t.Errorf("only r should remain, have %d nodes", a.Store().NodeCount())
	}
	if a.Store().EdgeCount() != 0 || len(a.Communities()) != 0 || a.CommunityOf("a") != nil {
		t.Error("community and its edges should be gone")
	}
	if j.EdgeCount() != 0 {
		t.Errorf("joiner still holds %d edges", j.EdgeCount())
	}
	if r.OutboundCounter != 0 {
		t.Errorf("r outbound = %d, want 0", r.OutboundCounter)
	}
}

func TestExploreTogglesCommunity(t *testing.T) {
	a, _, v := newTestAdapter(t)
	mustInsertNodes(t, a, "a", "b")
	c, err := a.CollapseCommunity([]string{"a", "b"}, graph.Reason{})
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	a.Explore(c, func(err error) {
		if err != nil {
			t.Error(err)
		}
		calls++
	})
	if !c.Expanded || a.RenderedNodeCount() != 3 {
		t.Errorf("expanded %v, rendered %d", c.Expanded, a.RenderedNodeCount())
	}
	a.Explore(c, func(error) { calls++ })
	if c.Expanded || calls != 2 || v.starts != 2 {
		t.Errorf("expanded %v, calls %d, starts %d", c.Expanded, calls, v.starts)
	}
}
