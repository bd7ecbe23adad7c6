package adapter

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/dd0wney/cluso-graphviewer/pkg/compute"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/joiner"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
)

type fakeDescendant struct {
	loads  []string
	onLoad func(id string, cb LoadCallback)
}

func (f *fakeDescendant) LoadNode(id string, cb LoadCallback) {
	f.loads = append(f.loads, id)
	if f.onLoad != nil {
		f.onLoad(id, cb)
		return
	}
	cb(LoadResult{}, nil)
}

type fakeViewer struct {
	starts int
}

func (v *fakeViewer) Start() { v.starts++ }

// recordingBackend records every joiner request. getCommunity answers come
// from respond and can be held back to simulate a slow worker.
type recordingBackend struct {
	requests []joiner.Request
	respond  func(joiner.Request) (joiner.Response, error)
	hold     bool
	held     []func()
}

func (b *recordingBackend) Call(req joiner.Request, cb compute.Callback[joiner.Response]) {
	b.requests = append(b.requests, req)
	resp, err := joiner.Response{Cmd: req.Cmd}, error(nil)
	if b.respond != nil && req.Cmd == joiner.CmdGetCommunity {
		resp, err = b.respond(req)
	}
	if b.hold && req.Cmd == joiner.CmdGetCommunity {
		b.held = append(b.held, func() { cb(resp, err) })
		return
	}
	cb(resp, err)
}

func (b *recordingBackend) Close() {}

func (b *recordingBackend) count(cmd joiner.Command) int {
	n := 0
	for _, r := range b.requests {
		if r.Cmd == cmd {
			n++
		}
	}
	return n
}

func (b *recordingBackend) release() {
	held := b.held
	b.held = nil
	for _, fn := range held {
		fn()
	}
}

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("*community_%d", n)
	}
}

func newTestAdapter(t *testing.T, opts ...Option) (*Abstract, *fakeDescendant, *fakeViewer) {
	t.Helper()
	d := &fakeDescendant{}
	v := &fakeViewer{}
	base := []Option{
		WithIDGenerator(counterIDs()),
		WithRand(rand.New(rand.NewSource(1))),
		WithLogger(logging.NewNopLogger()),
	}
	a, err := New(graph.NewStore(), d, v, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, d, v
}

func nodeData(id string) graph.Data {
	return graph.Data{"_id": id}
}

func edgeData(id, from, to string) graph.Data {
	return graph.Data{"_id": id, "_from": from, "_to": to}
}

func mustInsertNodes(t *testing.T, a *Abstract, ids ...string) []*graph.Node {
	t.Helper()
	out := make([]*graph.Node, len(ids))
	for i, id := range ids {
		n, err := a.InsertNode(nodeData(id))
		if err != nil {
			t.Fatalf("InsertNode(%s): %v", id, err)
		}
		out[i] = n
	}
	return out
}

func mustInsertEdge(t *testing.T, a *Abstract, id, from, to string) *graph.Edge {
	t.Helper()
	e, err := a.InsertEdge(edgeData(id, from, to))
	if err != nil {
		t.Fatalf("InsertEdge(%s): %v", id, err)
	}
	return e
}

// checkInvariants returns a description of the first broken invariant, or
// "" if the live graph is consistent: counters match the edges, no live
// edge dangles and every edge id sits in exactly one place.
func checkInvariants(a *Abstract) string {
	edges := make(map[string]*graph.Edge)
	place := make(map[string]int)
	for _, e := range a.store.Edges() {
		edges[e.ID] = e
		place[e.ID]++
	}

	var plain []*graph.Node
	for _, n := range a.store.Nodes() {
		switch t := n.(type) {
		case *graph.Node:
			plain = append(plain, t)
		case *graph.CommunityNode:
			if a.communities[t.ID] != t {
				return "live community " + t.ID + " is not tracked"
			}
			plain = append(plain, t.Members()...)
			if t.InboundCounter != len(t.InboundEdges()) {
				return fmt.Sprintf("community %s inbound %d, edges %d", t.ID, t.InboundCounter, len(t.InboundEdges()))
			}
			if t.OutboundCounter != len(t.OutboundEdges()) {
				return fmt.Sprintf("community %s outbound %d, edges %d", t.ID, t.OutboundCounter, len(t.OutboundEdges()))
			}
			for _, e := range t.InternalEdges() {
				edges[e.ID] = e
				place[e.ID]++
				if !t.HasNode(e.SourceID()) || !t.HasNode(e.TargetID()) {
					return "internal edge " + e.ID + " leaves its community"
				}
			}
			for _, e := range append(t.InboundEdges(), t.OutboundEdges()...) {
				if a.store.FindEdge(e.ID) != e {
					return "cross edge " + e.ID + " is not live"
				}
			}
			for _, id := range t.MemberIDs() {
				if a.owner[id] != t {
					return "member " + id + " has wrong owner"
				}
			}
		}
	}
	if len(a.communities) != len(a.store.Communities()) {
		return "tracked communities differ from live ones"
	}

	for id, n := range place {
		if n != 1 {
			return fmt.Sprintf("edge %s held in %d places", id, n)
		}
	}
	for _, e := range a.store.Edges() {
		if a.store.FindNode(e.Source.Key()) != e.Source || a.store.FindNode(e.Target.Key()) != e.Target {
			return "edge " + e.ID + " dangles"
		}
	}

	for _, n := range plain {
		in, out := 0, 0
		for _, e := range edges {
			if e.OriginalTarget() == n {
				in++
			}
			if e.OriginalSource() == n {
				out++
			}
		}
		if n.InboundCounter != in || n.OutboundCounter != out {
			return fmt.Sprintf("node %s counters %d/%d, edges %d/%d",
				n.ID, n.InboundCounter, n.OutboundCounter, in, out)
		}
	}
	return ""
}

func requireInvariants(t *testing.T, a *Abstract) {
	t.Helper()
	if msg := checkInvariants(a); msg != "" {
		t.Fatal(msg)
	}
}
