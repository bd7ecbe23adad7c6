package graph

import (
	"context"
	"testing"
	"time"
)

func TestStoreAddRemove(t *testing.T) {
	s := NewStore()
	defer s.Close()

	a, b := mustNode(t, "a"), mustNode(t, "b")
	if !s.AddNode(a) || !s.AddNode(b) {
		t.Fatal("AddNode failed")
	}
	if s.AddNode(mustNode(t, "a")) {
		t.Error("duplicate id must be rejected")
	}
	e := mustEdge(t, "e", a, b)
	if !s.AddEdge(e) || s.AddEdge(e) {
		t.Error("AddEdge dedup mismatch")
	}

	if s.NodeCount() != 2 || s.EdgeCount() != 1 {
		t.Errorf("counts = %d/%d", s.NodeCount(), s.EdgeCount())
	}
	if s.FindNode("a") != GraphNode(a) || s.FindEdge("e") != e {
		t.Error("lookup mismatch")
	}
	if len(s.EdgesOf(a)) != 1 || len(s.OutboundEdges(b)) != 0 {
		t.Error("incident edge lookup mismatch")
	}

	if !s.RemoveEdge(e) || s.RemoveEdge(e) {
		t.Error("RemoveEdge mismatch")
	}
	if !s.RemoveNode(a) || s.FindNode("a") != nil {
		t.Error("RemoveNode mismatch")
	}
	if nodes := s.Nodes(); len(nodes) != 1 || nodes[0].Key() != "b" {
		t.Errorf("remaining nodes = %v", nodes)
	}
}

func TestStorePreservesOrder(t *testing.T) {
	s := NewStore()
	defer s.Close()
	for _, id := range []string{"3", "1", "2"} {
		s.AddNode(mustNode(t, id))
	}
	s.AddNode(NewCommunity("c", Reason{}))

	var got []string
	for _, n := range s.Nodes() {
		got = append(got, n.Key())
	}
	want := []string{"3", "1", "2", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if len(s.Communities()) != 1 {
		t.Error("expected one community")
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := NewStore()
	defer s.Close()
	a := mustNode(t, "a")
	s.AddNode(a)
	snap := s.Snapshot()
	s.RemoveNode(a)
	if len(snap.Nodes) != 1 || s.NodeCount() != 0 {
		t.Error("snapshot must not follow later mutations")
	}
	s.AddNode(a)
	s.Clear()
	if s.NodeCount() != 0 || s.FindNode("a") != nil {
		t.Error("Clear must empty the store")
	}
}

func TestStoreEvents(t *testing.T) {
	s := NewStore()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := s.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	a, b := mustNode(t, "a"), mustNode(t, "b")
	s.AddNode(a)
	s.AddNode(b)
	s.AddEdge(mustEdge(t, "e", a, b))
	s.RemoveNode(a)
	s.Clear()

	want := []Event{
		{Kind: NodeAdded, ID: "a"},
		{Kind: NodeAdded, ID: "b"},
		{Kind: EdgeAdded, ID: "e"},
		{Kind: NodeRemoved, ID: "a"},
		{Kind: Cleared},
	}
	for i, w := range want {
		select {
		case ev := <-sub.Channel():
			if ev != w {
				t.Errorf("event %d = %+v, want %+v", i, ev, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for event %d", i)
		}
	}
}
