package graph

import (
	"context"

	"github.com/dd0wney/cluso-graphviewer/pkg/pubsub"
)

// Store owns the live node and edge sets that the adapter mutates and the
// layouter and shapers read. Insertion order is preserved.
//
// Store is not safe for concurrent mutation; a single goroutine owns it.
// Subscribers receive events on their own goroutines.
type Store struct {
	nodes     []GraphNode
	nodeIndex map[string]GraphNode
	edges     []*Edge
	edgeIndex map[string]*Edge

	events    *pubsub.PubSub[Event]
	ownEvents bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPubSub publishes store events on an existing PubSub.
func WithPubSub(ps *pubsub.PubSub[Event]) StoreOption {
	return func(s *Store) {
		s.events = ps
		s.ownEvents = false
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		nodeIndex: make(map[string]GraphNode),
		edgeIndex: make(map[string]*Edge),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = pubsub.New[Event](0)
		s.ownEvents = true
	}
	return s
}

// Subscribe returns a subscription to store events that ends with ctx.
func (s *Store) Subscribe(ctx context.Context) (*pubsub.Subscription[Event], error) {
	return s.events.Subscribe(ctx, Topic)
}

// Close shuts down the store's event stream if the store created it.
func (s *Store) Close() {
	if s.ownEvents {
		s.events.Shutdown()
	}
}

// AddNode appends a node. It returns false if a node with the same id is
// already present.
func (s *Store) AddNode(n GraphNode) bool {
	id := n.Key()
	if _, ok := s.nodeIndex[id]; ok {
		return false
	}
	s.nodeIndex[id] = n
	s.nodes = append(s.nodes, n)
	s.events.Publish(Topic, Event{Kind: NodeAdded, ID: id})
	return true
}

// RemoveNode removes a node. Edges are not touched.
func (s *Store) RemoveNode(n GraphNode) bool {
	id := n.Key()
	cur, ok := s.nodeIndex[id]
	if !ok || cur != n {
		return false
	}
	delete(s.nodeIndex, id)
	for i, x := range s.nodes {
		if x == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			break
		}
	}
	s.events.Publish(Topic, Event{Kind: NodeRemoved, ID: id})
	return true
}

// AddEdge appends an edge. It returns false if the id is already present.
func (s *Store) AddEdge(e *Edge) bool {
	if _, ok := s.edgeIndex[e.ID]; ok {
		return false
	}
	s.edgeIndex[e.ID] = e
	s.edges = append(s.edges, e)
	s.events.Publish(Topic, Event{Kind: EdgeAdded, ID: e.ID})
	return true
}

// RemoveEdge removes an edge.
func (s *Store) RemoveEdge(e *Edge) bool {
	cur, ok := s.edgeIndex[e.ID]
	if !ok || cur != e {
		return false
	}
	delete(s.edgeIndex, e.ID)
	for i, x := range s.edges {
		if x == e {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			break
		}
	}
	s.events.Publish(Topic, Event{Kind: EdgeRemoved, ID: e.ID})
	return true
}

// FindNode returns the live node with the given id, or nil.
func (s *Store) FindNode(id string) GraphNode {
	return s.nodeIndex[id]
}

// FindEdge returns the live edge with the given id, or nil.
func (s *Store) FindEdge(id string) *Edge {
	return s.edgeIndex[id]
}

// Nodes returns the live node slice. Callers must not modify it.
func (s *Store) Nodes() []GraphNode {
	return s.nodes
}

// Edges returns the live edge slice. Callers must not modify it.
func (s *Store) Edges() []*Edge {
	return s.edges
}

// EdgesOf returns a copy of the edges that start or end at n.
func (s *Store) EdgesOf(n GraphNode) []*Edge {
	var out []*Edge
	for _, e := range s.edges {
		if e.Source == n || e.Target == n {
			out = append(out, e)
		}
	}
	return out
}

// OutboundEdges returns a copy of the edges that start at n.
func (s *Store) OutboundEdges(n GraphNode) []*Edge {
	var out []*Edge
	for _, e := range s.edges {
		if e.Source == n {
			out = append(out, e)
		}
	}
	return out
}

// Communities returns the live community nodes in insertion order.
func (s *Store) Communities() []*CommunityNode {
	var out []*CommunityNode
	for _, n := range s.nodes {
		if c, ok := n.(*CommunityNode); ok {
			out = append(out, c)
		}
	}
	return out
}

// NodeCount returns the number of live nodes, communities included.
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of live edges.
func (s *Store) EdgeCount() int { return len(s.edges) }

// Clear removes everything.
func (s *Store) Clear() {
	s.nodes = nil
	s.edges = nil
	s.nodeIndex = make(map[string]GraphNode)
	s.edgeIndex = make(map[string]*Edge)
	s.events.Publish(Topic, Event{Kind: Cleared})
}

// Snapshot copies the current node and edge slices.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Nodes: append([]GraphNode(nil), s.nodes...),
		Edges: append([]*Edge(nil), s.edges...),
	}
}
