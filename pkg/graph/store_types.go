package graph

// EventKind identifies a store mutation.
type EventKind string

const (
	NodeAdded   EventKind = "node_added"
	NodeRemoved EventKind = "node_removed"
	EdgeAdded   EventKind = "edge_added"
	EdgeRemoved EventKind = "edge_removed"
	Cleared     EventKind = "cleared"
)

// Topic is the pubsub topic store events are published on.
const Topic = "graph"

// Event describes a single store mutation.
type Event struct {
	Kind EventKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

// Snapshot is a point-in-time copy of the store's contents.
type Snapshot struct {
	Nodes []GraphNode
	Edges []*Edge
}

// Communities returns the community nodes of the snapshot.
func (s Snapshot) Communities() []*CommunityNode {
	var out []*CommunityNode
	for _, n := range s.Nodes {
		if c, ok := n.(*CommunityNode); ok {
			out = append(out, c)
		}
	}
	return out
}
