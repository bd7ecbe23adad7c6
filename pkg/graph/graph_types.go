package graph

import "fmt"

// Document attribute names used to identify nodes and edges.
const (
	AttrID   = "_id"
	AttrKey  = "_key"
	AttrRev  = "_rev"
	AttrFrom = "_from"
	AttrTo   = "_to"
)

// Data is a raw vertex or edge document.
type Data map[string]any

// Get returns the string form of an attribute, or "" if absent.
func (d Data) Get(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ID returns the document's _id attribute.
func (d Data) ID() string { return d.Get(AttrID) }

// From returns an edge document's _from attribute.
func (d Data) From() string { return d.Get(AttrFrom) }

// To returns an edge document's _to attribute.
func (d Data) To() string { return d.Get(AttrTo) }

// Position is a distorted display position; Z is the distortion scale.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vertex holds the state shared by every renderable node.
type Vertex struct {
	X, Y   float64 // simulation position
	PX, PY float64 // previous simulation position

	Position Position
	Weight   float64

	Fixed    bool
	Expanded bool

	InboundCounter  int
	OutboundCounter int
}

// GraphNode is either a *Node or a *CommunityNode.
type GraphNode interface {
	Key() string
	Base() *Vertex
	graphNode()
}

// Node is a plain vertex loaded from a data source.
type Node struct {
	ID   string
	Data Data
	Vertex
}

// NewNode creates a node from a document. The document must carry an _id.
func NewNode(data Data) (*Node, error) {
	id := data.ID()
	if id == "" {
		return nil, InvalidDataError("NewNode", "node", AttrID)
	}
	return &Node{ID: id, Data: data, Vertex: Vertex{Position: Position{Z: 1}}}, nil
}

func (n *Node) Key() string   { return n.ID }
func (n *Node) Base() *Vertex { return &n.Vertex }
func (*Node) graphNode()      {}

// Edge connects two rendered nodes. While an endpoint is absorbed into a
// community the edge points at the community and remembers the member.
type Edge struct {
	ID     string
	Data   Data
	Source GraphNode
	Target GraphNode

	origSource *Node
	origTarget *Node
}

// NewEdge creates an edge between two resolved endpoints.
func NewEdge(data Data, source, target GraphNode) (*Edge, error) {
	id := data.ID()
	if id == "" {
		return nil, InvalidDataError("NewEdge", "edge", AttrID)
	}
	return &Edge{ID: id, Data: data, Source: source, Target: target}, nil
}

// OriginalSource returns the plain node the edge starts at, looking through
// a community redirection. It is nil only if the source is a community that
// did not record a member.
func (e *Edge) OriginalSource() *Node {
	if e.origSource != nil {
		return e.origSource
	}
	n, _ := e.Source.(*Node)
	return n
}

// OriginalTarget is the target counterpart of OriginalSource.
func (e *Edge) OriginalTarget() *Node {
	if e.origTarget != nil {
		return e.origTarget
	}
	n, _ := e.Target.(*Node)
	return n
}

// SourceID returns the id of the original source node.
func (e *Edge) SourceID() string {
	if n := e.OriginalSource(); n != nil {
		return n.ID
	}
	return e.Data.From()
}

// TargetID returns the id of the original target node.
func (e *Edge) TargetID() string {
	if n := e.OriginalTarget(); n != nil {
		return n.ID
	}
	return e.Data.To()
}

// IsPlain reports whether both rendered endpoints are plain nodes.
func (e *Edge) IsPlain() bool {
	_, s := e.Source.(*Node)
	_, t := e.Target.(*Node)
	return s && t
}

// Reason explains why a set of nodes was grouped into a community.
type Reason struct {
	Type    string `json:"type"`
	Key     string `json:"key,omitempty"`
	Value   string `json:"value,omitempty"`
	Example Data   `json:"example,omitempty"`
}

// Reason types.
const (
	ReasonSingle    = "single"
	ReasonAttribute = "attribute"
	ReasonDefault   = "default"
	ReasonSimilar   = "similar"
	ReasonModular   = "modularity"
)

// Bounds is an axis-aligned box relative to a community's centre.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }
