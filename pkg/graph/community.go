package graph

import (
	"math"
	"sort"
)

// CommunityNode is a collapsible super-node standing in for a group of
// absorbed nodes. Its counters count cross-community edges only; internal
// edges are kept aside for the inner layout.
type CommunityNode struct {
	ID     string
	Reason Reason
	Vertex

	members map[string]*Node
	order   []string

	internal map[string]*Edge
	inbound  map[string]*Edge
	outbound map[string]*Edge
}

// DissolveInfo is the state a community hands back when it is dissolved.
type DissolveInfo struct {
	Nodes    []*Node
	Internal []*Edge
	Inbound  []*Edge
	Outbound []*Edge
}

// NewCommunity creates an empty, collapsed community.
func NewCommunity(id string, reason Reason) *CommunityNode {
	return &CommunityNode{
		ID:       id,
		Reason:   reason,
		Vertex:   Vertex{Position: Position{Z: 1}},
		members:  make(map[string]*Node),
		internal: make(map[string]*Edge),
		inbound:  make(map[string]*Edge),
		outbound: make(map[string]*Edge),
	}
}

func (c *CommunityNode) Key() string   { return c.ID }
func (c *CommunityNode) Base() *Vertex { return &c.Vertex }
func (*CommunityNode) graphNode()      {}

// InsertNode absorbs a node. Inserting a member twice is a no-op.
func (c *CommunityNode) InsertNode(n *Node) {
	if _, ok := c.members[n.ID]; ok {
		return
	}
	c.members[n.ID] = n
	c.order = append(c.order, n.ID)
}

// HasNode reports whether id is a member.
func (c *CommunityNode) HasNode(id string) bool {
	_, ok := c.members[id]
	return ok
}

// GetNode returns the member with the given id, or nil.
func (c *CommunityNode) GetNode(id string) *Node {
	return c.members[id]
}

// Members returns the absorbed nodes in insertion order.
func (c *CommunityNode) Members() []*Node {
	out := make([]*Node, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.members[id])
	}
	return out
}

// MemberIDs returns the ids of the absorbed nodes in insertion order.
func (c *CommunityNode) MemberIDs() []string {
	return append([]string(nil), c.order...)
}

// Size returns the number of absorbed nodes.
func (c *CommunityNode) Size() int {
	return len(c.members)
}

// InsertOutboundEdge attaches an edge whose source is a member. If the edge
// was already attached as inbound both endpoints are members and it becomes
// internal; the return value reports that case.
func (c *CommunityNode) InsertOutboundEdge(e *Edge) bool {
	if n, ok := e.Source.(*Node); ok {
		e.origSource = n
	}
	e.Source = c
	if _, ok := c.inbound[e.ID]; ok {
		delete(c.inbound, e.ID)
		c.InboundCounter--
		c.internal[e.ID] = e
		return true
	}
	if _, ok := c.outbound[e.ID]; !ok {
		c.outbound[e.ID] = e
		c.OutboundCounter++
	}
	return false
}

// InsertInboundEdge attaches an edge whose target is a member. See
// InsertOutboundEdge for the return value.
func (c *CommunityNode) InsertInboundEdge(e *Edge) bool {
	if n, ok := e.Target.(*Node); ok {
		e.origTarget = n
	}
	e.Target = c
	if _, ok := c.outbound[e.ID]; ok {
		delete(c.outbound, e.ID)
		c.OutboundCounter--
		c.internal[e.ID] = e
		return true
	}
	if _, ok := c.inbound[e.ID]; !ok {
		c.inbound[e.ID] = e
		c.InboundCounter++
	}
	return false
}

// RemoveOutboundEdge detaches the source side of an edge. An internal edge
// is demoted to inbound and keeps pointing at the community as its target.
func (c *CommunityNode) RemoveOutboundEdge(e *Edge) {
	if _, ok := c.internal[e.ID]; ok {
		delete(c.internal, e.ID)
		c.inbound[e.ID] = e
		c.InboundCounter++
		restoreSource(e)
		return
	}
	if _, ok := c.outbound[e.ID]; ok {
		delete(c.outbound, e.ID)
		c.OutboundCounter--
		restoreSource(e)
	}
}

// RemoveInboundEdge detaches the target side of an edge. An internal edge
// is demoted to outbound.
func (c *CommunityNode) RemoveInboundEdge(e *Edge) {
	if _, ok := c.internal[e.ID]; ok {
		delete(c.internal, e.ID)
		c.outbound[e.ID] = e
		c.OutboundCounter++
		restoreTarget(e)
		return
	}
	if _, ok := c.inbound[e.ID]; ok {
		delete(c.inbound, e.ID)
		c.InboundCounter--
		restoreTarget(e)
	}
}

// RemoveEdge drops an edge from whichever partition holds it and restores
// both of its original endpoints.
func (c *CommunityNode) RemoveEdge(e *Edge) {
	switch {
	case c.internal[e.ID] != nil:
		delete(c.internal, e.ID)
	case c.inbound[e.ID] != nil:
		delete(c.inbound, e.ID)
		c.InboundCounter--
	case c.outbound[e.ID] != nil:
		delete(c.outbound, e.ID)
		c.OutboundCounter--
	default:
		return
	}
	if e.Source == GraphNode(c) {
		restoreSource(e)
	}
	if e.Target == GraphNode(c) {
		restoreTarget(e)
	}
}

// HasEdge reports whether the community holds the edge in any partition.
func (c *CommunityNode) HasEdge(id string) bool {
	return c.internal[id] != nil || c.inbound[id] != nil || c.outbound[id] != nil
}

// GetEdge returns the edge with the given id from any partition, or nil.
func (c *CommunityNode) GetEdge(id string) *Edge {
	if e := c.internal[id]; e != nil {
		return e
	}
	if e := c.inbound[id]; e != nil {
		return e
	}
	return c.outbound[id]
}

// InternalEdges returns edges with both endpoints inside, ordered by id.
func (c *CommunityNode) InternalEdges() []*Edge { return sortedEdges(c.internal) }

// InboundEdges returns edges entering the community, ordered by id.
func (c *CommunityNode) InboundEdges() []*Edge { return sortedEdges(c.inbound) }

// OutboundEdges returns edges leaving the community, ordered by id.
func (c *CommunityNode) OutboundEdges() []*Edge { return sortedEdges(c.outbound) }

// DissolveInfo restores every edge to its original endpoints and returns the
// members and edge partitions. The community is empty afterwards.
func (c *CommunityNode) DissolveInfo() DissolveInfo {
	info := DissolveInfo{
		Nodes:    c.Members(),
		Internal: c.InternalEdges(),
		Inbound:  c.InboundEdges(),
		Outbound: c.OutboundEdges(),
	}
	for _, e := range info.Internal {
		restoreSource(e)
		restoreTarget(e)
	}
	for _, e := range info.Inbound {
		restoreTarget(e)
	}
	for _, e := range info.Outbound {
		restoreSource(e)
	}

	c.members = make(map[string]*Node)
	c.order = nil
	c.internal = make(map[string]*Edge)
	c.inbound = make(map[string]*Edge)
	c.outbound = make(map[string]*Edge)
	c.InboundCounter = 0
	c.OutboundCounter = 0
	return info
}

// Expand switches the community to its expanded state.
func (c *CommunityNode) Expand() { c.Expanded = true }

// Collapse switches the community to its collapsed state.
func (c *CommunityNode) Collapse() { c.Expanded = false }

// IsExpanded reports the current state.
func (c *CommunityNode) IsExpanded() bool { return c.Expanded }

// Bounds returns the box enclosing the members' relative positions, grown
// by padding on every side.
func (c *CommunityNode) Bounds(padding float64) Bounds {
	if len(c.members) == 0 {
		return Bounds{MinX: -padding, MinY: -padding, MaxX: padding, MaxY: padding}
	}
	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, n := range c.members {
		b.MinX = math.Min(b.MinX, n.X)
		b.MinY = math.Min(b.MinY, n.Y)
		b.MaxX = math.Max(b.MaxX, n.X)
		b.MaxY = math.Max(b.MaxY, n.Y)
	}
	b.MinX -= padding
	b.MinY -= padding
	b.MaxX += padding
	b.MaxY += padding
	return b
}

func restoreSource(e *Edge) {
	if e.origSource != nil {
		e.Source = e.origSource
		e.origSource = nil
	}
}

func restoreTarget(e *Edge) {
	if e.origTarget != nil {
		e.Target = e.origTarget
		e.origTarget = nil
	}
}

func sortedEdges(m map[string]*Edge) []*Edge {
	out := make([]*Edge, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
