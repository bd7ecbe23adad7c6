// Package adapter coordinates the live graph: it inserts and removes nodes
// and edges, keeps degree counters exact, and drives community collapse and
// expansion to keep the rendered graph within budget.
package adapter

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-graphviewer/pkg/compute"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/joiner"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
	"github.com/dd0wney/cluso-graphviewer/pkg/reducer"
)

// Default canvas size used for random node placement.
const (
	DefaultWidth  = 960.0
	DefaultHeight = 640.0
)

// Abstract is the graph coordinator shared by every data source. It is not
// safe for concurrent use: all calls, including joiner callbacks, must come
// from the goroutine that owns the store.
type Abstract struct {
	store      *graph.Store
	descendant Descendant
	viewer     Viewer

	joiner   JoinerBackend
	reducer  Bucketer
	prioList []string
	newID    func() string
	rand     *rand.Rand
	logger   logging.Logger
	metrics  *metrics.Registry

	width, height float64
	childLimit    int
	nodeLimit     int

	communities map[string]*graph.CommunityNode
	owner       map[string]*graph.CommunityNode

	isRunning      bool
	pendingLimitCb func()
}

// New creates the coordinator for a data source.
func New(store *graph.Store, descendant Descendant, viewer Viewer, opts ...Option) (*Abstract, error) {
	switch {
	case store == nil:
		return nil, &graph.Error{Op: "NewAdapter", Entity: "store", Cause: ErrMissingArgument}
	case descendant == nil:
		return nil, &graph.Error{Op: "NewAdapter", Entity: "descendant", Cause: ErrMissingArgument}
	case viewer == nil:
		return nil, &graph.Error{Op: "NewAdapter", Entity: "viewer", Cause: ErrMissingArgument}
	}

	a := &Abstract{
		store:       store,
		descendant:  descendant,
		viewer:      viewer,
		width:       DefaultWidth,
		height:      DefaultHeight,
		communities: make(map[string]*graph.CommunityNode),
		owner:       make(map[string]*graph.CommunityNode),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.logger = logging.OrNop(a.logger).With(logging.Component("adapter"))
	if a.reducer == nil {
		a.reducer = reducer.New(a.prioList...)
	}
	if a.joiner == nil {
		j := joiner.New(joiner.WithLogger(a.logger), joiner.WithMetrics(a.metrics))
		a.joiner = compute.NewInline(j.Handle, compute.WithLogger(a.logger))
	}
	if a.newID == nil {
		a.newID = func() string { return "*community_" + uuid.NewString() }
	}
	if a.rand == nil {
		a.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if a.metrics != nil {
		a.metrics.SetNodeLimit(a.nodeLimit)
	}
	return a, nil
}

// Store returns the live graph.
func (a *Abstract) Store() *graph.Store { return a.store }

// InsertNode adds a node at a random position. Inserting a known id returns
// the existing node, wherever it currently lives.
func (a *Abstract) InsertNode(data graph.Data) (*graph.Node, error) {
	n, _, err := a.insertNode(data, 0, 0, false)
	return n, err
}

// InsertNodeAt adds a node at the given position.
func (a *Abstract) InsertNodeAt(data graph.Data, x, y float64) (*graph.Node, error) {
	n, _, err := a.insertNode(data, x, y, true)
	return n, err
}

// InsertInitialNode adds the anchor of an exploration: pinned at the canvas
// centre and marked expanded.
func (a *Abstract) InsertInitialNode(data graph.Data) (*graph.Node, error) {
	n, _, err := a.insertNode(data, a.width/2, a.height/2, true)
	if err != nil {
		return nil, err
	}
	n.X, n.Y = a.width/2, a.height/2
	n.PX, n.PY = n.X, n.Y
	n.Fixed = true
	n.Expanded = true
	return n, nil
}

func (a *Abstract) insertNode(data graph.Data, x, y float64, placed bool) (*graph.Node, bool, error) {
	id := data.ID()
	if id == "" {
		return nil, false, graph.InvalidDataError("InsertNode", "node", graph.AttrID)
	}
	if existing := a.lookupNode(id); existing != nil {
		return existing, false, nil
	}
	if a.store.FindNode(id) != nil {
		return nil, false, graph.NewError("InsertNode").Node(id).Context("id used by a community").Cause(graph.ErrInvalidData).Err()
	}

	n, err := graph.NewNode(data)
	if err != nil {
		return nil, false, err
	}
	if !placed {
		x = a.rand.Float64() * a.width
		y = a.rand.Float64() * a.height
	}
	n.X, n.Y = x, y
	n.PX, n.PY = x, y
	a.store.AddNode(n)
	return n, true, nil
}

// lookupNode returns the plain node with id, live or absorbed.
func (a *Abstract) lookupNode(id string) *graph.Node {
	if n, ok := a.store.FindNode(id).(*graph.Node); ok {
		return n
	}
	if c := a.owner[id]; c != nil {
		return c.GetNode(id)
	}
	return nil
}

// lookupEdge returns the edge with id, live or held by a community.
func (a *Abstract) lookupEdge(id string) *graph.Edge {
	if e := a.store.FindEdge(id); e != nil {
		return e
	}
	for _, c := range a.communities {
		if e := c.GetEdge(id); e != nil {
			return e
		}
	}
	return nil
}

// InsertEdge adds an edge between two known nodes. Endpoints absorbed into a
// community are routed through it; an edge between two members of the same
// community becomes internal and is not rendered. Only edges between two
// plain nodes are reported to the joiner.
func (a *Abstract) InsertEdge(data graph.Data) (*graph.Edge, error) {
	id := data.ID()
	if id == "" {
		return nil, graph.InvalidDataError("InsertEdge", "edge", graph.AttrID)
	}
	if e := a.lookupEdge(id); e != nil {
		return e, nil
	}

	src := a.lookupNode(data.From())
	if src == nil {
		return nil, graph.UnknownEndpointError(id, data.From())
	}
	tgt := a.lookupNode(data.To())
	if tgt == nil {
		return nil, graph.UnknownEndpointError(id, data.To())
	}

	e, err := graph.NewEdge(data, src, tgt)
	if err != nil {
		return nil, err
	}
	src.OutboundCounter++
	tgt.InboundCounter++

	internal := false
	if c := a.owner[src.ID]; c != nil {
		internal = c.InsertOutboundEdge(e)
	}
	if c := a.owner[tgt.ID]; c != nil {
		if c.InsertInboundEdge(e) {
			internal = true
		}
	}
	if !internal {
		a.store.AddEdge(e)
	}
	if e.IsPlain() {
		a.notifyJoiner(joiner.CmdInsertEdge, src.ID, tgt.ID)
	}
	return e, nil
}

// RemoveNode removes a node from the live graph. Its edges are left alone;
// use RemoveEdgesForNode first.
func (a *Abstract) RemoveNode(n graph.GraphNode) {
	if c, ok := n.(*graph.CommunityNode); ok {
		a.dropCommunity(c)
		return
	}
	a.store.RemoveNode(n)
}

// RemoveEdge removes a live edge and decrements both endpoints' counters.
func (a *Abstract) RemoveEdge(e *graph.Edge) {
	plain := e.IsPlain()
	s, t := e.SourceID(), e.TargetID()
	if !a.store.RemoveEdge(e) {
		return
	}
	a.detachSource(e)
	a.detachTarget(e)
	if plain {
		a.notifyJoiner(joiner.CmdDeleteEdge, s, t)
	}
}

// RemoveEdgesForNode removes every live edge touching n.
func (a *Abstract) RemoveEdgesForNode(n graph.GraphNode) {
	for _, e := range a.store.EdgesOf(n) {
		a.RemoveEdge(e)
	}
}

// detachSource decrements the source counters of a removed edge, handing the
// edge back from a community to its member.
func (a *Abstract) detachSource(e *graph.Edge) {
	switch s := e.Source.(type) {
	case *graph.CommunityNode:
		member := e.OriginalSource()
		s.RemoveOutboundEdge(e)
		if member != nil {
			member.OutboundCounter--
		}
	case *graph.Node:
		s.OutboundCounter--
	}
}

func (a *Abstract) detachTarget(e *graph.Edge) {
	switch t := e.Target.(type) {
	case *graph.CommunityNode:
		member := e.OriginalTarget()
		t.RemoveInboundEdge(e)
		if member != nil {
			member.InboundCounter--
		}
	case *graph.Node:
		t.InboundCounter--
	}
}

func (a *Abstract) notifyJoiner(cmd joiner.Command, s, t string) {
	a.joiner.Call(joiner.Request{Cmd: cmd, Source: s, Target: t}, func(_ joiner.Response, err error) {
		if err != nil {
			a.logger.Warn("joiner update failed",
				logging.Command(string(cmd)), logging.NodeID(s), logging.String("target", t), logging.Error(err))
		}
	})
}

// SetWidth sets the width of the placement rectangle.
func (a *Abstract) SetWidth(w float64) { a.width = w }

// SetHeight sets the height of the placement rectangle.
func (a *Abstract) SetHeight(h float64) { a.height = h }

// SetChildLimit sets the per-expansion child limit.
func (a *Abstract) SetChildLimit(limit int) { a.childLimit = limit }

// ChildLimit returns the per-expansion child limit.
func (a *Abstract) ChildLimit() int { return a.childLimit }

// NodeLimit returns the rendered node budget.
func (a *Abstract) NodeLimit() int { return a.nodeLimit }

// GetPrioList returns the reducer's attribute priority list.
func (a *Abstract) GetPrioList() []string { return a.reducer.PrioList() }

// SetPrioList replaces the reducer's attribute priority list.
func (a *Abstract) SetPrioList(list []string) { a.reducer.SetPrioList(list) }

// Communities returns the live communities.
func (a *Abstract) Communities() []*graph.CommunityNode { return a.store.Communities() }

// CommunityOf returns the community that absorbed id, or nil.
func (a *Abstract) CommunityOf(id string) *graph.CommunityNode { return a.owner[id] }

// RenderedNodeCount counts live nodes plus the members of expanded communities.
func (a *Abstract) RenderedNodeCount() int {
	n := a.store.NodeCount()
	for _, c := range a.communities {
		if c.Expanded {
			n += c.Size()
		}
	}
	return n
}

// Reset empties the live graph and the joiner.
func (a *Abstract) Reset() {
	a.store.Clear()
	a.communities = make(map[string]*graph.CommunityNode)
	a.owner = make(map[string]*graph.CommunityNode)
	a.joiner.Call(joiner.Request{Cmd: joiner.CmdReset}, func(_ joiner.Response, err error) {
		if err != nil {
			a.logger.Warn("joiner reset failed", logging.Error(err))
		}
	})
	a.observe()
}

// Close releases the joiner backend.
func (a *Abstract) Close() {
	a.joiner.Close()
}

func (a *Abstract) observe() {
	if a.metrics == nil {
		return
	}
	a.metrics.UpdateGraph(a.store.NodeCount(), a.store.EdgeCount(), len(a.communities), a.RenderedNodeCount())
}
