package adapter

import (
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/joiner"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
)

// Explore toggles n: a collapsed node is expanded by loading its
// neighbourhood, an expanded node is collapsed, and communities switch
// between their glyph and their inner layout.
func (a *Abstract) Explore(n graph.GraphNode, cb func(error)) {
	done := func(err error) {
		if cb != nil {
			cb(err)
		}
	}
	switch t := n.(type) {
	case *graph.CommunityNode:
		if !t.Expanded {
			a.ExpandCommunity(t, func() {
				a.viewer.Start()
				done(nil)
			})
			return
		}
		t.Collapse()
		if a.metrics != nil {
			a.metrics.RecordCommunityOperation(metrics.OpCollapseExpanded, 0)
		}
		a.observe()
		a.viewer.Start()
		done(nil)
	case *graph.Node:
		if !t.Expanded {
			a.ExpandNode(t, done)
			return
		}
		a.CollapseNode(t)
		a.viewer.Start()
		done(nil)
	default:
		done(graph.NewError("Explore").Context("unsupported node type").Cause(graph.ErrInvalidData).Err())
	}
}

// ExpandNode marks n expanded and asks the data source for its neighbourhood.
func (a *Abstract) ExpandNode(n *graph.Node, cb func(error)) {
	n.Expanded = true
	a.descendant.LoadNode(n.ID, func(_ LoadResult, err error) {
		if err != nil {
			a.logger.Warn("expand failed", logging.NodeID(n.ID), logging.Error(err))
		}
		if cb != nil {
			cb(err)
		}
	})
}

// CollapseNode removes n's outbound edges. Every target left without an
// inbound edge is removed as well, together with its own outbound edges,
// until nothing more becomes unreachable. Fixed nodes are kept.
func (a *Abstract) CollapseNode(n graph.GraphNode) {
	work := a.removeOutboundEdges(n)
	n.Base().Expanded = false
	for len(work) > 0 {
		e := work[0]
		work = work[1:]
		work = append(work, a.handleRemovedEdge(e)...)
	}
	a.observe()
}

// removeOutboundEdges takes n's outbound edges out of the store and
// detaches their source side. Target counters are left to the caller.
func (a *Abstract) removeOutboundEdges(n graph.GraphNode) []*graph.Edge {
	removed := a.store.OutboundEdges(n)
	for _, e := range removed {
		plain := e.IsPlain()
		s, t := e.SourceID(), e.TargetID()
		a.store.RemoveEdge(e)
		a.detachSource(e)
		if plain {
			a.notifyJoiner(joiner.CmdDeleteEdge, s, t)
		}
	}
	return removed
}

// handleRemovedEdge finishes the removal of e at its target and returns
// the edges removed in turn if the target became unreachable.
func (a *Abstract) handleRemovedEdge(e *graph.Edge) []*graph.Edge {
	tgt := e.Target
	a.detachTarget(e)

	switch t := tgt.(type) {
	case *graph.CommunityNode:
		if a.communities[t.ID] == t && t.InboundCounter <= 0 {
			a.logger.Debug("community unreachable", logging.CommunityID(t.ID))
			return a.CollapseExploreCommunity(t)
		}
	case *graph.Node:
		if t.InboundCounter > 0 || t.Fixed || a.store.FindNode(t.ID) != graph.GraphNode(t) {
			return nil
		}
		removed := a.removeOutboundEdges(t)
		t.Expanded = false
		a.store.RemoveNode(t)
		return removed
	}
	return nil
}
