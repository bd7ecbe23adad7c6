package adapter

import (
	"sort"

	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/joiner"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
)

// CollapseCommunity replaces the named live nodes with one community. Ids
// that are not live plain nodes are skipped; fewer than two remaining fails
// with ErrTooFewMembers and changes nothing.
func (a *Abstract) CollapseCommunity(ids []string, reason graph.Reason) (*graph.CommunityNode, error) {
	var members []*graph.Node
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if n, ok := a.store.FindNode(id).(*graph.Node); ok {
			members = append(members, n)
		}
	}
	if len(members) < 2 {
		return nil, graph.NewError("CollapseCommunity").Context("members").Cause(ErrTooFewMembers).Err()
	}

	c := graph.NewCommunity(a.newID(), reason)
	var cx, cy float64
	for _, n := range members {
		cx += n.X
		cy += n.Y
	}
	cx /= float64(len(members))
	cy /= float64(len(members))
	c.X, c.Y = cx, cy
	c.PX, c.PY = cx, cy

	for _, n := range members {
		c.InsertNode(n)
	}
	for _, n := range members {
		a.combineCommunityEdges(c, n)
	}
	for _, n := range members {
		a.store.RemoveNode(n)
		a.owner[n.ID] = c
		// members keep positions relative to the community centre
		n.X, n.Y = n.X-cx, n.Y-cy
		n.PX, n.PY = n.X, n.Y
	}
	a.communities[c.ID] = c
	a.store.AddNode(c)

	a.logger.Debug("community collapsed",
		logging.CommunityID(c.ID), logging.Count(c.Size()), logging.String("reason", reason.Type))
	if a.metrics != nil {
		a.metrics.RecordCommunityOperation(metrics.OpCollapse, c.Size())
	}
	a.observe()
	return c, nil
}

// combineCommunityEdges redirects every live edge of member into c. Edges
// that become internal leave the store. The joiner forgets an edge exactly
// once: when its far endpoint is still a plain node at the time it is seen.
func (a *Abstract) combineCommunityEdges(c *graph.CommunityNode, member *graph.Node) {
	for _, e := range a.store.EdgesOf(member) {
		if e.Source == graph.GraphNode(member) {
			s, t := e.SourceID(), e.TargetID()
			_, farIsCommunity := e.Target.(*graph.CommunityNode)
			if c.InsertOutboundEdge(e) {
				a.store.RemoveEdge(e)
			}
			if !farIsCommunity {
				a.notifyJoiner(joiner.CmdDeleteEdge, s, t)
			}
		}
		if e.Target == graph.GraphNode(member) {
			s, t := e.SourceID(), e.TargetID()
			_, farIsCommunity := e.Source.(*graph.CommunityNode)
			if c.InsertInboundEdge(e) {
				a.store.RemoveEdge(e)
			}
			if !farIsCommunity {
				a.notifyJoiner(joiner.CmdDeleteEdge, s, t)
			}
		}
	}
}

// DissolveCommunity restores a community's members and edges to the live
// graph and reports every edge that is plain again to the joiner.
func (a *Abstract) DissolveCommunity(c *graph.CommunityNode) {
	if a.communities[c.ID] != c {
		return
	}
	info := c.DissolveInfo()
	a.store.RemoveNode(c)
	delete(a.communities, c.ID)

	for _, n := range info.Nodes {
		delete(a.owner, n.ID)
		n.X, n.Y = c.X+n.X, c.Y+n.Y
		n.PX, n.PY = n.X, n.Y
		a.store.AddNode(n)
	}
	for _, e := range info.Internal {
		a.store.AddEdge(e)
		a.notifyJoiner(joiner.CmdInsertEdge, e.SourceID(), e.TargetID())
	}
	for _, e := range append(info.Inbound, info.Outbound...) {
		if e.IsPlain() {
			a.notifyJoiner(joiner.CmdInsertEdge, e.SourceID(), e.TargetID())
		}
	}

	a.logger.Debug("community dissolved", logging.CommunityID(c.ID), logging.Count(len(info.Nodes)))
	if a.metrics != nil {
		a.metrics.RecordCommunityOperation(metrics.OpDissolve, 0)
	}
	a.observe()
}

// ExpandCommunity shows a community's inner layout and re-checks the node
// budget, which may collapse something else.
func (a *Abstract) ExpandCommunity(c *graph.CommunityNode, cb func()) {
	c.Expand()
	if a.metrics != nil {
		a.metrics.RecordCommunityOperation(metrics.OpExpand, 0)
	}
	a.CheckNodeLimit(c)
	a.observe()
	if cb != nil {
		cb()
	}
}

// CollapseExploreCommunity removes a community that lost its last inbound
// edge, together with its outbound edges. The removed edges are returned so
// the cascade can continue at their targets.
func (a *Abstract) CollapseExploreCommunity(c *graph.CommunityNode) []*graph.Edge {
	removed := a.removeOutboundEdges(c)
	for _, e := range a.store.EdgesOf(c) {
		a.RemoveEdge(e)
	}
	a.dropCommunity(c)
	if a.metrics != nil {
		a.metrics.RecordCommunityOperation(metrics.OpExploreCollapse, 0)
	}
	return removed
}

func (a *Abstract) dropCommunity(c *graph.CommunityNode) {
	a.store.RemoveNode(c)
	delete(a.communities, c.ID)
	for _, id := range c.MemberIDs() {
		if a.owner[id] == c {
			delete(a.owner, id)
		}
	}
}

// CheckSizeOfInserted buckets the nodes one expansion added when there are
// more than the child limit, and collapses every bucket with more than one
// node.
func (a *Abstract) CheckSizeOfInserted(inserted []*graph.Node) {
	if a.childLimit <= 0 || len(inserted) <= a.childLimit {
		return
	}
	for _, b := range a.reducer.BucketNodes(inserted, a.childLimit) {
		if len(b.Nodes) <= 1 {
			continue
		}
		ids := make([]string, len(b.Nodes))
		for i, n := range b.Nodes {
			ids[i] = n.ID
		}
		if _, err := a.CollapseCommunity(ids, b.Reason); err != nil {
			a.logger.Warn("bucket collapse skipped", logging.Error(err))
		}
	}
}

// SetNodeLimit changes the rendered node budget and enforces it. cb runs
// once the budget is met or the joiner has nothing left to merge, which may
// be after several joiner round trips. Callbacks of calls made while a
// request is in flight all run, in call order.
func (a *Abstract) SetNodeLimit(limit int, cb func()) {
	a.nodeLimit = clampLimit(limit)
	if a.metrics != nil {
		a.metrics.SetNodeLimit(a.nodeLimit)
	}
	a.pendingLimitCb = chain(a.pendingLimitCb, cb)
	if a.CheckNodeLimit(nil) {
		return
	}
	if pending := a.pendingLimitCb; pending != nil {
		a.pendingLimitCb = nil
		pending()
	}
}

func chain(first, then func()) func() {
	switch {
	case first == nil:
		return then
	case then == nil:
		return first
	}
	return func() {
		first()
		then()
	}
}

// CheckNodeLimit enforces the node budget. Expanded communities other than
// focus are collapsed first, largest first; if that is not enough a
// community is requested from the joiner. It reports whether a joiner
// request is still outstanding.
func (a *Abstract) CheckNodeLimit(focus graph.GraphNode) bool {
	if a.nodeLimit <= 0 {
		return a.isRunning
	}
	rendered := a.RenderedNodeCount()
	if rendered <= a.nodeLimit {
		return a.isRunning
	}

	var expanded []*graph.CommunityNode
	for _, c := range a.communities {
		if c.Expanded && graph.GraphNode(c) != focus {
			expanded = append(expanded, c)
		}
	}
	sort.Slice(expanded, func(i, j int) bool {
		if expanded[i].Size() != expanded[j].Size() {
			return expanded[i].Size() > expanded[j].Size()
		}
		return expanded[i].ID < expanded[j].ID
	})
	for _, c := range expanded {
		if rendered <= a.nodeLimit {
			break
		}
		c.Collapse()
		rendered -= c.Size()
		if a.metrics != nil {
			a.metrics.RecordCommunityOperation(metrics.OpCollapseExpanded, 0)
		}
	}
	if rendered > a.nodeLimit {
		a.requestCollapse(focus)
	}
	return a.isRunning
}

// requestCollapse asks the joiner for a community to collapse. While one
// request is in flight further requests are dropped.
func (a *Abstract) requestCollapse(focus graph.GraphNode) {
	if a.isRunning {
		a.logger.Debug("collapse request dropped", logging.Error(ErrLimitBusy))
		if a.metrics != nil {
			a.metrics.RecordJoinerDropped()
		}
		return
	}
	a.isRunning = true

	req := joiner.Request{Cmd: joiner.CmdGetCommunity, Limit: a.nodeLimit}
	if n, ok := focus.(*graph.Node); ok {
		req.Focus = n.ID
	}
	a.joiner.Call(req, a.HandleJoinerResponse)
}

// HandleJoinerResponse applies the result of a getCommunity request. Errors
// are logged and the step abandoned. Ids that are no longer live plain nodes
// are ignored. While a SetNodeLimit callback is pending, a successful
// collapse is followed by another budget check.
func (a *Abstract) HandleJoinerResponse(resp joiner.Response, err error) {
	a.isRunning = false
	cb := a.pendingLimitCb
	a.pendingLimitCb = nil

	collapsed := false
	switch {
	case err != nil:
		a.logger.Error("community computation failed", logging.Command(string(resp.Cmd)), logging.Error(err))
	case resp.Community == nil:
		a.logger.Debug("no community to collapse")
	default:
		c, cerr := a.CollapseCommunity(resp.Community.Nodes, graph.Reason{Type: graph.ReasonModular})
		if cerr != nil {
			a.logger.Debug("stale community ignored", logging.Error(cerr))
		} else {
			collapsed = true
			a.logger.Info("community collapsed for node limit",
				logging.CommunityID(c.ID), logging.Count(c.Size()), logging.Float64("q", resp.Community.Q))
		}
	}

	if collapsed && cb != nil {
		a.pendingLimitCb = cb
		// An inline joiner answers within CheckNodeLimit and takes cb with it.
		if a.CheckNodeLimit(nil) || a.pendingLimitCb == nil {
			a.viewer.Start()
			return
		}
		a.pendingLimitCb = nil
	}
	if cb != nil {
		cb()
	}
	if err == nil {
		a.viewer.Start()
	}
}
