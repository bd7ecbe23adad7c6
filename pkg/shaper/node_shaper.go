// Package shaper turns the live graph into renderable descriptions of
// nodes, communities and edges.
package shaper

import (
	"fmt"

	"github.com/dd0wney/cluso-graphviewer/pkg/colour"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
)

// NodeShaper renders nodes and communities. It is not safe for concurrent
// use.
type NodeShaper struct {
	store  *graph.Store
	mapper *colour.Mapper

	shape      ShapeConfig
	label      *LabelConfig
	colour     ColourConfig
	actions    *actions[graph.GraphNode]
	distortion DistortionFunc
}

// NewNodeShaper creates a shaper over store. A nil mapper gets a fresh one.
func NewNodeShaper(store *graph.Store, mapper *colour.Mapper, cfg NodeConfig) (*NodeShaper, error) {
	if mapper == nil {
		mapper = colour.NewMapper()
	}
	s := &NodeShaper{
		store:      store,
		mapper:     mapper,
		shape:      ShapeConfig{Type: ShapeCircle, Radius: DefaultRadius},
		colour:     ColourConfig{Type: ColourSingle, Fill: DefaultFill, Stroke: DefaultText},
		actions:    newActions[graph.GraphNode](),
		distortion: Identity,
	}
	if err := s.ChangeTo(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// ChangeTo applies the aspects set in cfg and leaves the others alone. An
// invalid shape or colour type changes nothing.
func (s *NodeShaper) ChangeTo(cfg NodeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Shape != nil {
		s.shape = *cfg.Shape
		if s.shape.Type == ShapeCircle && s.shape.Radius == 0 {
			s.shape.Radius = DefaultRadius
		}
	}
	if cfg.Label != nil {
		l := *cfg.Label
		s.label = &l
	}
	if cfg.Colour != nil {
		s.colour = *cfg.Colour
	}
	if cfg.ResetActions {
		s.actions.reset()
	}
	for event, fn := range cfg.Actions {
		s.actions.on(event, fn)
	}
	switch {
	case cfg.ResetDistortion:
		s.distortion = Identity
	case cfg.Distortion != nil:
		s.distortion = cfg.Distortion
	}
	return nil
}

// SetDistortion replaces the distortion; nil restores the identity.
func (s *NodeShaper) SetDistortion(fn DistortionFunc) {
	if fn == nil {
		fn = Identity
	}
	s.distortion = fn
}

// Mapper returns the colour mapper.
func (s *NodeShaper) Mapper() *colour.Mapper { return s.mapper }

// On binds fn to event.
func (s *NodeShaper) On(event string, fn NodeHandler) { s.actions.on(event, fn) }

// Fire runs the handlers bound to event and reports whether any ran.
func (s *NodeShaper) Fire(event string, n graph.GraphNode) bool { return s.actions.fire(event, n) }

// Render describes every live node. Display positions are written back to
// the nodes.
func (s *NodeShaper) Render() []NodeVisual {
	nodes := s.store.Nodes()
	out := make([]NodeVisual, 0, len(nodes))
	for _, n := range nodes {
		switch t := n.(type) {
		case *graph.Node:
			out = append(out, s.renderNode(t, 0, 0))
		case *graph.CommunityNode:
			out = append(out, s.renderCommunity(t))
		}
	}
	return out
}

// renderNode describes a plain node positioned at (ox, oy) plus its own
// coordinates.
func (s *NodeShaper) renderNode(n *graph.Node, ox, oy float64) NodeVisual {
	n.Position = s.distortion(ox+n.X, oy+n.Y)
	fill, text := s.nodeColour(n)
	return NodeVisual{
		ID:       n.ID,
		X:        n.Position.X,
		Y:        n.Position.Y,
		Scale:    n.Position.Z,
		Shape:    s.shape,
		Label:    s.label.label(n.Data),
		Fill:     fill,
		Text:     text,
		Fixed:    n.Fixed,
		Expanded: n.Expanded,
	}
}

func (s *NodeShaper) nodeColour(n *graph.Node) (string, string) {
	switch s.colour.Type {
	case ColourAttribute:
		p := s.mapper.Pair(n.Data.Get(s.colour.Key))
		return p.Fill, p.Text
	case ColourExpand:
		if n.Expanded {
			return or(s.colour.Expanded, DefaultExpanded), DefaultText
		}
		return or(s.colour.Collapsed, DefaultCollapsed), DefaultText
	default:
		return or(s.colour.Fill, DefaultFill), or(s.colour.Stroke, DefaultText)
	}
}

func (s *NodeShaper) renderCommunity(c *graph.CommunityNode) NodeVisual {
	c.Position = s.distortion(c.X, c.Y)
	reason := c.Reason
	v := NodeVisual{
		ID:        c.ID,
		Community: true,
		X:         c.Position.X,
		Y:         c.Position.Y,
		Scale:     c.Position.Z,
		Shape:     s.shape,
		Label:     CommunityLabel(c),
		Fill:      s.mapper.CommunityColour(),
		Text:      DefaultText,
		Expanded:  c.Expanded,
		Size:      c.Size(),
		Reason:    &reason,
	}
	if !c.Expanded {
		return v
	}

	b := c.Bounds(BoundsPadding)
	v.Bounds = &b
	members := c.Members()
	v.Members = make([]NodeVisual, 0, len(members))
	for _, m := range members {
		v.Members = append(v.Members, s.renderNode(m, c.X, c.Y))
	}
	for _, e := range c.InternalEdges() {
		src, tgt := e.OriginalSource(), e.OriginalTarget()
		if src == nil || tgt == nil {
			continue
		}
		v.Internal = append(v.Internal, EdgeVisual{
			ID:     e.ID,
			Source: src.ID,
			Target: tgt.ID,
			From:   src.ID,
			To:     tgt.ID,
			X1:     src.Position.X,
			Y1:     src.Position.Y,
			X2:     tgt.Position.X,
			Y2:     tgt.Position.Y,
			Shape:  ShapeLine,
			Stroke: DefaultStroke,
		})
	}
	return v
}

// CommunityLabel names a community after the reason it was formed.
func CommunityLabel(c *graph.CommunityNode) string {
	switch c.Reason.Type {
	case graph.ReasonAttribute:
		return fmt.Sprintf("%s: %s (%d)", c.Reason.Key, c.Reason.Value, c.Size())
	case graph.ReasonSimilar:
		if id := c.Reason.Example.ID(); id != "" {
			return fmt.Sprintf("similar to %s (%d)", id, c.Size())
		}
	case graph.ReasonDefault:
		return fmt.Sprintf("other (%d)", c.Size())
	}
	return fmt.Sprintf("%d nodes", c.Size())
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
