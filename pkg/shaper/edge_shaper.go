package shaper

import (
	"github.com/dd0wney/cluso-graphviewer/pkg/colour"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
)

// EdgeShaper renders the live edges. Endpoint positions are read from the
// display positions the NodeShaper wrote, so render nodes first.
type EdgeShaper struct {
	store  *graph.Store
	mapper *colour.Mapper

	shape   ShapeType
	label   *LabelConfig
	colour  ColourConfig
	actions *actions[*graph.Edge]
}

// NewEdgeShaper creates a shaper over store. A nil mapper gets a fresh one.
func NewEdgeShaper(store *graph.Store, mapper *colour.Mapper, cfg EdgeConfig) (*EdgeShaper, error) {
	if mapper == nil {
		mapper = colour.NewMapper()
	}
	s := &EdgeShaper{
		store:   store,
		mapper:  mapper,
		shape:   ShapeArrow,
		colour:  ColourConfig{Type: ColourSingle, Stroke: DefaultStroke},
		actions: newActions[*graph.Edge](),
	}
	if err := s.ChangeTo(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// ChangeTo applies the aspects set in cfg and leaves the others alone.
func (s *EdgeShaper) ChangeTo(cfg EdgeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Shape != nil {
		s.shape = cfg.Shape.Type
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
	return nil
}

// On binds fn to event.
func (s *EdgeShaper) On(event string, fn EdgeHandler) { s.actions.on(event, fn) }

// Fire runs the handlers bound to event and reports whether any ran.
func (s *EdgeShaper) Fire(event string, e *graph.Edge) bool { return s.actions.fire(event, e) }

// Render describes every live edge.
func (s *EdgeShaper) Render() []EdgeVisual {
	edges := s.store.Edges()
	out := make([]EdgeVisual, 0, len(edges))
	for _, e := range edges {
		src, tgt := e.Source.Base(), e.Target.Base()
		v := EdgeVisual{
			ID:     e.ID,
			Source: e.Source.Key(),
			Target: e.Target.Key(),
			From:   e.SourceID(),
			To:     e.TargetID(),
			X1:     src.Position.X,
			Y1:     src.Position.Y,
			X2:     tgt.Position.X,
			Y2:     tgt.Position.Y,
			Shape:  s.shape,
			Label:  s.label.label(e.Data),
		}
		switch s.colour.Type {
		case ColourAttribute:
			v.Stroke = s.mapper.Colour(e.Data.Get(s.colour.Key))
		case ColourGradient:
			v.Stroke = or(s.colour.Source, DefaultStroke)
			v.Gradient = &Gradient{From: or(s.colour.Source, DefaultStroke), To: or(s.colour.Target, DefaultStroke)}
		default:
			v.Stroke = or(s.colour.Stroke, DefaultStroke)
		}
		out = append(out, v)
	}
	return out
}
