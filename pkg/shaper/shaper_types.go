package shaper

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
)

// Common sentinel errors
var (
	ErrUnknownShape  = errors.New("unknown shape type")
	ErrUnknownColour = errors.New("unknown colour type")
)

// ShapeType names a node or edge glyph.
type ShapeType string

const (
	ShapeNone   ShapeType = "none"
	ShapeCircle ShapeType = "circle"
	ShapeRect   ShapeType = "rect"
	ShapeImage  ShapeType = "image"
	ShapeLine   ShapeType = "line"
	ShapeArrow  ShapeType = "arrow"
)

// ColourType names a colouring scheme.
type ColourType string

const (
	ColourSingle    ColourType = "single"
	ColourAttribute ColourType = "attribute"
	ColourExpand    ColourType = "expand"
	ColourGradient  ColourType = "gradient"
)

// Defaults for unset options.
const (
	DefaultRadius    = 8.0
	DefaultFill      = "#8AA051"
	DefaultText      = "#FFFFFF"
	DefaultStroke    = "#686766"
	DefaultCollapsed = "#8AA051"
	DefaultExpanded  = "#C5CA3A"
	BoundsPadding    = 12.0
)

// ShapeConfig describes a glyph. Radius applies to circles, Width and
// Height to rects and images, Source to images.
type ShapeConfig struct {
	Type   ShapeType `yaml:"type" json:"type"`
	Radius float64   `yaml:"radius,omitempty" json:"radius,omitempty"`
	Width  float64   `yaml:"width,omitempty" json:"width,omitempty"`
	Height float64   `yaml:"height,omitempty" json:"height,omitempty"`
	Source string    `yaml:"source,omitempty" json:"source,omitempty"`
}

// LabelConfig picks a label: Func wins, then the first present attribute
// of Attributes, then Attribute.
type LabelConfig struct {
	Attribute  string                  `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	Attributes []string                `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Func       func(graph.Data) string `yaml:"-" json:"-"`
}

func (l *LabelConfig) label(d graph.Data) string {
	if l == nil {
		return ""
	}
	if l.Func != nil {
		return l.Func(d)
	}
	for _, k := range l.Attributes {
		if _, ok := d[k]; ok {
			return d.Get(k)
		}
	}
	if l.Attribute != "" {
		return d.Get(l.Attribute)
	}
	return ""
}

// ColourConfig describes a colouring scheme.
//
//	single:    Fill, Stroke
//	attribute: Key (values mapped through the shared colour mapper)
//	expand:    Expanded, Collapsed
//	gradient:  Source, Target (edges only)
type ColourConfig struct {
	Type      ColourType `yaml:"type" json:"type"`
	Fill      string     `yaml:"fill,omitempty" json:"fill,omitempty"`
	Stroke    string     `yaml:"stroke,omitempty" json:"stroke,omitempty"`
	Key       string     `yaml:"key,omitempty" json:"key,omitempty"`
	Expanded  string     `yaml:"expanded,omitempty" json:"expanded,omitempty"`
	Collapsed string     `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
	Source    string     `yaml:"source,omitempty" json:"source,omitempty"`
	Target    string     `yaml:"target,omitempty" json:"target,omitempty"`
}

// NodeHandler reacts to an event on a node.
type NodeHandler func(graph.GraphNode)

// EdgeHandler reacts to an event on an edge.
type EdgeHandler func(*graph.Edge)

// DistortionFunc maps a simulation position to a display position.
type DistortionFunc func(x, y float64) graph.Position

// Identity is the undistorted mapping.
func Identity(x, y float64) graph.Position {
	return graph.Position{X: x, Y: y, Z: 1}
}

// NodeConfig configures a NodeShaper. Nil aspects are left unchanged by
// ChangeTo.
type NodeConfig struct {
	Shape           *ShapeConfig           `yaml:"shape,omitempty"`
	Label           *LabelConfig           `yaml:"label,omitempty"`
	Colour          *ColourConfig          `yaml:"colour,omitempty"`
	Actions         map[string]NodeHandler `yaml:"-"`
	ResetActions    bool                   `yaml:"-"`
	Distortion      DistortionFunc         `yaml:"-"`
	ResetDistortion bool                   `yaml:"-"`
}

// EdgeConfig configures an EdgeShaper. Nil aspects are left unchanged by
// ChangeTo.
type EdgeConfig struct {
	Shape        *ShapeConfig           `yaml:"shape,omitempty"`
	Label        *LabelConfig           `yaml:"label,omitempty"`
	Colour       *ColourConfig          `yaml:"colour,omitempty"`
	Actions      map[string]EdgeHandler `yaml:"-"`
	ResetActions bool                   `yaml:"-"`
}

// Validate checks the shape and colour types.
func (c NodeConfig) Validate() error {
	if err := checkNodeShape(c.Shape); err != nil {
		return err
	}
	return checkColour(c.Colour, ColourSingle, ColourAttribute, ColourExpand)
}

// Validate checks the shape and colour types.
func (c EdgeConfig) Validate() error {
	if err := checkEdgeShape(c.Shape); err != nil {
		return err
	}
	return checkColour(c.Colour, ColourSingle, ColourAttribute, ColourGradient)
}

func checkNodeShape(s *ShapeConfig) error {
	if s == nil {
		return nil
	}
	switch s.Type {
	case ShapeNone, ShapeCircle, ShapeRect, ShapeImage:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownShape, s.Type)
}

func checkEdgeShape(s *ShapeConfig) error {
	if s == nil {
		return nil
	}
	switch s.Type {
	case ShapeNone, ShapeLine, ShapeArrow:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownShape, s.Type)
}

func checkColour(c *ColourConfig, allowed ...ColourType) error {
	if c == nil {
		return nil
	}
	for _, t := range allowed {
		if c.Type == t {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownColour, c.Type)
}

// Gradient is a two stop edge colouring.
type Gradient struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NodeVisual is the rendered description of a node or community.
type NodeVisual struct {
	ID        string        `json:"id"`
	Community bool          `json:"community,omitempty"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Scale     float64       `json:"scale"`
	Shape     ShapeConfig   `json:"shape"`
	Label     string        `json:"label,omitempty"`
	Fill      string        `json:"fill"`
	Text      string        `json:"text"`
	Fixed     bool          `json:"fixed,omitempty"`
	Expanded  bool          `json:"expanded,omitempty"`
	Size      int           `json:"size,omitempty"`
	Reason    *graph.Reason `json:"reason,omitempty"`
	Bounds    *graph.Bounds `json:"bounds,omitempty"`
	Members   []NodeVisual  `json:"members,omitempty"`
	Internal  []EdgeVisual  `json:"internal,omitempty"`
}

// EdgeVisual is the rendered description of an edge.
type EdgeVisual struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Target   string    `json:"target"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	X1       float64   `json:"x1"`
	Y1       float64   `json:"y1"`
	X2       float64   `json:"x2"`
	Y2       float64   `json:"y2"`
	Shape    ShapeType `json:"shape"`
	Label    string    `json:"label,omitempty"`
	Stroke   string    `json:"stroke"`
	Gradient *Gradient `json:"gradient,omitempty"`
}
