// Package zoom tracks the view transform, derives the rendered node budget
// from it and provides the fisheye distortion used while zoomed out.
package zoom

import (
	"errors"
	"math"

	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
)

// ErrInvalidSize is returned for a canvas without area.
var ErrInvalidSize = errors.New("canvas width and height must be positive")

// Manager is not safe for concurrent use.
type Manager struct {
	cfg     Config
	onLimit LimitFunc

	scale       float64
	minScale    float64
	labelToggle float64
	translateX  float64
	translateY  float64
	focusX      float64
	focusY      float64
	fisheyeR    float64
	fisheyeK0   float64
	fisheyeK1   float64
	fisheyeDist float64

	logger  logging.Logger
	metrics *metrics.Registry
}

// New creates a manager at scale 1 and reports the initial budget.
func New(cfg Config, onLimit LimitFunc, opts ...Option) (*Manager, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrInvalidSize
	}
	cfg = cfg.withDefaults()
	m := &Manager{
		cfg:         cfg,
		onLimit:     onLimit,
		scale:       1,
		minScale:    cfg.RadiusMin / cfg.RadiusMax,
		labelToggle: cfg.FontMin / cfg.FontMax,
		focusX:      cfg.Width / 2,
		focusY:      cfg.Height / 2,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrNop(m.logger).With(logging.Component("zoom"))
	m.changed()
	return m, nil
}

// Scale returns the current zoom factor.
func (m *Manager) Scale() float64 { return m.scale }

// ScaleExtent returns the allowed zoom range.
func (m *Manager) ScaleExtent() (min, max float64) { return m.minScale, 1 }

// LabelToggle returns the scale at and above which labels are drawn.
func (m *Manager) LabelToggle() float64 { return m.labelToggle }

// ShowLabels reports whether labels are drawn at the current scale.
func (m *Manager) ShowLabels() bool { return m.scale >= m.labelToggle }

// Translation returns the current pan offset.
func (m *Manager) Translation() (x, y float64) { return m.translateX, m.translateY }

// Size returns the canvas size.
func (m *Manager) Size() (width, height float64) { return m.cfg.Width, m.cfg.Height }

// Zoom sets the scale, clamped to the extent.
func (m *Manager) Zoom(scale float64) {
	m.scale = math.Max(m.minScale, math.Min(1, scale))
	m.changed()
}

// Translate pans the view.
func (m *Manager) Translate(dx, dy float64) {
	m.translateX += dx
	m.translateY += dy
	m.changed()
}

// Focus moves the fisheye centre.
func (m *Manager) Focus(x, y float64) {
	m.focusX, m.focusY = x, y
}

// ChangeWidth resizes the canvas keeping its aspect ratio.
func (m *Manager) ChangeWidth(w float64) error {
	if w <= 0 {
		return ErrInvalidSize
	}
	m.cfg.Height *= w / m.cfg.Width
	m.cfg.Width = w
	m.changed()
	return nil
}

// Footprint is the screen area one node needs at the current scale: a
// label box when labels are shown, the icon disc otherwise.
func (m *Manager) Footprint() float64 {
	if m.ShowLabels() {
		size := m.cfg.FontMax * m.scale
		return 60 * size * size
	}
	size := m.cfg.RadiusMax * m.scale
	return 4 * math.Pi * size * size
}

// Limit is the number of nodes that fit on the canvas at the current scale.
func (m *Manager) Limit() int {
	return int(math.Floor(m.cfg.Width * m.cfg.Height / m.Footprint()))
}

func (m *Manager) changed() {
	m.fisheyeR = m.cfg.Fisheye / m.scale
	m.fisheyeDist = m.cfg.Distortion / m.scale
	k0 := math.Exp(m.fisheyeDist)
	m.fisheyeK0 = k0 / (k0 - 1) * m.fisheyeR
	m.fisheyeK1 = m.fisheyeDist / m.fisheyeR

	limit := m.Limit()
	m.logger.Debug("zoom changed", logging.Float64("scale", m.scale), logging.Limit(limit))
	if m.metrics != nil {
		m.metrics.RecordZoom(m.scale, limit)
	}
	if m.onLimit != nil {
		m.onLimit(limit)
	}
}

// FisheyeRadius returns the current distortion radius.
func (m *Manager) FisheyeRadius() float64 { return m.fisheyeR }

// FisheyeDistortion returns the current distortion strength.
func (m *Manager) FisheyeDistortion() float64 { return m.fisheyeDist }

// Distortion returns the circular fisheye around the current focus. Points
// outside the radius keep their position and scale 1.
func (m *Manager) Distortion() func(x, y float64) graph.Position {
	return m.fisheye
}

func (m *Manager) fisheye(x, y float64) graph.Position {
	dx, dy := x-m.focusX, y-m.focusY
	dd := math.Hypot(dx, dy)
	if dd >= m.fisheyeR {
		return graph.Position{X: x, Y: y, Z: 1}
	}
	if dd == 0 {
		return graph.Position{X: x, Y: y, Z: maxFisheyeScale}
	}
	k := m.fisheyeK0*(1-math.Exp(-dd*m.fisheyeK1))/dd*0.75 + 0.25
	return graph.Position{X: m.focusX + dx*k, Y: m.focusY + dy*k, Z: math.Min(k, maxFisheyeScale)}
}
