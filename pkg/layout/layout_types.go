package layout

import (
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
)

// Stage is the phase of a running simulation.
type Stage int

const (
	Stopped Stage = iota
	Running
	Slow // redraw on every other tick
)

func (s Stage) String() string {
	switch s {
	case Running:
		return "running"
	case Slow:
		return "slow"
	default:
		return "stopped"
	}
}

// Simulation thresholds.
const (
	StartAlpha     = 0.5
	AlphaDecay     = 0.99
	SlowAlpha      = 0.1
	StopAlpha      = 0.05
	minDistance    = 0.01
	innerDistance  = 0.5 // inner link distance relative to Config.LinkDistance
	innerGravity   = 0.2
	defaultPadding = 20.0
)

// Config holds the force parameters.
type Config struct {
	Width        float64 `yaml:"width" validate:"gte=0"`
	Height       float64 `yaml:"height" validate:"gte=0"`
	LinkDistance float64 `yaml:"link_distance" validate:"gte=0"`
	LinkStrength float64 `yaml:"link_strength" validate:"gte=0,lte=1"`
	Charge       float64 `yaml:"charge" validate:"lte=0"`
	Gravity      float64 `yaml:"gravity" validate:"gte=0"`
	Friction     float64 `yaml:"friction" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the parameters used when a field is zero.
func DefaultConfig() Config {
	return Config{
		Width:        960,
		Height:       640,
		LinkDistance: 80,
		LinkStrength: 1,
		Charge:       -300,
		Gravity:      0.08,
		Friction:     0.9,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.LinkDistance == 0 {
		c.LinkDistance = d.LinkDistance
	}
	if c.LinkStrength == 0 {
		c.LinkStrength = d.LinkStrength
	}
	if c.Charge == 0 {
		c.Charge = d.Charge
	}
	if c.Gravity == 0 {
		c.Gravity = d.Gravity
	}
	if c.Friction == 0 {
		c.Friction = d.Friction
	}
	return c
}

// Option configures a Layouter.
type Option func(*Layouter)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(f *Layouter) { f.logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(f *Layouter) { f.metrics = r }
}
