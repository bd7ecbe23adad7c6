package zoom

import (
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
)

// Default sizes in screen pixels at scale 1.
const (
	DefaultFontMax           = 16.0
	DefaultFontMin           = 6.0
	DefaultRadiusMax         = 25.0
	DefaultRadiusMin         = 4.0
	DefaultFisheyeRadius     = 100.0
	DefaultFisheyeDistortion = 1.0
	maxFisheyeScale          = 10.0
)

// Config describes the canvas and glyph sizes. The scale extent runs from
// RadiusMin/RadiusMax to 1; labels are drawn at or above FontMin/FontMax.
type Config struct {
	Width      float64 `yaml:"width" validate:"gt=0"`
	Height     float64 `yaml:"height" validate:"gt=0"`
	FontMax    float64 `yaml:"font_max" validate:"gte=0"`
	FontMin    float64 `yaml:"font_min" validate:"gte=0"`
	RadiusMax  float64 `yaml:"radius_max" validate:"gte=0"`
	RadiusMin  float64 `yaml:"radius_min" validate:"gte=0"`
	Fisheye    float64 `yaml:"fisheye_radius" validate:"gte=0"`
	Distortion float64 `yaml:"fisheye_distortion" validate:"gte=0"`
}

func (c Config) withDefaults() Config {
	if c.FontMax == 0 {
		c.FontMax = DefaultFontMax
	}
	if c.FontMin == 0 {
		c.FontMin = DefaultFontMin
	}
	if c.RadiusMax == 0 {
		c.RadiusMax = DefaultRadiusMax
	}
	if c.RadiusMin == 0 {
		c.RadiusMin = DefaultRadiusMin
	}
	if c.Fisheye == 0 {
		c.Fisheye = DefaultFisheyeRadius
	}
	if c.Distortion == 0 {
		c.Distortion = DefaultFisheyeDistortion
	}
	return c
}

// LimitFunc receives the node budget after every zoom or pan.
type LimitFunc func(limit int)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(m *Manager) { m.metrics = r }
}
