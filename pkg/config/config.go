// Package config loads the viewer's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-graphviewer/pkg/adapter/jsonadapter"
	"github.com/dd0wney/cluso-graphviewer/pkg/layout"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/shaper"
	"github.com/dd0wney/cluso-graphviewer/pkg/viewer"
	"github.com/dd0wney/cluso-graphviewer/pkg/zoom"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Server defaults.
const (
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Config is the whole viewer configuration.
type Config struct {
	Canvas  CanvasConfig         `yaml:"canvas"`
	Source  SourceConfig         `yaml:"source"`
	Adapter viewer.AdapterConfig `yaml:"adapter"`
	Layout  layout.Config        `yaml:"layout"`
	Zoom    ZoomConfig           `yaml:"zoom"`
	Nodes   shaper.NodeConfig    `yaml:"nodes"`
	Edges   shaper.EdgeConfig    `yaml:"edges"`
	Server  ServerConfig         `yaml:"server"`
	Log     LogConfig            `yaml:"log"`
}

// CanvasConfig is the drawing area. Layout and zoom inherit it.
type CanvasConfig struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

// SourceConfig selects the graph document. An empty File serves an empty
// graph.
type SourceConfig struct {
	File      string `yaml:"file"`
	Direction string `yaml:"direction"`
}

// ZoomConfig enables zoom driven node limits.
type ZoomConfig struct {
	Enabled     bool `yaml:"enabled"`
	zoom.Config `yaml:",inline"`
}

// ServerConfig configures `graphviewer serve`.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
	TickInterval    time.Duration `yaml:"tick_interval" validate:"gte=0"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used for absent keys.
func Default() Config {
	return Config{
		Canvas: CanvasConfig{Width: 960, Height: 640},
		Source: SourceConfig{Direction: string(jsonadapter.Outbound)},
		Layout: layout.DefaultConfig(),
		Zoom:   ZoomConfig{Enabled: true},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			TickInterval:    viewer.DefaultTickInterval,
		},
		Log: LogConfig{Level: strings.ToLower(logging.LevelFromEnv().String())},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize copies the canvas size into the layout and zoom sections.
func (c *Config) Normalize() {
	c.Layout.Width, c.Layout.Height = c.Canvas.Width, c.Canvas.Height
	c.Zoom.Width, c.Zoom.Height = c.Canvas.Width, c.Canvas.Height
	c.Log.Level = strings.ToLower(c.Log.Level)
}

// Validate checks struct tags first, then cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, formatValidationError(err))
	}

	err := newChecker("config").
		OneOf("source.direction", c.Source.Direction, []string{string(jsonadapter.Outbound), string(jsonadapter.Any)}).
		OneOf("log.level", c.Log.Level, logLevels).
		Custom("nodes", c.Nodes.Validate).
		Custom("edges", c.Edges.Validate).
		When(c.Zoom.Enabled, func(ch *checker) {
			ch.PositiveFloat("zoom.width", c.Zoom.Width).
				PositiveFloat("zoom.height", c.Zoom.Height).
				Custom("zoom", func() error {
					if c.Zoom.FontMin > c.Zoom.FontMax && c.Zoom.FontMax > 0 {
						return fmt.Errorf("font_min %v exceeds font_max %v", c.Zoom.FontMin, c.Zoom.FontMax)
					}
					if c.Zoom.RadiusMin > c.Zoom.RadiusMax && c.Zoom.RadiusMax > 0 {
						return fmt.Errorf("radius_min %v exceeds radius_max %v", c.Zoom.RadiusMin, c.Zoom.RadiusMax)
					}
					return nil
				})
		}).
		Err()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ViewerConfig maps the configuration onto viewer.Config.
func (c *Config) ViewerConfig() viewer.Config {
	vc := viewer.Config{
		Width:      c.Canvas.Width,
		Height:     c.Canvas.Height,
		NodeShaper: c.Nodes,
		EdgeShaper: c.Edges,
		Layouter:   c.Layout,
		Adapter:    c.Adapter,
	}
	if c.Zoom.Enabled {
		z := c.Zoom.Config
		vc.Zoom = &z
	}
	return vc
}

// Factory returns the data source factory for the configured document.
func (c *Config) Factory(logger logging.Logger) viewer.Factory {
	opts := []jsonadapter.Option{
		jsonadapter.WithDirection(jsonadapter.Direction(c.Source.Direction)),
		jsonadapter.WithLogger(logger),
	}
	if c.Source.File == "" {
		return viewer.JSONSource(&jsonadapter.Document{}, opts...)
	}
	return viewer.JSONFile(c.Source.File, opts...)
}

// Logger builds a JSON logger on stderr at the configured level.
func (c *Config) Logger() logging.Logger {
	return logging.NewJSONLogger(os.Stderr, logging.ParseLevel(c.Log.Level))
}
