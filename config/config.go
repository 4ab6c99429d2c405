// Package config loads the viewer's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-cone/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cone/engine/swap"
	"github.com/Carmen-Shannon/oxy-cone/engine/triangulation"
	"github.com/Carmen-Shannon/oxy-cone/engine/window"
	"gopkg.in/yaml.v3"
)

// Service configures the triangulation client.
type Service struct {
	URL       string        `yaml:"url"`
	Path      string        `yaml:"path"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	Burst     int           `yaml:"burst"`
}

// Window configures the host window.
type Window struct {
	ID        string  `yaml:"id"`
	Title     string  `yaml:"title"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	FrameRate float64 `yaml:"frame_rate"`
	Headless  bool    `yaml:"headless"`
}

// Render configures the renderer and the scene.
type Render struct {
	Backend        string  `yaml:"backend"`
	VSync          bool    `yaml:"vsync"`
	MSAA           bool    `yaml:"msaa"`
	Supersample    int     `yaml:"supersample"`
	Color          string  `yaml:"color"`
	CameraDistance float32 `yaml:"camera_distance"`
	RotationStep   float32 `yaml:"rotation_step"`
	Profile        bool    `yaml:"profile"`
}

// Cone holds the initial form values.
type Cone struct {
	Height   float64 `yaml:"height"`
	Radius   float64 `yaml:"radius"`
	Segments int     `yaml:"segments"`
}

// Config is the whole configuration file.
type Config struct {
	Service    Service `yaml:"service"`
	Window     Window  `yaml:"window"`
	Render     Render  `yaml:"render"`
	Cone       Cone    `yaml:"cone"`
	Workers    int     `yaml:"workers"`
	Sequencing string  `yaml:"sequencing"`
	LogLevel   string  `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	p := triangulation.DefaultParams()
	return Config{
		Service: Service{
			URL:  triangulation.DefaultBaseURL,
			Path: triangulation.DefaultPath,
		},
		Window: Window{
			ID:        window.DefaultID,
			Title:     "oxy-cone",
			Width:     1280,
			Height:    720,
			FrameRate: 60,
		},
		Render: Render{
			Backend:        renderer.BackendTypeWGPU.String(),
			VSync:          true,
			MSAA:           true,
			Supersample:    1,
			Color:          fmt.Sprintf("#%06x", swap.DefaultColor),
			CameraDistance: 20,
			RotationStep:   0.005,
		},
		Cone: Cone{
			Height:   p.Height,
			Radius:   p.Radius,
			Segments: p.Segments,
		},
		Workers:    2,
		Sequencing: swap.LastResolvedWins.String(),
		LogLevel:   "info",
	}
}

// Load reads path over the defaults. Keys missing from the file keep their default values.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings the program cannot run without. Cone values are not checked;
// they are forwarded to the service as entered.
func (c Config) Validate() error {
	var errs []error
	if c.Service.URL == "" {
		errs = append(errs, errors.New("service.url is required"))
	}
	if c.Window.ID == "" {
		errs = append(errs, errors.New("window.id is required"))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if _, err := renderer.ParseBackendType(c.Render.Backend); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ColorHex(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SequencingMode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := LevelFromString(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers %d must be at least 1", c.Workers))
	}
	return errors.Join(errs...)
}

// ColorHex parses render.color, written as "#rrggbb", "0xrrggbb" or "rrggbb".
func (c Config) ColorHex() (uint32, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(c.Render.Color), "#"), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return 0, fmt.Errorf("render.color %q is not a hex RGB color", c.Render.Color)
	}
	return uint32(v), nil
}

// SequencingMode parses the sequencing setting.
func (c Config) SequencingMode() (swap.Sequencing, error) {
	switch strings.ToLower(c.Sequencing) {
	case "", swap.LastResolvedWins.String():
		return swap.LastResolvedWins, nil
	case swap.LastSubmittedWins.String():
		return swap.LastSubmittedWins, nil
	default:
		return 0, fmt.Errorf("unknown sequencing %q", c.Sequencing)
	}
}

// Params returns the cone section as request parameters.
func (c Config) Params() triangulation.Params {
	return triangulation.Params{Height: c.Cone.Height, Radius: c.Cone.Radius, Segments: c.Cone.Segments}
}

// LevelFromString maps a level name to a slog.Level.
//
// Parameters:
//   - s: one of debug, info, warn, error (case-insensitive)
//
// Returns:
//   - slog.Level: the level
//   - error: error for unknown names
func LevelFromString(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
