// Package config handles configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/shellfog/internal/engine/debug"
	"github.com/Faultbox/shellfog/internal/engine/shell"
)

// Config holds all renderer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Shells  ShellsConfig  `yaml:"shells"`
	Camera  CameraConfig  `yaml:"camera"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// ShellsConfig describes the shell stack, nearest shell first.
type ShellsConfig struct {
	Resolutions   []string   `yaml:"resolutions"` // "RXxRY" or "N"
	DepthExponent int        `yaml:"depth_exponent"`
	NoiseScale    float32    `yaml:"noise_scale"`
	BaseColor     [3]float32 `yaml:"base_color,flow"`
	TipColor      [3]float32 `yaml:"tip_color,flow"`
}

// CameraConfig holds the initial pose and fly speeds.
type CameraConfig struct {
	Position  [3]float32 `yaml:"position,flow"`
	MoveSpeed float32    `yaml:"move_speed"` // units per second
	TurnSpeed float32    `yaml:"turn_speed"` // radians per second
}

// RenderConfig holds per-frame behaviour.
type RenderConfig struct {
	FatalFrameErrors bool       `yaml:"fatal_frame_errors"`
	ClearColor       [4]float32 `yaml:"clear_color,flow"`
	DecayWorkers     int        `yaml:"decay_workers"` // 0 or 1 decays inline
	ScreenshotDir    string     `yaml:"screenshot_dir"`
	ScreenshotFormat string     `yaml:"screenshot_format"` // png or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "shellfog",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Shells: ShellsConfig{
			Resolutions:   []string{"64x64", "64x64", "48x48", "48x48", "32x32", "32x32", "16x16", "16x16"},
			DepthExponent: 2,
			NoiseScale:    24,
			BaseColor:     [3]float32{0.20, 0.32, 0.18},
			TipColor:      [3]float32{0.78, 0.86, 0.55},
		},
		Camera: CameraConfig{
			Position:  [3]float32{0, 0, 0},
			MoveSpeed: 0.25,
			TurnSpeed: 1.2,
		},
		Render: RenderConfig{
			ClearColor:       [4]float32{0.05, 0.06, 0.08, 1.0},
			ScreenshotDir:    "screenshots",
			ScreenshotFormat: debug.FormatPNG,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// ShellResolutions parses the configured shell resolutions.
func (c *Config) ShellResolutions() ([]shell.Resolution, error) {
	res := make([]shell.Resolution, 0, len(c.Shells.Resolutions))
	for i, s := range c.Shells.Resolutions {
		r, err := shell.ParseResolution(s)
		if err != nil {
			return nil, fmt.Errorf("shells.resolutions[%d]: %w", i, err)
		}
		res = append(res, r)
	}
	return res, nil
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if len(c.Shells.Resolutions) == 0 {
		errs = append(errs, errors.New("shells.resolutions is empty"))
	}
	if _, err := c.ShellResolutions(); err != nil {
		errs = append(errs, err)
	}
	if c.Shells.NoiseScale <= 0 {
		errs = append(errs, fmt.Errorf("shells.noise_scale %g must be positive", c.Shells.NoiseScale))
	}
	if c.Camera.MoveSpeed < 0 || c.Camera.TurnSpeed < 0 {
		errs = append(errs, errors.New("camera speeds must not be negative"))
	}
	if c.Render.DecayWorkers < 0 {
		errs = append(errs, fmt.Errorf("render.decay_workers %d must not be negative", c.Render.DecayWorkers))
	}
	if !debug.ValidFormat(c.Render.ScreenshotFormat) {
		errs = append(errs, fmt.Errorf("render.screenshot_format %q is not png or bmp", c.Render.ScreenshotFormat))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	return errors.Join(errs...)
}
