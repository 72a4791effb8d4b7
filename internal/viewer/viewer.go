// Package viewer wires the SDL window, the GL renderer and the frame loop
// around an app.App.
package viewer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/shellfog/internal/app"
	"github.com/Faultbox/shellfog/internal/config"
	"github.com/Faultbox/shellfog/internal/engine/camera"
	"github.com/Faultbox/shellfog/internal/engine/debug"
	"github.com/Faultbox/shellfog/internal/engine/input"
	"github.com/Faultbox/shellfog/internal/engine/renderer"
	"github.com/Faultbox/shellfog/internal/engine/renderer/shaders"
	"github.com/Faultbox/shellfog/internal/engine/scheduler"
	"github.com/Faultbox/shellfog/internal/engine/window"
	"github.com/Faultbox/shellfog/internal/logger"
	"github.com/Faultbox/shellfog/pkg/math"
)

// Viewer is the running desktop instance.
type Viewer struct {
	cfg      *config.Config
	log      *zap.Logger
	window   *window.Window
	renderer *renderer.Renderer
	app      *app.App
}

// New opens the window, initialises GL and uploads the shell stack.
// Must be called from the locked main thread.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg: cfg,
		log: logger.Named("viewer"),
	}
	v.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Strings("shells", cfg.Shells.Resolutions),
	)

	resolutions, err := cfg.ShellResolutions()
	if err != nil {
		return nil, err
	}

	// Window first: it owns the GL context.
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := v.window.GetSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		ClearColor: cfg.Render.ClearColor,
	}, v.window)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.app, err = app.New(app.Config{
		Width:          width,
		Height:         height,
		Resolutions:    resolutions,
		DepthExponent:  cfg.Shells.DepthExponent,
		NoiseScale:     cfg.Shells.NoiseScale,
		BaseColor:      cfg.Shells.BaseColor,
		TipColor:       cfg.Shells.TipColor,
		CameraPosition: math.Vec3{X: cfg.Camera.Position[0], Y: cfg.Camera.Position[1], Z: cfg.Camera.Position[2]},
		Controls: camera.Controls{
			MoveSpeed: cfg.Camera.MoveSpeed,
			TurnSpeed: cfg.Camera.TurnSpeed,
		},
		Screenshots:    debug.NewScreenshotCapture(cfg.Render.ScreenshotDir, "shellfog", cfg.Render.ScreenshotFormat),
		DecayWorkers:   cfg.Render.DecayWorkers,
		VertexShader:   shaders.ShellVertexShader,
		FragmentShader: shaders.ShellFragmentShader,
	}, v.renderer, logger.Named("app"))
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to build shell stack: %w", err)
	}

	v.log.Info("viewer initialized successfully")
	return v, nil
}

// Run drives the frame loop until the window closes, Escape is pressed or
// ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	loop := &scheduler.Loop{
		Scheduler:       scheduler.New(),
		Source:          input.NewSDLSource(),
		Handler:         v.app,
		FatalDrawErrors: v.cfg.Render.FatalFrameErrors,
		Log:             logger.Named("scheduler"),
	}
	return loop.Run(ctx)
}

// Close releases GL resources and the window.
func (v *Viewer) Close() {
	if v.renderer != nil {
		v.renderer.Close()
		v.renderer = nil
	}
	if v.window != nil {
		v.window.Close()
		v.window = nil
	}
}
