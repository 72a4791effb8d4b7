// Package app owns the renderer's application state: the camera, the key
// latch and the uploaded shell stack. It drives a Renderer through the
// scheduler.Handler callbacks and never touches GL directly.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/shellfog/internal/engine/camera"
	"github.com/Faultbox/shellfog/internal/engine/gpu"
	"github.com/Faultbox/shellfog/internal/engine/input"
	"github.com/Faultbox/shellfog/internal/engine/shell"
	"github.com/Faultbox/shellfog/internal/engine/transform"
	"github.com/Faultbox/shellfog/pkg/math"
)

// maxStep caps the update delta so a stalled frame does not fling the camera.
const maxStep = 100 * time.Millisecond

// Renderer is the GPU side the app draws through.
type Renderer interface {
	CreateMeshBuffers(m shell.Mesh) (gpu.MeshHandle, error)
	CompileProgram(vertexSrc, fragmentSrc string) (gpu.ProgramHandle, error)
	BeginFrame() gpu.Frame
	Draw(f gpu.Frame, m gpu.MeshHandle, p gpu.ProgramHandle, u gpu.Uniforms)
	FinishFrame(f gpu.Frame) error
	SetWindowVisible(visible bool)
	Resize(width, height int)
	ReadPixels() (pixels []byte, width, height int, err error)
}

// Capturer saves a frame read back from the renderer.
type Capturer interface {
	CaptureFromPixels(pixels []byte, width, height int) (string, error)
}

// Config holds everything App needs at startup.
type Config struct {
	Width, Height int

	Resolutions   []shell.Resolution // nearest shell first
	DepthExponent int
	NoiseScale    float32
	BaseColor     [3]float32
	TipColor      [3]float32

	CameraPosition math.Vec3
	Controls       camera.Controls

	// Screenshots receives F12 captures; nil disables them.
	Screenshots Capturer

	// DecayWorkers > 1 fans the per-tick latch decay out over an errgroup.
	DecayWorkers int

	VertexShader   string
	FragmentShader string
}

// shellDraw is one uploaded shell with its draw state fixed at startup.
type shellDraw struct {
	mesh     gpu.MeshHandle
	uniforms gpu.Uniforms
}

// App is the single owner of mutable application state.
type App struct {
	renderer Renderer
	log      *zap.Logger

	camera   *camera.Camera
	latch    *input.Latch
	controls camera.Controls
	workers  int

	screenshots Capturer
	captureNext bool

	program gpu.ProgramHandle
	shells  []shellDraw // far to near, the order they are drawn in

	start      time.Time
	lastUpdate time.Time
}

// New generates the shell stack, uploads it and compiles the shell program.
// Shells with no triangles are skipped.
func New(cfg Config, r Renderer, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		renderer: r,
		log:      log,
		camera: camera.New(
			// The camera transform maps world to view space.
			transform.New(cfg.CameraPosition.Scale(-1), math.QuatIdentity()),
			camera.AspectFromSize(cfg.Width, cfg.Height),
		),
		latch:       input.NewLatch(),
		controls:    cfg.Controls,
		workers:     cfg.DecayWorkers,
		screenshots: cfg.Screenshots,
	}

	program, err := r.CompileProgram(cfg.VertexShader, cfg.FragmentShader)
	if err != nil {
		return nil, fmt.Errorf("shell program: %w", err)
	}
	a.program = program

	meshes := shell.Generate(cfg.Resolutions, cfg.DepthExponent)
	for i := len(meshes) - 1; i >= 0; i-- {
		m := meshes[i]
		if m.Empty() {
			log.Warn("shell has no triangles, skipping",
				zap.Int("shell", m.Index),
				zap.Stringer("resolution", cfg.Resolutions[i]),
			)
			continue
		}
		h, err := r.CreateMeshBuffers(m)
		if err != nil {
			return nil, fmt.Errorf("shell %d: %w", m.Index, err)
		}
		a.shells = append(a.shells, shellDraw{
			mesh:     h,
			uniforms: shellUniforms(m, len(meshes), cfg),
		})
	}

	log.Info("shell stack ready",
		zap.Int("shells", len(meshes)),
		zap.Int("drawn", len(a.shells)),
		zap.Int("depth_exponent", cfg.DepthExponent),
	)
	return a, nil
}

// shellUniforms builds the per-shell values that never change after startup.
func shellUniforms(m shell.Mesh, total int, cfg Config) gpu.Uniforms {
	var progress float32
	if total > 1 {
		progress = float32(m.Index) / float32(total-1)
	}
	return gpu.Uniforms{
		Floats: map[string]float32{
			"centre": m.Depth,
			"color":  progress,
			"scale":  cfg.NoiseScale,
			"time":   0,
		},
		Vec3s: map[string][3]float32{
			"baseColor": cfg.BaseColor,
			"tipColor":  cfg.TipColor,
		},
	}
}

// Camera returns the view camera.
func (a *App) Camera() *camera.Camera {
	return a.camera
}

// Latch returns the key latch.
func (a *App) Latch() *input.Latch {
	return a.latch
}

// ShellCount returns the number of shells drawn each frame.
func (a *App) ShellCount() int {
	return len(a.shells)
}

// BeginTick clears the per-frame change flags.
func (a *App) BeginTick(ctx context.Context) {
	if a.workers > 1 {
		if err := a.latch.DecayParallel(ctx, a.workers); err != nil {
			// Cancelled mid-decay; finish inline so no flag survives the tick.
			a.latch.Decay()
		}
		return
	}
	a.latch.Decay()
}

// HandleEvent applies resize, key and modifier events.
func (a *App) HandleEvent(e input.Event) {
	switch e.Type {
	case input.EventResize:
		if !a.camera.UpdateAspectRatio(camera.AspectFromSize(e.Width, e.Height)) {
			a.log.Debug("ignoring degenerate resize",
				zap.Int("width", e.Width),
				zap.Int("height", e.Height),
			)
			return
		}
		a.renderer.Resize(e.Width, e.Height)
	default:
		a.latch.Apply(e)
	}
}

// Update moves the camera from held keys. It returns true when Escape was
// pressed this tick. F12 queues a capture of the next drawn frame.
func (a *App) Update(now time.Time) bool {
	if a.latch.Pressed(input.KeyEscape) {
		a.log.Info("escape pressed")
		return true
	}
	if a.latch.Pressed(input.KeyF12) && a.screenshots != nil {
		a.captureNext = true
	}

	if a.start.IsZero() {
		a.start = now
	}
	dt := now.Sub(a.lastUpdate)
	if a.lastUpdate.IsZero() {
		dt = 0
	}
	dt = min(dt, maxStep)
	a.lastUpdate = now

	a.camera.Fly(a.controls, a.intent(), float32(dt.Seconds()))
	return false
}

// intent maps held keys onto camera movement.
func (a *App) intent() camera.Intent {
	l := a.latch
	return camera.Intent{
		Move: math.Vec3{
			X: l.Axis(input.KeyA, input.KeyD),
			Y: l.Axis(input.KeyLShift, input.KeySpace),
			Z: l.Axis(input.KeyS, input.KeyW),
		},
		Yaw:   l.Axis(input.KeyLeft, input.KeyRight),
		Pitch: l.Axis(input.KeyDown, input.KeyUp),
	}
}

// Draw renders the shell stack far to near.
func (a *App) Draw(now time.Time) error {
	proj := a.camera.ProjectionMatrix()
	view := a.camera.ViewMatrix()
	var elapsed float32
	if !a.start.IsZero() {
		elapsed = float32(now.Sub(a.start).Seconds())
	}

	f := a.renderer.BeginFrame()
	for i := range a.shells {
		u := &a.shells[i].uniforms
		u.Projection = proj
		u.View = view
		u.Floats["time"] = elapsed
		a.renderer.Draw(f, a.shells[i].mesh, a.program, *u)
	}
	if a.captureNext {
		a.captureNext = false
		a.capture()
	}
	return a.renderer.FinishFrame(f)
}

// capture saves the frame in the back buffer. Failures are logged; the
// frame itself is unaffected.
func (a *App) capture() {
	pixels, w, h, err := a.renderer.ReadPixels()
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	path, err := a.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Reveal shows the window once the first frame is on screen.
func (a *App) Reveal() {
	a.renderer.SetWindowVisible(true)
}
