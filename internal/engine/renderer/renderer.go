// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/shellfog/internal/engine/gpu"
	"github.com/Faultbox/shellfog/internal/engine/shader"
	"github.com/Faultbox/shellfog/internal/engine/shell"
	"github.com/Faultbox/shellfog/internal/logger"
)

// ErrEmptyMesh is returned when uploading a mesh with nothing to draw.
var ErrEmptyMesh = errors.New("empty mesh")

// Surface is the window the renderer presents to.
type Surface interface {
	SwapBuffers()
	SetVisible(visible bool)
}

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [4]float32
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config   Config
	surface  Surface
	log      *zap.Logger
	frame    uint64
	meshes   []gpuMesh
	programs []*shader.Program
	drawErr  error // first bad draw of the current frame
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, surface Surface) (*Renderer, error) {
	r := &Renderer{
		config:  cfg,
		surface: surface,
		log:     logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	r.log.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	for _, c := range disabledCaps {
		gl.Disable(c)
	}
	for _, c := range enabledCaps {
		gl.Enable(c)
	}
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	// Shell triangles are wound clockwise once projected.
	gl.FrontFace(gl.CW)
	gl.CullFace(gl.BACK)

	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// Shells are translucent layers drawn far to near, so depth writes would
// hide the layers behind. The nearest and farthest shells sit exactly on the
// near and far planes; depth clamping keeps rounding from clipping them.
var (
	enabledCaps  = []uint32{gl.BLEND, gl.CULL_FACE, gl.DEPTH_CLAMP}
	disabledCaps = []uint32{gl.DEPTH_TEST}
)

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer",
		zap.Int("meshes", len(r.meshes)),
		zap.Uint64("frames", r.frame),
	)
	for i := range r.meshes {
		m := &r.meshes[i]
		gl.DeleteVertexArrays(1, &m.vao)
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
	}
	for _, p := range r.programs {
		p.Delete()
	}
	r.meshes = nil
	r.programs = nil
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("viewport resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// CompileProgram compiles and links a shader program.
func (r *Renderer) CompileProgram(vertexSrc, fragmentSrc string) (gpu.ProgramHandle, error) {
	p, err := shader.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, fmt.Errorf("compile program: %w", err)
	}
	r.programs = append(r.programs, p)
	r.log.Debug("shader program created", zap.Uint32("program", p.ID))
	return gpu.ProgramHandle(len(r.programs)), nil
}

// CreateMeshBuffers uploads a shell mesh.
func (r *Renderer) CreateMeshBuffers(m shell.Mesh) (gpu.MeshHandle, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if m.Empty() {
		return 0, fmt.Errorf("shell %d: %w", m.Index, ErrEmptyMesh)
	}

	var g gpuMesh

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	vertexSize := int(unsafe.Sizeof(shell.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*vertexSize, unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	g.indexCount = int32(len(m.Indices))
	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return 0, fmt.Errorf("shell %d: buffer upload: GL error 0x%x", m.Index, code)
	}

	r.meshes = append(r.meshes, g)
	r.log.Debug("shell uploaded",
		zap.Int("shell", m.Index),
		zap.Float32("depth", m.Depth),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", m.TriangleCount()),
	)
	return gpu.MeshHandle(len(r.meshes)), nil
}

// BeginFrame clears the framebuffer and starts a new frame.
func (r *Renderer) BeginFrame() gpu.Frame {
	r.frame++
	r.drawErr = nil
	gl.Clear(gl.COLOR_BUFFER_BIT)
	return gpu.Frame{Number: r.frame}
}

// Draw draws one mesh with the given program and uniforms. Bad handles are
// reported by FinishFrame.
func (r *Renderer) Draw(_ gpu.Frame, mh gpu.MeshHandle, ph gpu.ProgramHandle, u gpu.Uniforms) {
	if mh == 0 || int(mh) > len(r.meshes) || ph == 0 || int(ph) > len(r.programs) {
		if r.drawErr == nil {
			r.drawErr = fmt.Errorf("mesh %d, program %d: %w", mh, ph, gpu.ErrUnknownHandle)
		}
		return
	}
	m := &r.meshes[mh-1]
	p := r.programs[ph-1]

	p.Use()
	gl.UniformMatrix4fv(p.Uniform("projection"), 1, false, u.Projection.Ptr())
	gl.UniformMatrix4fv(p.Uniform("view"), 1, false, u.View.Ptr())
	for name, v := range u.Floats {
		gl.Uniform1f(p.Uniform(name), v)
	}
	for name, v := range u.Vec3s {
		gl.Uniform3f(p.Uniform(name), v[0], v[1], v[2])
	}

	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// FinishFrame reports any error raised during the frame, or presents it.
func (r *Renderer) FinishFrame(f gpu.Frame) error {
	if r.drawErr != nil {
		return fmt.Errorf("frame %d: %w", f.Number, r.drawErr)
	}
	if code := gl.GetError(); code != gl.NO_ERROR {
		// Drain the rest so the next frame starts clean.
		for gl.GetError() != gl.NO_ERROR {
		}
		return fmt.Errorf("frame %d: GL error 0x%x", f.Number, code)
	}
	r.surface.SwapBuffers()
	return nil
}

// SetWindowVisible shows or hides the output window.
func (r *Renderer) SetWindowVisible(visible bool) {
	r.surface.SetVisible(visible)
}

// ReadPixels reads the back buffer as RGBA, bottom row first. Call it after
// the frame's draws and before FinishFrame.
func (r *Renderer) ReadPixels() ([]byte, int, int, error) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("read pixels: empty viewport %dx%d", w, h)
	}

	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadBuffer(gl.BACK)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return nil, 0, 0, fmt.Errorf("read pixels: GL error 0x%x", code)
	}
	return pixels, w, h, nil
}
