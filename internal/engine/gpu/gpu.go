// Package gpu defines the handles and per-draw values exchanged with a
// renderer. It has no GL dependency so callers can be tested headless.
package gpu

import (
	"errors"

	"github.com/Faultbox/shellfog/pkg/math"
)

// ErrUnknownHandle is reported when a draw names a mesh or program the
// renderer never created.
var ErrUnknownHandle = errors.New("unknown gpu handle")

// MeshHandle identifies uploaded mesh buffers. The zero value is invalid.
type MeshHandle uint32

// ProgramHandle identifies a linked shader program. The zero value is invalid.
type ProgramHandle uint32

// Frame identifies a frame between BeginFrame and FinishFrame.
type Frame struct {
	Number uint64
}

// Uniforms are the values bound for one draw call.
type Uniforms struct {
	Projection math.Mat4
	View       math.Mat4
	Floats     map[string]float32
	Vec3s      map[string][3]float32
}
