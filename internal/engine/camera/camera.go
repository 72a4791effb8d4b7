// Package camera provides the perspective camera the shells are viewed through.
package camera

import (
	gomath "math"

	"github.com/Faultbox/shellfog/internal/engine/transform"
	"github.com/Faultbox/shellfog/pkg/math"
)

// Projection constants. The frustum is deliberately thin: shells are placed
// between Near and Near+1, so Far sits just past the outermost shell.
const (
	FOV  = float32(gomath.Pi / 2)
	Near = float32(0.01)
	Far  = float32(1.01)
)

// Camera holds a transform and a cached left-handed perspective projection.
type Camera struct {
	Transform transform.Transform

	aspectRatio   float32
	projection    math.Mat4
	invProjection math.Mat4
}

// New creates a camera with the given initial transform and aspect ratio.
func New(initial transform.Transform, aspectRatio float32) *Camera {
	c := &Camera{
		Transform: transform.New(initial.Translation, initial.Rotation),
	}
	c.setProjection(aspectRatio)
	return c
}

// UpdateAspectRatio rebuilds the projection for a new aspect ratio.
// Non-positive ratios (a minimised window) leave the camera unchanged and
// report false.
func (c *Camera) UpdateAspectRatio(ratio float32) bool {
	if ratio <= 0 || gomath.IsNaN(float64(ratio)) || gomath.IsInf(float64(ratio), 0) {
		return false
	}
	c.setProjection(ratio)
	return true
}

func (c *Camera) setProjection(ratio float32) {
	c.aspectRatio = ratio
	c.projection = math.PerspectiveLH(FOV, ratio, Near, Far)
	c.invProjection = c.projection.Inverse()
}

// AspectRatio returns the ratio the projection was last built for.
func (c *Camera) AspectRatio() float32 {
	return c.aspectRatio
}

// ViewMatrix returns the camera transform's matrix.
func (c *Camera) ViewMatrix() math.Mat4 {
	return c.Transform.Mat()
}

// ProjectionMatrix returns the cached projection matrix.
func (c *Camera) ProjectionMatrix() math.Mat4 {
	return c.projection
}

// InverseProjectionMatrix returns the cached inverse of the projection.
func (c *Camera) InverseProjectionMatrix() math.Mat4 {
	return c.invProjection
}

// AspectFromSize returns width/height, or 0 when either side is empty.
func AspectFromSize(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 0
	}
	return float32(width) / float32(height)
}
