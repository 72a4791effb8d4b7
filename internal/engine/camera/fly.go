package camera

import (
	"github.com/Faultbox/shellfog/pkg/math"
)

// Intent is the movement requested for one update, in camera-local axes.
// Each component is expected in [-1, 1].
type Intent struct {
	Move  math.Vec3 // X right, Y up, Z forward
	Yaw   float32   // positive turns right
	Pitch float32   // positive tilts up
}

// IsZero reports whether the intent requests no movement.
func (i Intent) IsZero() bool {
	return i.Move == (math.Vec3{}) && i.Yaw == 0 && i.Pitch == 0
}

// Controls holds fly-camera speeds.
type Controls struct {
	MoveSpeed float32 // units per second
	TurnSpeed float32 // radians per second
}

// DefaultControls returns speeds tuned for the unit-depth shell stack.
func DefaultControls() Controls {
	return Controls{
		MoveSpeed: 0.25,
		TurnSpeed: 1.2,
	}
}

// Fly applies an intent over dt seconds. Yaw turns about world up so the
// horizon stays level; pitch turns about the camera's own right axis.
//
// Transform is the view transform (world to view), so the intent is applied
// to the camera pose it inverts and the result is written back.
func (c *Camera) Fly(ctl Controls, in Intent, dt float32) {
	if in.IsZero() || dt <= 0 {
		return
	}

	orient := c.Transform.Rotation.Conjugate()
	pos := orient.Rotate(c.Transform.Translation).Scale(-1)

	if in.Yaw != 0 {
		orient = math.QuatFromAxisAngle(math.Up, in.Yaw*ctl.TurnSpeed*dt).Mul(orient).Normalize()
	}
	if in.Pitch != 0 {
		// Left-handed: a negative turn about +X tilts +Z upwards.
		orient = orient.Mul(math.QuatFromAxisAngle(math.Right, -in.Pitch*ctl.TurnSpeed*dt)).Normalize()
	}
	if in.Move != (math.Vec3{}) {
		pos = pos.Add(orient.Rotate(in.Move.Normalize().Scale(ctl.MoveSpeed * dt)))
	}

	view := orient.Conjugate()
	c.Transform.SetRotation(view)
	c.Transform.Translation = view.Rotate(pos).Scale(-1)
}

// Position returns the camera's world-space position.
func (c *Camera) Position() math.Vec3 {
	return c.Transform.Rotation.Conjugate().Rotate(c.Transform.Translation).Scale(-1)
}

// Forward returns the world-space direction the camera looks along.
func (c *Camera) Forward() math.Vec3 {
	return c.Transform.Rotation.Conjugate().Rotate(math.Forward)
}
