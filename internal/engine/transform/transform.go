// Package transform provides rigid translation + rotation transforms.
package transform

import "github.com/Faultbox/shellfog/pkg/math"

// Transform is a rigid transform. Rotation is kept unit length by every
// constructor and mutator.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Quat
}

// Identity returns a transform at the origin with no rotation.
func Identity() Transform {
	return Transform{Rotation: math.QuatIdentity()}
}

// New creates a transform, normalizing the rotation.
func New(translation math.Vec3, rotation math.Quat) Transform {
	return Transform{
		Translation: translation,
		Rotation:    rotation.Normalize(),
	}
}

// Mat returns translate(Translation) * rotate(Rotation): rotation is applied
// in object space first, then the result is moved into world space.
func (t Transform) Mat() math.Mat4 {
	return math.Translate(t.Translation).Mul(t.Rotation.ToMat4())
}

// Translate moves the transform by a world-space delta.
func (t *Transform) Translate(delta math.Vec3) {
	t.Translation = t.Translation.Add(delta)
}

// TranslateLocal moves the transform by a delta expressed in its own axes.
func (t *Transform) TranslateLocal(delta math.Vec3) {
	t.Translation = t.Translation.Add(t.Rotation.Rotate(delta))
}

// Rotate applies q after the current rotation and renormalizes.
func (t *Transform) Rotate(q math.Quat) {
	t.Rotation = q.Mul(t.Rotation).Normalize()
}

// RotateLocal applies q about the transform's own axes and renormalizes.
func (t *Transform) RotateLocal(q math.Quat) {
	t.Rotation = t.Rotation.Mul(q).Normalize()
}

// SetRotation replaces the rotation, normalizing it.
func (t *Transform) SetRotation(q math.Quat) {
	t.Rotation = q.Normalize()
}
