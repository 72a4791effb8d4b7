package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
	if q.ToMat4() != Identity() {
		t.Error("Identity quat should produce identity matrix")
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()
	if math.Abs(float64(n.Length()-1)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", n.Length())
	}

	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", got)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around an unnormalized Y axis
	q := QuatFromAxisAngle(Vec3{Y: 3}, float32(math.Pi/2))

	expectedW := float32(math.Cos(math.Pi / 4))
	expectedY := float32(math.Sin(math.Pi / 4))
	if abs(q.W-expectedW) > 0.001 || abs(q.Y-expectedY) > 0.001 {
		t.Errorf("QuatFromAxisAngle: got (W=%v, Y=%v), want (%v, %v)", q.W, q.Y, expectedW, expectedY)
	}
}

func TestQuatRotate(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float32
		v     Vec3
	}{
		{"yaw quarter turn", Up, math.Pi / 2, Vec3{1, 0, 0}},
		{"pitch", Right, 0.3, Vec3{0, 1, 1}},
		{"oblique", Vec3{1, 2, 3}, -1.1, Vec3{4, -5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatFromAxisAngle(tt.axis, tt.angle)
			got := q.Rotate(tt.v)

			a := tt.axis.Normalize()
			ref := mgl32.QuatRotate(tt.angle, mgl32.Vec3{a.X, a.Y, a.Z}).Rotate(mgl32.Vec3{tt.v.X, tt.v.Y, tt.v.Z})
			want := Vec3{ref[0], ref[1], ref[2]}
			if got.Sub(want).Length() > 1e-4 {
				t.Errorf("Rotate: got %v, want %v", got, want)
			}

			// The matrix form must agree with the direct rotation.
			viaMat := q.ToMat4().TransformPoint(tt.v)
			if viaMat.Sub(got).Length() > 1e-4 {
				t.Errorf("ToMat4 rotation %v disagrees with Rotate %v", viaMat, got)
			}
		})
	}
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(Up, 0.4)
	b := QuatFromAxisAngle(Up, 0.6)
	got := a.Mul(b)
	want := QuatFromAxisAngle(Up, 1.0)
	if abs(got.Dot(want)-1) > 1e-5 {
		t.Errorf("Mul: got %v, want %v", got, want)
	}

	v := Vec3{1, 2, 3}
	if d := got.Conjugate().Rotate(got.Rotate(v)).Sub(v).Length(); d > 1e-4 {
		t.Errorf("conjugate should undo rotation, off by %v", d)
	}
}

func TestVec3Cross(t *testing.T) {
	got := Right.Cross(Up)
	if got != Forward {
		t.Errorf("Vec3.Cross() = %v, want %v", got, Forward)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 4, 0}.Normalize()
	if l := n.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should stay zero")
	}
}
