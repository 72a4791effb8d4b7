package shell

import (
	gomath "math"

	"github.com/Faultbox/shellfog/internal/engine/camera"
)

// Generate builds one mesh per resolution, in order. Shell i of N sits at
// Depth(i, N, depthExponent). Zero or negative resolutions give an empty
// (but valid) mesh.
func Generate(resolutions []Resolution, depthExponent int) []Mesh {
	meshes := make([]Mesh, len(resolutions))
	for i, res := range resolutions {
		meshes[i] = GenerateShell(Spec{
			Resolution: res,
			Index:      i,
			Total:      len(resolutions),
		}, depthExponent)
	}
	return meshes
}

// Depth returns the z of shell i out of n: near + (i/(n-1))^exponent.
// A single shell sits at the near plane. Exponents above 1 pack shells
// towards the camera.
func Depth(i, n, exponent int) float32 {
	if n <= 1 {
		return camera.Near
	}
	p := float64(i) / float64(n-1)
	if p == 0 && exponent < 0 {
		// 0^-e is infinite; keep the first shell on the near plane.
		return camera.Near
	}
	return camera.Near + float32(gomath.Pow(p, float64(exponent)))
}

// Depths returns Depth for every shell of an n-shell stack.
func Depths(n, exponent int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = Depth(i, n, exponent)
	}
	return out
}

// GenerateShell builds a single shell: an (rx+1)x(ry+1) lattice over
// [-1,1]x[-1,1] at the shell's depth, two triangles per cell. Axes are
// clamped to [0, MaxAxis].
func GenerateShell(spec Spec, depthExponent int) Mesh {
	rx := min(max(spec.Resolution.X, 0), MaxAxis)
	ry := min(max(spec.Resolution.Y, 0), MaxAxis)
	z := Depth(spec.Index, spec.Total, depthExponent)
	stride := rx + 1

	vertices := make([]Vertex, 0, stride*(ry+1))
	for row := 0; row <= ry; row++ {
		y := latticeCoord(row, ry)
		for col := 0; col <= rx; col++ {
			vertices = append(vertices, Vertex{Position: [3]float32{latticeCoord(col, rx), y, z}})
		}
	}

	indices := make([]uint32, 0, 6*rx*ry)
	for i := range vertices {
		col, row := i%stride, i/stride
		if row == ry {
			// Cells are visited in flat-index order; nothing valid past here.
			break
		}
		if col == rx {
			continue
		}
		a := uint32(i)
		s := uint32(stride)
		indices = append(indices,
			a+s+1, a, a+s,
			a, a+s+1, a+1,
		)
	}

	return Mesh{
		Vertices:  vertices,
		Indices:   indices,
		Primitive: Triangles,
		Index:     spec.Index,
		Depth:     z,
	}
}

// latticeCoord maps lattice position k of n cells onto [-1, 1].
// A zero-cell axis collapses onto -1.
func latticeCoord(k, n int) float32 {
	if n == 0 {
		return -1
	}
	return 2*float32(k)/float32(n) - 1
}
