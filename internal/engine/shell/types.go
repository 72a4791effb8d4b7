// Package shell generates the stacked grid meshes used for shell texturing.
package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrIndexOutOfRange is returned by Validate when an index has no vertex.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrIndexCount is returned by Validate when indices do not form triangles.
	ErrIndexCount = errors.New("index count is not a multiple of 3")
	// ErrBadResolution is returned by ParseResolution for malformed input.
	ErrBadResolution = errors.New("bad resolution")
)

// Vertex is a shell vertex (position only).
type Vertex struct {
	Position [3]float32
}

// Primitive is the topology a mesh's indices describe.
type Primitive int

// Triangles is the only topology the generator emits.
const Triangles Primitive = iota

// Mesh holds one shell's geometry ready for GPU upload.
type Mesh struct {
	Vertices  []Vertex
	Indices   []uint32 // consecutive triples, one winding throughout
	Primitive Primitive

	Index int     // position in the shell stack
	Depth float32 // z of every vertex
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Empty reports whether the mesh has nothing to draw.
func (m *Mesh) Empty() bool {
	return len(m.Indices) == 0
}

// Validate checks the index buffer against the vertex buffer.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("shell %d: %w (%d)", m.Index, ErrIndexCount, len(m.Indices))
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("shell %d: %w: indices[%d]=%d, %d vertices", m.Index, ErrIndexOutOfRange, i, idx, n)
		}
	}
	return nil
}

// MaxAxis is the largest resolution accepted along either axis. A
// MaxAxis x MaxAxis lattice keeps every vertex index inside uint32.
const MaxAxis = 4096

// Resolution is the number of grid cells along X and Y.
type Resolution struct {
	X, Y int
}

// String formats the resolution as "XxY".
func (r Resolution) String() string {
	return strconv.Itoa(r.X) + "x" + strconv.Itoa(r.Y)
}

// Cells returns the number of quads the resolution produces.
func (r Resolution) Cells() int {
	if r.X <= 0 || r.Y <= 0 {
		return 0
	}
	return r.X * r.Y
}

// ParseResolution parses "XxY" (or a single "N" for a square grid).
func ParseResolution(s string) (Resolution, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	xs, ys, found := strings.Cut(s, "x")
	if !found {
		ys = xs
	}

	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Resolution{}, fmt.Errorf("%w %q: %v", ErrBadResolution, s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Resolution{}, fmt.Errorf("%w %q: %v", ErrBadResolution, s, err)
	}
	if x < 0 || y < 0 {
		return Resolution{}, fmt.Errorf("%w %q: negative size", ErrBadResolution, s)
	}
	if x > MaxAxis || y > MaxAxis {
		return Resolution{}, fmt.Errorf("%w %q: axis above %d", ErrBadResolution, s, MaxAxis)
	}
	return Resolution{X: x, Y: y}, nil
}

// Spec describes one shell during generation.
type Spec struct {
	Resolution Resolution
	Index      int
	Total      int
}
