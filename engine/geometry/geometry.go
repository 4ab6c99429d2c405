// Package geometry converts triangle-vertex records into flat vertex buffers and wraps them as renderable geometry.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrMalformedVertex is returned when a vertex does not carry three finite numeric coordinates.
var ErrMalformedVertex = errors.New("geometry: malformed vertex")

// geometryCount is an atomic counter used to generate default geometry labels.
var geometryCount atomic.Uint64

// TriangleVertex is one vertex of one triangle face in model space.
type TriangleVertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TriangleList is an ordered sequence of vertices where each consecutive triple forms one face.
type TriangleList []TriangleVertex

// VertexBuffer is a flat position buffer laid out as [x0, y0, z0, x1, y1, z1, ...].
type VertexBuffer []float32

// Build flattens a TriangleList into a VertexBuffer.
// Vertex i occupies slots 3i..3i+2. Order is preserved exactly: no deduplication, no reordering
// and no winding correction is applied. An empty list yields an empty, non-nil buffer.
//
// Parameters:
//   - triangles: the ordered vertex records
//
// Returns:
//   - VertexBuffer: the flattened positions
//   - error: ErrMalformedVertex (wrapped with the vertex index) if any coordinate is NaN or infinite
func Build(triangles TriangleList) (VertexBuffer, error) {
	buf := make(VertexBuffer, 0, len(triangles)*3)
	for i, v := range triangles {
		if !finite(v.X) || !finite(v.Y) || !finite(v.Z) {
			return nil, fmt.Errorf("%w: vertex %d (%v, %v, %v)", ErrMalformedVertex, i, v.X, v.Y, v.Z)
		}
		buf = append(buf, float32(v.X), float32(v.Y), float32(v.Z))
	}
	return buf, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

type geometry struct {
	label     string
	positions VertexBuffer
	bounds    r3.Box
}

// Geometry is an immutable renderable position buffer.
type Geometry interface {
	// Label returns the geometry's debug label.
	Label() string

	// Positions returns the flat position buffer. Callers must not modify it.
	//
	// Returns:
	//   - VertexBuffer: the positions laid out as [x0, y0, z0, ...]
	Positions() VertexBuffer

	// VertexCount returns the number of whole vertices in the buffer.
	VertexCount() int

	// TriangleCount returns the number of complete triangles. Trailing vertices that do not
	// form a whole face are not counted.
	TriangleCount() int

	// Bounds returns the axis-aligned bounding box of all vertices.
	// An empty geometry reports a zero box.
	//
	// Returns:
	//   - r3.Box: the bounding box
	Bounds() r3.Box

	// Bytes returns the position buffer as raw bytes for GPU upload.
	// The returned slice shares memory with the geometry.
	//
	// Returns:
	//   - []byte: the byte view, or nil if the geometry is empty
	Bytes() []byte

	// Triangle returns the three vertices of face i.
	//
	// Parameters:
	//   - i: the face index in [0, TriangleCount())
	//
	// Returns:
	//   - [3][3]float32: the face's vertices
	Triangle(i int) [3][3]float32
}

var _ Geometry = &geometry{}

// NewGeometry wraps a VertexBuffer as a Geometry. The buffer is copied so later mutation
// of buf does not affect the returned geometry. A trailing partial vertex (len(buf) not a
// multiple of 3) is dropped.
//
// Parameters:
//   - buf: the flattened positions
//   - options: functional options for geometry configuration
//
// Returns:
//   - Geometry: the new geometry
func NewGeometry(buf VertexBuffer, options ...GeometryBuilderOption) Geometry {
	n := len(buf) - len(buf)%3
	g := &geometry{
		positions: append(make(VertexBuffer, 0, n), buf[:n]...),
	}
	for _, opt := range options {
		opt(g)
	}
	if g.label == "" {
		g.label = fmt.Sprintf("geometry-%d", geometryCount.Add(1))
	}
	g.bounds = computeBounds(g.positions)
	return g
}

// FromTriangles builds and wraps a TriangleList in one step.
//
// Parameters:
//   - triangles: the ordered vertex records
//   - options: functional options for geometry configuration
//
// Returns:
//   - Geometry: the new geometry
//   - error: ErrMalformedVertex if the list could not be built
func FromTriangles(triangles TriangleList, options ...GeometryBuilderOption) (Geometry, error) {
	buf, err := Build(triangles)
	if err != nil {
		return nil, err
	}
	return NewGeometry(buf, options...), nil
}

func (g *geometry) Label() string {
	return g.label
}

func (g *geometry) Positions() VertexBuffer {
	return g.positions
}

func (g *geometry) VertexCount() int {
	return len(g.positions) / 3
}

func (g *geometry) TriangleCount() int {
	return g.VertexCount() / 3
}

func (g *geometry) Bounds() r3.Box {
	return g.bounds
}

func (g *geometry) Bytes() []byte {
	return common.SliceToBytes(g.positions)
}

func (g *geometry) Triangle(i int) [3][3]float32 {
	var t [3][3]float32
	base := i * 9
	for v := 0; v < 3; v++ {
		o := base + v*3
		t[v] = [3]float32{g.positions[o], g.positions[o+1], g.positions[o+2]}
	}
	return t
}

func computeBounds(p VertexBuffer) r3.Box {
	if len(p) < 3 {
		return r3.Box{}
	}
	minV := r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	maxV := r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := 0; i+2 < len(p); i += 3 {
		v := r3.Vec{X: float64(p[i]), Y: float64(p[i+1]), Z: float64(p[i+2])}
		minV = r3.Vec{X: math.Min(minV.X, v.X), Y: math.Min(minV.Y, v.Y), Z: math.Min(minV.Z, v.Z)}
		maxV = r3.Vec{X: math.Max(maxV.X, v.X), Y: math.Max(maxV.Y, v.Y), Z: math.Max(maxV.Z, v.Z)}
	}
	return r3.Box{Min: minV, Max: maxV}
}
