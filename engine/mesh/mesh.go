package mesh

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cone/engine/renderer/material"
)

// meshCount is an atomic counter used to assign unique mesh IDs.
var meshCount atomic.Uint64

type mesh struct {
	mu sync.RWMutex

	id      uint64
	visible bool
	geo     geometry.Geometry
	mat     material.Material

	position [3]float32
	rotation [3]float32
	scale    [3]float32
}

// Mesh pairs a Geometry with a Material and a transform, and is the unit a Scene renders.
// Transform accessors are safe for concurrent use.
type Mesh interface {
	// ID returns the mesh's unique identifier.
	//
	// Returns:
	//   - uint64: the mesh ID
	ID() uint64

	// Geometry returns the mesh's geometry.
	//
	// Returns:
	//   - geometry.Geometry: the geometry
	Geometry() geometry.Geometry

	// Material returns the mesh's material.
	//
	// Returns:
	//   - material.Material: the material
	Material() material.Material

	// Visible returns whether the mesh is drawn.
	Visible() bool

	// SetVisible shows or hides the mesh.
	//
	// Parameters:
	//   - visible: true to draw the mesh
	SetVisible(visible bool)

	// Position returns the mesh's world-space translation.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// SetPosition sets the mesh's world-space translation.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// Rotation returns the mesh's Euler rotation in radians.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles
	Rotation() (rx, ry, rz float32)

	// SetRotation sets the mesh's Euler rotation in radians.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles
	SetRotation(rx, ry, rz float32)

	// Rotate adds the given deltas to the mesh's Euler rotation as a single step.
	//
	// Parameters:
	//   - dx, dy, dz: rotation increments in radians
	Rotate(dx, dy, dz float32)

	// Scale returns the mesh's scale factors.
	//
	// Returns:
	//   - sx, sy, sz: scale components
	Scale() (sx, sy, sz float32)

	// SetScale sets the mesh's scale factors.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// ModelMatrix builds the column-major model matrix from the current transform.
	//
	// Returns:
	//   - [16]float32: the model matrix
	ModelMatrix() [16]float32
}

var _ Mesh = &mesh{}

// NewMesh creates a new Mesh from a geometry and material.
// A nil material is replaced with material.NewMaterial().
//
// Panics if geo is nil.
//
// Parameters:
//   - geo: the geometry to draw
//   - mat: the surface material
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the newly created mesh
func NewMesh(geo geometry.Geometry, mat material.Material, options ...MeshBuilderOption) Mesh {
	if geo == nil {
		panic("mesh: NewMesh requires a geometry")
	}
	if mat == nil {
		mat = material.NewMaterial()
	}
	m := &mesh{
		visible: true,
		geo:     geo,
		mat:     mat,
		scale:   [3]float32{1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	if m.id == 0 {
		m.id = meshCount.Add(1)
	}
	return m
}

func (m *mesh) ID() uint64 {
	return m.id
}

func (m *mesh) Geometry() geometry.Geometry {
	return m.geo
}

func (m *mesh) Material() material.Material {
	return m.mat
}

func (m *mesh) Visible() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visible
}

func (m *mesh) SetVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = visible
}

func (m *mesh) Position() (x, y, z float32) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.position[0], m.position[1], m.position[2]
}

func (m *mesh) SetPosition(x, y, z float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = [3]float32{x, y, z}
}

func (m *mesh) Rotation() (rx, ry, rz float32) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rotation[0], m.rotation[1], m.rotation[2]
}

func (m *mesh) SetRotation(rx, ry, rz float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotation = [3]float32{rx, ry, rz}
}

func (m *mesh) Rotate(dx, dy, dz float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotation[0] += dx
	m.rotation[1] += dy
	m.rotation[2] += dz
}

func (m *mesh) Scale() (sx, sy, sz float32) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scale[0], m.scale[1], m.scale[2]
}

func (m *mesh) SetScale(sx, sy, sz float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scale = [3]float32{sx, sy, sz}
}

func (m *mesh) ModelMatrix() [16]float32 {
	m.mu.RLock()
	pos, rot, scale := m.position, m.rotation, m.scale
	m.mu.RUnlock()

	var out [16]float32
	common.BuildModelMatrix(out[:], pos, rot, scale)
	return out
}
