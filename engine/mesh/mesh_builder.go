package mesh

// MeshBuilderOption is a functional option for configuring a Mesh during construction.
type MeshBuilderOption func(*mesh)

// WithID sets the ID of the Mesh. A zero ID is replaced with a generated one.
//
// Parameters:
//   - id: unique identifier for the Mesh
//
// Returns:
//   - MeshBuilderOption: functional option to set the ID
func WithID(id uint64) MeshBuilderOption {
	return func(m *mesh) {
		m.id = id
	}
}

// WithVisible sets whether the Mesh is drawn.
//
// Parameters:
//   - visible: true to render the mesh, false to skip it
//
// Returns:
//   - MeshBuilderOption: functional option to set visibility
func WithVisible(visible bool) MeshBuilderOption {
	return func(m *mesh) {
		m.visible = visible
	}
}

// WithPosition sets the initial world-space position of the Mesh.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - MeshBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) MeshBuilderOption {
	return func(m *mesh) {
		m.position = [3]float32{x, y, z}
	}
}

// WithRotation sets the initial Euler rotation of the Mesh in radians.
//
// Parameters:
//   - rx, ry, rz: rotation angles
//
// Returns:
//   - MeshBuilderOption: functional option to set the rotation
func WithRotation(rx, ry, rz float32) MeshBuilderOption {
	return func(m *mesh) {
		m.rotation = [3]float32{rx, ry, rz}
	}
}

// WithScale sets the initial scale of the Mesh.
//
// Parameters:
//   - sx, sy, sz: scale factors
//
// Returns:
//   - MeshBuilderOption: functional option to set the scale
func WithScale(sx, sy, sz float32) MeshBuilderOption {
	return func(m *mesh) {
		m.scale = [3]float32{sx, sy, sz}
	}
}
