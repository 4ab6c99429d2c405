package geometry

import (
	"errors"
	"fmt"

	"github.com/hschendel/stl"
)

// ErrEmptyGeometry is returned when exporting a geometry with no complete triangles.
var ErrEmptyGeometry = errors.New("geometry: no triangles to export")

// ToSolid converts a geometry into an STL solid with recalculated face normals.
//
// Parameters:
//   - g: the geometry to convert
//
// Returns:
//   - *stl.Solid: the solid, named after the geometry's label
func ToSolid(g Geometry) *stl.Solid {
	solid := &stl.Solid{
		Name:      g.Label(),
		Triangles: make([]stl.Triangle, g.TriangleCount()),
	}
	for i := range solid.Triangles {
		t := g.Triangle(i)
		solid.Triangles[i].Vertices = [3]stl.Vec3{t[0], t[1], t[2]}
	}
	solid.RecalculateNormals()
	return solid
}

// WriteSTL writes the geometry to path as a binary STL file.
//
// Parameters:
//   - path: destination file path
//   - g: the geometry to export
//
// Returns:
//   - error: ErrEmptyGeometry, or an error if the file could not be written
func WriteSTL(path string, g Geometry) error {
	if g == nil || g.TriangleCount() == 0 {
		return ErrEmptyGeometry
	}
	if err := ToSolid(g).WriteFile(path); err != nil {
		return fmt.Errorf("failed to write STL %q: %w", path, err)
	}
	return nil
}

// ReadSTL loads an STL file as a Geometry.
//
// Parameters:
//   - path: source file path
//
// Returns:
//   - Geometry: the loaded geometry, labeled with the solid's name
//   - error: an error if the file could not be read or parsed
func ReadSTL(path string) (Geometry, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL %q: %w", path, err)
	}
	buf := make(VertexBuffer, 0, len(solid.Triangles)*9)
	for _, t := range solid.Triangles {
		for _, v := range t.Vertices {
			buf = append(buf, v[0], v[1], v[2])
		}
	}
	var opts []GeometryBuilderOption
	if solid.Name != "" {
		opts = append(opts, WithLabel(solid.Name))
	}
	return NewGeometry(buf, opts...), nil
}
