package geometry

// GeometryBuilderOption is a functional option for configuring a Geometry.
type GeometryBuilderOption func(*geometry)

// WithLabel sets the geometry's debug label, used for GPU resource names and STL solid names.
//
// Parameters:
//   - label: the label text
//
// Returns:
//   - GeometryBuilderOption: option function to apply
func WithLabel(label string) GeometryBuilderOption {
	return func(g *geometry) {
		g.label = label
	}
}
