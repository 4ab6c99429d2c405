package material

import (
	"github.com/Carmen-Shannon/oxy-cone/common"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the RGBA color of the material.
//
// Parameters:
//   - color: the base color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithUnlit is an option builder that marks the material as ignoring scene lighting.
//
// Parameters:
//   - unlit: true to render the base color without shading
//
// Returns:
//   - MaterialBuilderOption: a function that applies the unlit option to a material
func WithUnlit(unlit bool) MaterialBuilderOption {
	return func(m *material) {
		m.unlit = unlit
	}
}

// WithWireframe is an option builder that requests edge-only rendering.
//
// Parameters:
//   - wireframe: true to draw triangle edges
//
// Returns:
//   - MaterialBuilderOption: a function that applies the wireframe option to a material
func WithWireframe(wireframe bool) MaterialBuilderOption {
	return func(m *material) {
		m.wireframe = wireframe
	}
}
