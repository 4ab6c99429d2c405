package material

import (
	"github.com/Carmen-Shannon/oxy-cone/common"
)

// material is the implementation of the Material interface.
type material struct {
	name      string
	baseColor common.Color
	unlit     bool
	wireframe bool
}

// Material defines the surface properties a renderer needs to draw a mesh.
// Materials are immutable once constructed.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the RGBA color of the material.
	//
	// Returns:
	//   - common.Color: the base color
	BaseColor() common.Color

	// Unlit reports whether the material ignores scene lighting and renders its base color as-is.
	//
	// Returns:
	//   - bool: true if unlit
	Unlit() bool

	// Wireframe reports whether the renderer should draw triangle edges instead of filled faces.
	// Backends that cannot draw lines fall back to filled faces.
	//
	// Returns:
	//   - bool: true if wireframe
	Wireframe() bool
}

var _ Material = &material{}

// NewMaterial creates a new Material with the provided options.
// Defaults to an opaque white lit material named "material".
//
// Parameters:
//   - options: functional options for material configuration
//
// Returns:
//   - Material: the new material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		name:      "material",
		baseColor: common.Color{1, 1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// NewBasicMaterial creates an unlit single-color material from a packed 0xRRGGBB value.
//
// Parameters:
//   - hex: the color, e.g. 0x00ff00
//
// Returns:
//   - Material: the new unlit material
func NewBasicMaterial(hex uint32) Material {
	return NewMaterial(
		WithName("basic"),
		WithBaseColor(common.HexColor(hex)),
		WithUnlit(true),
	)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() common.Color {
	return m.baseColor
}

func (m *material) Unlit() bool {
	return m.unlit
}

func (m *material) Wireframe() bool {
	return m.wireframe
}
