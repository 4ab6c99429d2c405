package scene

import (
	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/mesh"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithBackgroundColor sets the color frames are cleared to.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBackgroundColor(c common.Color) SceneBuilderOption {
	return func(s *scene) {
		s.background = c
	}
}

// WithMeshes adds initial meshes to the scene.
//
// Parameters:
//   - meshes: the meshes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMeshes(meshes ...mesh.Mesh) SceneBuilderOption {
	return func(s *scene) {
		for _, m := range meshes {
			if m != nil && s.indexOf(m) < 0 {
				s.meshes = append(s.meshes, m)
			}
		}
	}
}
