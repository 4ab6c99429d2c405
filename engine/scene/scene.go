// Package scene owns the viewer's 3-D scene: the mesh collection, and the Manager that ties a
// scene, camera and renderer to a host window for the lifetime of one mount.
package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/mesh"
	"github.com/Carmen-Shannon/oxy-cone/engine/renderer"
)

// Scene is the root container of renderable meshes for one viewport.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Add appends a mesh. Adding a mesh already in the scene is a no-op.
	//
	// Parameters:
	//   - m: the mesh to add
	Add(m mesh.Mesh)

	// Remove removes a mesh.
	//
	// Parameters:
	//   - m: the mesh to remove
	//
	// Returns:
	//   - bool: true if the mesh was in the scene
	Remove(m mesh.Mesh) bool

	// Contains reports whether m is in the scene.
	Contains(m mesh.Mesh) bool

	// Meshes returns a copy of the scene's meshes in insertion order.
	Meshes() []mesh.Mesh

	// Count returns the number of meshes in the scene.
	Count() int

	// Clear removes every mesh.
	Clear()

	// BackgroundColor returns the color frames are cleared to.
	BackgroundColor() common.Color

	// SetBackgroundColor sets the color frames are cleared to.
	SetBackgroundColor(c common.Color)
}

type scene struct {
	mu         sync.RWMutex
	name       string
	meshes     []mesh.Mesh
	background common.Color
}

var _ Scene = &scene{}
var _ renderer.Renderable = &scene{}

// NewScene creates an empty scene with a black background.
//
// Parameters:
//   - name: the scene's identifier
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:       name,
		background: common.Color{0, 0, 0, 1},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Add(m mesh.Mesh) {
	if m == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(m) >= 0 {
		return
	}
	s.meshes = append(s.meshes, m)
}

func (s *scene) Remove(m mesh.Mesh) bool {
	if m == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(m)
	if i < 0 {
		return false
	}
	s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
	return true
}

func (s *scene) Contains(m mesh.Mesh) bool {
	if m == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(m) >= 0
}

func (s *scene) Meshes() []mesh.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]mesh.Mesh(nil), s.meshes...)
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meshes = nil
}

func (s *scene) BackgroundColor() common.Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *scene) SetBackgroundColor(c common.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = c
}

// indexOf finds m by ID. Caller must hold the lock.
func (s *scene) indexOf(m mesh.Mesh) int {
	for i, existing := range s.meshes {
		if existing.ID() == m.ID() {
			return i
		}
	}
	return -1
}
