package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cone/engine/mesh"
	"github.com/stretchr/testify/assert"
)

func TestSceneAddRemove(t *testing.T) {
	s := NewScene("test")
	a := mesh.NewMesh(geometry.NewGeometry(nil), nil)
	b := mesh.NewMesh(geometry.NewGeometry(nil), nil)

	s.Add(a)
	s.Add(a)
	s.Add(b)
	s.Add(nil)
	assert.Equal(t, 2, s.Count())
	assert.True(t, s.Contains(a))

	assert.True(t, s.Remove(a))
	assert.False(t, s.Remove(a))
	assert.False(t, s.Contains(a))
	assert.Equal(t, []mesh.Mesh{b}, s.Meshes())

	s.Clear()
	assert.Zero(t, s.Count())
}

func TestSceneOptions(t *testing.T) {
	a := mesh.NewMesh(geometry.NewGeometry(nil), nil)
	s := NewScene("opts", WithBackgroundColor(common.HexColor(0x112233)), WithMeshes(a, a, nil))

	assert.Equal(t, "opts", s.Name())
	assert.Equal(t, common.HexColor(0x112233), s.BackgroundColor())
	assert.Equal(t, 1, s.Count())
}
