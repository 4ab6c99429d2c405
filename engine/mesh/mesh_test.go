package mesh

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cone/engine/renderer/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() geometry.Geometry {
	return geometry.NewGeometry(geometry.VertexBuffer{0, 0, 0, 1, 0, 0, 0, 1, 0})
}

func TestNewMeshDefaults(t *testing.T) {
	m := NewMesh(triangle(), nil)
	assert.NotZero(t, m.ID())
	assert.True(t, m.Visible())
	assert.NotNil(t, m.Material())

	sx, sy, sz := m.Scale()
	assert.Equal(t, [3]float32{1, 1, 1}, [3]float32{sx, sy, sz})

	var id [16]float32
	common.Identity(id[:])
	assert.Equal(t, id, m.ModelMatrix())
}

func TestNewMeshUniqueIDs(t *testing.T) {
	a := NewMesh(triangle(), nil)
	b := NewMesh(triangle(), nil)
	assert.NotEqual(t, a.ID(), b.ID())

	c := NewMesh(triangle(), nil, WithID(42))
	assert.Equal(t, uint64(42), c.ID())
}

func TestNewMeshPanicsWithoutGeometry(t *testing.T) {
	assert.Panics(t, func() { NewMesh(nil, material.NewMaterial()) })
}

func TestRotateAccumulates(t *testing.T) {
	m := NewMesh(triangle(), nil, WithRotation(0.1, 0, 0))
	for i := 0; i < 10; i++ {
		m.Rotate(0.005, 0.005, 0)
	}
	rx, ry, rz := m.Rotation()
	assert.InDelta(t, 0.15, rx, 1e-6)
	assert.InDelta(t, 0.05, ry, 1e-6)
	assert.Zero(t, rz)
}

func TestRotateConcurrent(t *testing.T) {
	m := NewMesh(triangle(), nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Rotate(0, 1, 0)
				_ = m.ModelMatrix()
			}
		}()
	}
	wg.Wait()
	_, ry, _ := m.Rotation()
	assert.Equal(t, float32(800), ry)
}

func TestModelMatrixTranslation(t *testing.T) {
	m := NewMesh(triangle(), nil, WithPosition(1, 2, 3), WithScale(2, 2, 2))
	mm := m.ModelMatrix()
	p := common.MulPoint(mm[:], 1, 0, 0)
	require.InDeltaSlice(t, []float32{3, 2, 3, 1}, p[:], 1e-6)
}
