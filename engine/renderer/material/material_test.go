package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/stretchr/testify/assert"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()
	assert.Equal(t, "material", m.Name())
	assert.Equal(t, common.Color{1, 1, 1, 1}, m.BaseColor())
	assert.False(t, m.Unlit())
	assert.False(t, m.Wireframe())
}

func TestNewBasicMaterial(t *testing.T) {
	m := NewBasicMaterial(0x00ff00)
	assert.True(t, m.Unlit())
	assert.Equal(t, common.Color{0, 1, 0, 1}, m.BaseColor())
}

func TestMaterialOptions(t *testing.T) {
	m := NewMaterial(WithName("edges"), WithWireframe(true), WithBaseColor(common.HexColor(0xff0000)))
	assert.Equal(t, "edges", m.Name())
	assert.True(t, m.Wireframe())
	assert.Equal(t, float32(1), m.BaseColor().R())
}
