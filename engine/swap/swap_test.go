package swap

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cone/engine/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInstaller struct {
	installed []mesh.Mesh
	err       error
}

func (r *recordingInstaller) Install(m mesh.Mesh) error {
	if r.err != nil {
		return r.err
	}
	r.installed = append(r.installed, m)
	return nil
}

func (r *recordingInstaller) last() mesh.Mesh {
	if len(r.installed) == 0 {
		return nil
	}
	return r.installed[len(r.installed)-1]
}

func geo(label string) geometry.Geometry {
	return geometry.NewGeometry(geometry.VertexBuffer{0, 0, 0, 1, 0, 0, 0, 1, 0}, geometry.WithLabel(label))
}

func TestSetGeometryBuildsUnlitMesh(t *testing.T) {
	inst := &recordingInstaller{}
	c := NewController(inst)

	g := geo("a")
	require.NoError(t, c.SetGeometry(g))

	require.Len(t, inst.installed, 1)
	m := inst.last()
	assert.Same(t, g, m.Geometry())
	assert.True(t, m.Material().Unlit())
	assert.Equal(t, common.HexColor(DefaultColor), m.Material().BaseColor())
	assert.Same(t, g, c.Current())
	assert.Same(t, m, c.Mesh())
}

func TestSetGeometryNilEmptiesScene(t *testing.T) {
	inst := &recordingInstaller{}
	c := NewController(inst, WithColor(0xff0000))

	require.NoError(t, c.SetGeometry(geo("a")))
	assert.Equal(t, common.HexColor(0xff0000), inst.last().Material().BaseColor())

	require.NoError(t, c.SetGeometry(nil))
	assert.Nil(t, inst.last())
	assert.Nil(t, c.Current())
	assert.Nil(t, c.Mesh())
}

func TestInstallFailureKeepsCurrent(t *testing.T) {
	inst := &recordingInstaller{}
	c := NewController(inst)

	a := geo("a")
	require.NoError(t, c.SetGeometry(a))

	inst.err = errors.New("torn down")
	assert.Error(t, c.SetGeometry(geo("b")))
	assert.Same(t, a, c.Current())
}

func TestLastResolvedWins(t *testing.T) {
	inst := &recordingInstaller{}
	c := NewController(inst)
	assert.Equal(t, LastResolvedWins, c.Sequencing())

	first, second := c.NextSequence(), c.NextSequence()
	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)

	// The second request resolves first.
	ok, err := c.Accept(second, geo("second"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.Accept(first, geo("first"))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "first", c.Current().Label())
}

func TestLastSubmittedWins(t *testing.T) {
	inst := &recordingInstaller{}
	c := NewController(inst, WithSequencing(LastSubmittedWins))

	first, second := c.NextSequence(), c.NextSequence()

	ok, err := c.Accept(second, geo("second"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.Accept(first, geo("first"))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, "second", c.Current().Label())
	assert.Len(t, inst.installed, 1)
	assert.Equal(t, "last-submitted-wins", c.Sequencing().String())
}

func TestResetForgetsCurrentWithoutInstalling(t *testing.T) {
	inst := &recordingInstaller{}
	c := NewController(inst, WithSequencing(LastSubmittedWins))

	first, second := c.NextSequence(), c.NextSequence()
	ok, err := c.Accept(second, geo("second"))
	require.NoError(t, err)
	require.True(t, ok)

	c.Reset()
	assert.Nil(t, c.Current())
	assert.Nil(t, c.Mesh())
	assert.Len(t, inst.installed, 1)

	// The accepted sequence is forgotten too, so the next scene takes any result.
	ok, err = c.Accept(first, geo("first"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", c.Current().Label())

	assert.Equal(t, second+1, c.NextSequence())
}
