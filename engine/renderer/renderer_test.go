package renderer

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/camera"
	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cone/engine/mesh"
	"github.com/Carmen-Shannon/oxy-cone/engine/renderer/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHost struct{ w, h int }

func (h testHost) Width() int  { return h.w }
func (h testHost) Height() int { return h.h }
func (h testHost) Native() any { return nil }

type testScene struct {
	meshes []mesh.Mesh
	bg     common.Color
}

func (s *testScene) Meshes() []mesh.Mesh           { return s.meshes }
func (s *testScene) BackgroundColor() common.Color { return s.bg }

func bigTriangle() mesh.Mesh {
	g := geometry.NewGeometry(geometry.VertexBuffer{-5, -5, 0, 5, -5, 0, 0, 5, 0})
	return mesh.NewMesh(g, material.NewBasicMaterial(0x00ff00))
}

func newSoftware(t *testing.T, w, h int, opts ...RendererBuilderOption) Renderer {
	t.Helper()
	r, err := NewRenderer(BackendTypeSoftware, testHost{w, h}, opts...)
	require.NoError(t, err)
	return r
}

func TestNewRendererSizesToHost(t *testing.T) {
	r := newSoftware(t, 64, 48)
	w, h := r.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	sw, sh := r.Surface().Size()
	assert.Equal(t, w, sw)
	assert.Equal(t, h, sh)
	assert.NotZero(t, r.Surface().ID())
	assert.Equal(t, BackendTypeSoftware, r.BackendType())
}

func TestSurfacesAreUnique(t *testing.T) {
	a := newSoftware(t, 8, 8)
	b := newSoftware(t, 8, 8)
	assert.NotEqual(t, a.Surface().ID(), b.Surface().ID())
}

func TestNewRendererUnknownBackend(t *testing.T) {
	_, err := NewRenderer(RendererBackendType(99), testHost{8, 8})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestRenderDrawsMesh(t *testing.T) {
	for _, ss := range []int{1, 2} {
		r := newSoftware(t, 64, 64, WithSupersample(ss))
		cam := camera.NewCamera(camera.WithFraming(20))
		s := &testScene{meshes: []mesh.Mesh{bigTriangle()}, bg: common.Color{0, 0, 0, 1}}

		_, err := r.Snapshot()
		assert.ErrorIs(t, err, ErrNoFrame)

		require.NoError(t, r.Render(s, cam))
		assert.Equal(t, uint64(1), r.Frames())

		img, err := r.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, 64, img.Bounds().Dx())

		center := color.NRGBAModel.Convert(img.At(32, 32)).(color.NRGBA)
		assert.Greater(t, center.G, uint8(200), "supersample %d", ss)
		assert.Less(t, center.R, uint8(50), "supersample %d", ss)

		corner := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA)
		assert.Less(t, corner.G, uint8(50), "supersample %d", ss)
	}
}

func TestRenderSkipsHiddenMeshes(t *testing.T) {
	r := newSoftware(t, 32, 32)
	m := bigTriangle()
	m.SetVisible(false)

	require.NoError(t, r.Render(&testScene{meshes: []mesh.Mesh{m}, bg: common.Color{0, 0, 0, 1}}, camera.NewCamera(camera.WithFraming(20))))
	img, err := r.Snapshot()
	require.NoError(t, err)

	center := color.NRGBAModel.Convert(img.At(16, 16)).(color.NRGBA)
	assert.Less(t, center.G, uint8(50))
}

func TestReleasedRendererRefusesWork(t *testing.T) {
	r := newSoftware(t, 16, 16)
	r.Release()
	r.Release()

	assert.True(t, r.Released())
	assert.ErrorIs(t, r.Render(&testScene{}, camera.NewCamera()), ErrReleased)
	_, err := r.Snapshot()
	assert.ErrorIs(t, err, ErrReleased)

	r.Resize(100, 100)
	w, _ := r.Size()
	assert.Equal(t, 16, w)
}

func TestResizeClamps(t *testing.T) {
	r := newSoftware(t, 16, 16)
	r.Resize(0, -3)
	w, h := r.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestSavePNG(t *testing.T) {
	r := newSoftware(t, 16, 16)
	require.NoError(t, r.Render(&testScene{meshes: []mesh.Mesh{bigTriangle()}}, camera.NewCamera(camera.WithFraming(20))))
	img, err := r.Snapshot()
	require.NoError(t, err)
	assert.NoError(t, SavePNG(filepath.Join(t.TempDir(), "frame.png"), img))
}

func TestParseBackendType(t *testing.T) {
	bt, err := ParseBackendType("WGPU")
	require.NoError(t, err)
	assert.Equal(t, BackendTypeWGPU, bt)

	bt, err = ParseBackendType("software")
	require.NoError(t, err)
	assert.Equal(t, BackendTypeSoftware, bt)

	_, err = ParseBackendType("vulkan")
	assert.Error(t, err)
}
