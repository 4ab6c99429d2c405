package renderer

import (
	"image"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
)

// softwareRendererBackend rasterizes frames on the CPU with fauxgl.
type softwareRendererBackend struct {
	logger      *slog.Logger
	supersample int

	width   int
	height  int
	context *fauxgl.Context
	last    image.Image

	// meshes caches the rasterizer mesh built for each geometry drawn in the previous frame.
	meshes map[geometry.Geometry]*fauxgl.Mesh
}

var _ RendererBackend = &softwareRendererBackend{}

func newSoftwareRendererBackend(_ Host, cfg Config) (RendererBackend, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &softwareRendererBackend{
		logger:      logger,
		supersample: max(cfg.Supersample, 1),
		meshes:      make(map[geometry.Geometry]*fauxgl.Mesh),
	}, nil
}

func (b *softwareRendererBackend) ConfigureSurface(width, height int) error {
	if width == b.width && height == b.height && b.context != nil {
		return nil
	}
	b.width, b.height = width, height
	b.context = fauxgl.NewContext(width*b.supersample, height*b.supersample)
	b.context.Cull = fauxgl.CullNone
	b.logger.Debug("software surface configured", "width", width, "height", height, "supersample", b.supersample)
	return nil
}

func (b *softwareRendererBackend) DrawFrame(frame *Frame) error {
	ctx := b.context
	ctx.ClearColorBufferWith(toFauxColor(frame.Clear))
	ctx.ClearDepthBuffer()

	seen := make(map[geometry.Geometry]bool, len(frame.Items))
	if cam := frame.Camera; cam.FovDegrees > 0 {
		eye := fauxgl.V(float64(cam.Eye[0]), float64(cam.Eye[1]), float64(cam.Eye[2]))
		center := fauxgl.V(float64(cam.Target[0]), float64(cam.Target[1]), float64(cam.Target[2]))
		up := fauxgl.V(float64(cam.Up[0]), float64(cam.Up[1]), float64(cam.Up[2]))
		viewProjection := fauxgl.LookAt(eye, center, up).
			Perspective(float64(cam.FovDegrees), float64(cam.Aspect), float64(cam.Near), float64(cam.Far))

		for _, item := range frame.Items {
			if item.Geometry == nil {
				continue
			}
			seen[item.Geometry] = true
			m := b.mesh(item.Geometry)

			ctx.Shader = fauxgl.NewSolidColorShader(viewProjection.Mul(toFauxMatrix(item.Model)), toFauxColor(item.Color))
			ctx.Wireframe = item.Wireframe
			ctx.DrawMesh(m)
		}
	}

	// Drop cached meshes for geometry that is no longer drawn.
	for g := range b.meshes {
		if !seen[g] {
			delete(b.meshes, g)
		}
	}

	img := ctx.Image()
	if b.supersample > 1 {
		img = resize.Resize(uint(b.width), uint(b.height), img, resize.Bilinear)
	}
	b.last = img
	return nil
}

func (b *softwareRendererBackend) Snapshot() (image.Image, error) {
	if b.last == nil {
		return nil, ErrNoFrame
	}
	return b.last, nil
}

func (b *softwareRendererBackend) Release() {
	b.context = nil
	b.last = nil
	b.meshes = nil
}

// mesh returns the cached rasterizer mesh for g, building it on first use.
func (b *softwareRendererBackend) mesh(g geometry.Geometry) *fauxgl.Mesh {
	if m, ok := b.meshes[g]; ok {
		return m
	}
	triangles := make([]*fauxgl.Triangle, g.TriangleCount())
	for i := range triangles {
		t := g.Triangle(i)
		triangles[i] = fauxgl.NewTriangleForPoints(toFauxVector(t[0]), toFauxVector(t[1]), toFauxVector(t[2]))
	}
	m := fauxgl.NewTriangleMesh(triangles)
	b.meshes[g] = m
	return m
}

func toFauxVector(v [3]float32) fauxgl.Vector {
	return fauxgl.V(float64(v[0]), float64(v[1]), float64(v[2]))
}

func toFauxColor(c common.Color) fauxgl.Color {
	return fauxgl.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}

// toFauxMatrix converts a column-major matrix into fauxgl's row-major layout.
func toFauxMatrix(m [16]float32) fauxgl.Matrix {
	return fauxgl.Matrix{
		X00: float64(m[0]), X01: float64(m[4]), X02: float64(m[8]), X03: float64(m[12]),
		X10: float64(m[1]), X11: float64(m[5]), X12: float64(m[9]), X13: float64(m[13]),
		X20: float64(m[2]), X21: float64(m[6]), X22: float64(m[10]), X23: float64(m[14]),
		X30: float64(m[3]), X31: float64(m[7]), X32: float64(m[11]), X33: float64(m[15]),
	}
}
