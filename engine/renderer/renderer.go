package renderer

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/camera"
	"github.com/Carmen-Shannon/oxy-cone/engine/mesh"
)

var (
	// ErrReleased is returned when a released renderer is asked to draw.
	ErrReleased = errors.New("renderer: released")

	// ErrBackendUnavailable is returned when no factory is registered for the requested backend.
	ErrBackendUnavailable = errors.New("renderer: backend not available")

	// ErrNoFrame is returned by Snapshot before anything has been drawn.
	ErrNoFrame = errors.New("renderer: no frame rendered yet")

	// ErrSnapshotUnsupported is returned by backends that cannot read their target back.
	ErrSnapshotUnsupported = errors.New("renderer: snapshot not supported by backend")
)

// surfaceCount is an atomic counter used to assign each renderer's surface a unique ID.
var surfaceCount atomic.Uint64

// Renderable is anything that can hand the renderer a list of meshes to draw.
type Renderable interface {
	Meshes() []mesh.Mesh
	BackgroundColor() common.Color
}

// Surface is the output a renderer attaches to its host container.
type Surface interface {
	// ID returns the surface's unique identifier.
	ID() uint64

	// Size returns the surface dimensions in pixels.
	//
	// Returns:
	//   - width, height: the current size
	Size() (width, height int)
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	surface     *surface
	logger      *slog.Logger

	width    int
	height   int
	frames   atomic.Uint64
	released bool

	// Pre-creation config collected from builder options
	cfg Config
}

// Renderer defines the interface for the rendering system.
//
// The Renderer resolves a Renderable and a Camera into a Frame and hands it to a backend.
// Backends are selected by RendererBackendType and registered with RegisterBackend, which lets
// the same scene code drive a GPU window or a headless software target.
type Renderer interface {
	// BackendType returns the backend this renderer was created with.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Surface returns the renderer's output surface, to be attached to a host container.
	//
	// Returns:
	//   - Surface: the output surface
	Surface() Surface

	// Size returns the current output size in pixels.
	//
	// Returns:
	//   - width, height: the output size
	Size() (width, height int)

	// Resize configures the underlying backend to handle a new surface size.
	// Non-positive dimensions are clamped to 1. Ignored after Release.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Render draws every visible mesh of s as seen from cam.
	//
	// Parameters:
	//   - s: the meshes to draw
	//   - cam: the viewing camera
	//
	// Returns:
	//   - error: ErrReleased after Release, or the backend's draw error
	Render(s Renderable, cam camera.Camera) error

	// Snapshot returns the most recently drawn image.
	//
	// Returns:
	//   - image.Image: the last frame
	//   - error: ErrReleased, ErrNoFrame or ErrSnapshotUnsupported
	Snapshot() (image.Image, error)

	// Frames returns the number of frames drawn so far.
	Frames() uint64

	// Release frees the backend. Safe to call more than once.
	Release()

	// Released reports whether Release has been called.
	Released() bool
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer for host using the given backend.
// The output is sized to the host's current dimensions.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - host: the container the renderer draws for
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the new renderer
//   - error: ErrBackendUnavailable, or the backend's initialization error
func NewRenderer(backendType RendererBackendType, host Host, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backendType: backendType,
		logger:      slog.Default(),
		cfg: Config{
			PresentMode: PresentModeVSync,
			MSAA:        MSAA4x,
			Supersample: 1,
		},
	}

	// Apply options first so config flags are available before the backend is created.
	for _, opt := range options {
		opt(r)
	}
	r.cfg.Logger = r.logger

	factory, ok := lookupBackend(backendType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, backendType)
	}
	backend, err := factory(host, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend: %w", backendType, err)
	}
	r.backend = backend
	r.surface = &surface{id: surfaceCount.Add(1), r: r}

	r.Resize(host.Width(), host.Height())
	return r, nil
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Surface() Surface {
	return r.surface
}

func (r *renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		r.logger.Error("failed to configure render surface", "backend", r.backendType, "width", width, "height", height, "error", err)
		return
	}
	r.width, r.height = width, height
}

func (r *renderer) Render(s Renderable, cam camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}

	frame := r.buildFrame(s, cam)
	if err := r.backend.DrawFrame(frame); err != nil {
		return err
	}
	r.frames.Add(1)
	return nil
}

func (r *renderer) Snapshot() (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil, ErrReleased
	}
	return r.backend.Snapshot()
}

func (r *renderer) Frames() uint64 {
	return r.frames.Load()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.backend.Release()
}

func (r *renderer) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// buildFrame resolves the camera and every visible mesh into a Frame.
// Caller must hold the mutex.
func (r *renderer) buildFrame(s Renderable, cam camera.Camera) *Frame {
	frame := &Frame{
		Width:  r.width,
		Height: r.height,
		Clear:  common.Color{0, 0, 0, 1},
	}
	if s != nil {
		frame.Clear = s.BackgroundColor()
	}
	if cam == nil {
		return frame
	}

	proj := cam.Projection()
	frame.Camera = FrameCamera{
		Eye:            cam.Eye(),
		Target:         cam.Target(),
		Up:             cam.Up(),
		FovDegrees:     proj.FovDegrees,
		Aspect:         proj.Aspect,
		Near:           proj.Near,
		Far:            proj.Far,
		ViewProjection: cam.ViewProjection(),
	}
	if s == nil {
		return frame
	}

	for _, m := range s.Meshes() {
		if m == nil || !m.Visible() {
			continue
		}
		item := DrawItem{
			MeshID:    m.ID(),
			Geometry:  m.Geometry(),
			Color:     m.Material().BaseColor(),
			Wireframe: m.Material().Wireframe(),
			Model:     m.ModelMatrix(),
		}
		item.Position[0], item.Position[1], item.Position[2] = m.Position()
		item.Rotation[0], item.Rotation[1], item.Rotation[2] = m.Rotation()
		item.Scale[0], item.Scale[1], item.Scale[2] = m.Scale()
		common.Mul4(item.MVP[:], frame.Camera.ViewProjection[:], item.Model[:])
		frame.Items = append(frame.Items, item)
	}
	return frame
}

// surface is the Surface handed out by a renderer.
type surface struct {
	id uint64
	r  *renderer
}

func (s *surface) ID() uint64 {
	return s.id
}

func (s *surface) Size() (width, height int) {
	return s.r.Size()
}
