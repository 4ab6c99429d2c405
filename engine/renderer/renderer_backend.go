package renderer

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
)

// RendererBackendType identifies the drawing implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeSoftware selects the CPU rasterizer. It needs no display and is always available.
	BackendTypeSoftware RendererBackendType = iota

	// BackendTypeWGPU selects the WebGPU-based rendering backend. It is registered by importing
	// the engine/renderer/gpu package.
	BackendTypeWGPU
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeSoftware:
		return "software"
	case BackendTypeWGPU:
		return "wgpu"
	}
	return fmt.Sprintf("backend(%d)", int(t))
}

// ParseBackendType maps a configuration string ("software" or "wgpu") to a RendererBackendType.
//
// Parameters:
//   - s: the backend name, case-insensitive
//
// Returns:
//   - RendererBackendType: the matching type
//   - error: an error if the name is unknown
func ParseBackendType(s string) (RendererBackendType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "software", "cpu", "":
		return BackendTypeSoftware, nil
	case "wgpu", "gpu", "webgpu":
		return BackendTypeWGPU, nil
	}
	return 0, fmt.Errorf("unknown renderer backend %q", s)
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// Config carries the options collected by the RendererBuilderOptions to a backend factory.
type Config struct {
	PresentMode          PresentMode
	MSAA                 MSAASampleCount
	Supersample          int
	ForceFallbackAdapter bool
	Logger               *slog.Logger
}

// DrawItem is one mesh, fully resolved for a single frame.
type DrawItem struct {
	MeshID    uint64
	Geometry  geometry.Geometry
	Color     common.Color
	Wireframe bool

	Position [3]float32
	Rotation [3]float32
	Scale    [3]float32

	// Model is the mesh's model matrix and MVP the full clip transform, both column-major.
	Model [16]float32
	MVP   [16]float32
}

// FrameCamera is the camera state a backend needs to build its own projection.
type FrameCamera struct {
	Eye        [3]float32
	Target     [3]float32
	Up         [3]float32
	FovDegrees float32
	Aspect     float32
	Near       float32
	Far        float32

	ViewProjection [16]float32
}

// Frame is everything a backend needs to draw one image.
type Frame struct {
	Width  int
	Height int
	Clear  common.Color
	Camera FrameCamera
	Items  []DrawItem
}

// RendererBackend is implemented by each drawing API.
type RendererBackend interface {
	// ConfigureSurface resizes the backend's render target.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the target could not be reconfigured
	ConfigureSurface(width, height int) error

	// DrawFrame clears the target and draws every item in the frame.
	//
	// Parameters:
	//   - frame: the resolved frame
	//
	// Returns:
	//   - error: an error if the frame could not be drawn or presented
	DrawFrame(frame *Frame) error

	// Snapshot returns the most recently drawn image.
	//
	// Returns:
	//   - image.Image: the last frame
	//   - error: ErrSnapshotUnsupported if the backend cannot read back, or ErrNoFrame before the first draw
	Snapshot() (image.Image, error)

	// Release frees every resource held by the backend.
	Release()
}

// Host is the container a renderer draws for. Native returns the platform handle
// (for example a GLFW window) that GPU backends need to create a surface; headless hosts return nil.
type Host interface {
	Width() int
	Height() int
	Native() any
}

// BackendFactory creates a backend for a host.
type BackendFactory func(host Host, cfg Config) (RendererBackend, error)

var (
	backendsMu sync.RWMutex
	backends   = map[RendererBackendType]BackendFactory{
		BackendTypeSoftware: newSoftwareRendererBackend,
	}
)

// RegisterBackend makes a backend available to NewRenderer. Registering a type twice replaces
// the earlier factory.
//
// Parameters:
//   - t: the backend type
//   - factory: the constructor for the backend
func RegisterBackend(t RendererBackendType, factory BackendFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[t] = factory
}

func lookupBackend(t RendererBackendType) (BackendFactory, bool) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	f, ok := backends[t]
	return f, ok
}
