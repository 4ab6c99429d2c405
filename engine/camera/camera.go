// Package camera provides the perspective camera that frames the displayed mesh.
package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/chewxy/math32"
)

// Default projection settings for a newly created camera.
const (
	DefaultFovDegrees float32 = 75
	DefaultNear       float32 = 0.1
	DefaultFar        float32 = 1000
)

// Projection holds the perspective parameters of a camera.
type Projection struct {
	FovDegrees float32
	Aspect     float32
	Near       float32
	Far        float32
}

// DefaultProjection returns a 75 degree, square, 0.1..1000 projection.
func DefaultProjection() Projection {
	return Projection{
		FovDegrees: DefaultFovDegrees,
		Aspect:     1,
		Near:       DefaultNear,
		Far:        DefaultFar,
	}
}

// FovRadians returns the vertical field of view in radians.
func (p Projection) FovRadians() float32 {
	return p.FovDegrees * math32.Pi / 180
}

type frameCamera struct {
	mu sync.Mutex

	eye    [3]float32
	target [3]float32
	up     [3]float32
	proj   Projection

	// view and viewProj are rebuilt on read after any change.
	dirty    bool
	view     [16]float32
	viewProj [16]float32
}

// Camera is a perspective camera looking from an eye point at a target.
// Matrices are column-major and built for WebGPU clip space. Safe for concurrent use.
type Camera interface {
	// Eye returns the camera's world-space position.
	Eye() [3]float32

	// Target returns the point the camera looks at.
	Target() [3]float32

	// Up returns the camera's up vector.
	Up() [3]float32

	// Projection returns the current perspective parameters.
	Projection() Projection

	// View returns the world-to-view matrix.
	View() [16]float32

	// ViewProjection returns the combined clip-space transform.
	//
	// Returns:
	//   - [16]float32: projection x view, column-major
	ViewProjection() [16]float32

	// Frame places the eye distance units along +Z from target and looks at it.
	//
	// Parameters:
	//   - target: the point to frame
	//   - distance: how far the eye sits from target
	Frame(target [3]float32, distance float32)

	// LookAt sets the eye and target directly.
	//
	// Parameters:
	//   - eye: the camera position
	//   - target: the point to look at
	LookAt(eye, target [3]float32)

	// Resize sets the aspect ratio from a viewport size. Zero or negative
	// dimensions count as 1 so the projection never divides by zero.
	//
	// Parameters:
	//   - width: the viewport width in pixels
	//   - height: the viewport height in pixels
	Resize(width, height int)

	// SetFovDegrees changes the vertical field of view. Values outside (0, 180) are ignored.
	SetFovDegrees(degrees float32)
}

var _ Camera = &frameCamera{}

// NewCamera creates a Camera at the origin looking down -Z with DefaultProjection.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &frameCamera{
		target: [3]float32{0, 0, -1},
		up:     [3]float32{0, 1, 0},
		proj:   DefaultProjection(),
		dirty:  true,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *frameCamera) Eye() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *frameCamera) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *frameCamera) Up() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *frameCamera) Projection() Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proj
}

func (c *frameCamera) View() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebuild()
	return c.view
}

func (c *frameCamera) ViewProjection() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebuild()
	return c.viewProj
}

func (c *frameCamera) Frame(target [3]float32, distance float32) {
	c.LookAt([3]float32{target[0], target[1], target[2] + distance}, target)
}

func (c *frameCamera) LookAt(eye, target [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye, c.target = eye, target
	c.dirty = true
}

func (c *frameCamera) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proj.Aspect = aspectOf(width, height)
	c.dirty = true
}

func (c *frameCamera) SetFovDegrees(degrees float32) {
	if !(degrees > 0 && degrees < 180) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proj.FovDegrees = degrees
	c.dirty = true
}

// rebuild recomputes the matrices if anything changed. Caller must hold the mutex.
func (c *frameCamera) rebuild() {
	if !c.dirty {
		return
	}
	var proj [16]float32
	common.LookAt(c.view[:], c.eye, c.target, c.up)
	common.Perspective(proj[:], c.proj.FovRadians(), c.proj.Aspect, c.proj.Near, c.proj.Far)
	common.Mul4(c.viewProj[:], proj[:], c.view[:])
	c.dirty = false
}

func aspectOf(width, height int) float32 {
	return float32(max(width, 1)) / float32(max(height, 1))
}
