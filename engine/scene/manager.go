package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-cone/engine/camera"
	"github.com/Carmen-Shannon/oxy-cone/engine/mesh"
	"github.com/Carmen-Shannon/oxy-cone/engine/render_loop"
	"github.com/Carmen-Shannon/oxy-cone/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cone/engine/window"
)

// DefaultCameraDistance is how far along +Z the camera sits from an installed mesh.
const DefaultCameraDistance float32 = 20

var (
	// ErrHostNotFound is returned by Initialize when no window is registered under the host id.
	ErrHostNotFound = errors.New("scene: host not found")

	// ErrNotInitialized is returned when a manager without a live context is asked to change the scene.
	ErrNotInitialized = errors.New("scene: not initialized")
)

// HostResolver looks up host windows by id. *window.Registry implements it.
type HostResolver interface {
	Lookup(id string) (window.Window, bool)
}

// RendererFactory creates the renderer for a host.
type RendererFactory func(host window.Window) (renderer.Renderer, error)

type manager struct {
	mu sync.Mutex

	hosts       HostResolver
	factory     RendererFactory
	distance    float32
	background  []SceneBuilderOption
	loopOptions []render_loop.DriverBuilderOption
	logger      *slog.Logger

	ctx *Context
}

// Manager owns the scene, camera and renderer attached to one host window, and the single
// mesh displayed in it.
//
// Usage pattern:
//  1. Initialize once per mount; it starts the render loop
//  2. Install each new mesh; the previous one is removed in the same step
//  3. Teardown on unmount, or let the next Initialize do it
type Manager interface {
	// Initialize resolves the host, tears down any prior context, and creates a new scene,
	// camera and renderer. Previously attached surfaces are cleared from the host before the
	// new renderer's surface is attached.
	//
	// Parameters:
	//   - hostID: the id of the host window
	//
	// Returns:
	//   - *Context: the new context
	//   - error: ErrHostNotFound, or the renderer factory's error
	Initialize(hostID string) (*Context, error)

	// Install replaces the active mesh with m and frames it with the camera.
	// A nil mesh behaves like Remove.
	//
	// Parameters:
	//   - m: the mesh to display
	//
	// Returns:
	//   - error: ErrNotInitialized without a live context
	Install(m mesh.Mesh) error

	// Remove removes the active mesh, leaving the scene empty.
	//
	// Returns:
	//   - error: ErrNotInitialized without a live context
	Remove() error

	// Active returns the installed mesh, or nil.
	Active() mesh.Mesh

	// Context returns the live context, or nil.
	Context() *Context

	// Teardown stops the render loop, removes the active mesh, releases the renderer and
	// detaches its surface from the host. Safe to call more than once.
	Teardown()
}

var _ Manager = &manager{}

// NewManager creates a Manager that resolves hosts through hosts.
//
// Parameters:
//   - hosts: the host lookup
//   - options: functional options to configure the manager
//
// Returns:
//   - Manager: the new manager
func NewManager(hosts HostResolver, options ...ManagerBuilderOption) Manager {
	if hosts == nil {
		panic("scene: NewManager requires a HostResolver")
	}
	m := &manager{
		hosts:    hosts,
		distance: DefaultCameraDistance,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.factory == nil {
		logger := m.logger
		m.factory = func(host window.Window) (renderer.Renderer, error) {
			return renderer.NewRenderer(renderer.BackendTypeSoftware, host, renderer.WithLogger(logger))
		}
	}
	return m
}

func (m *manager) Initialize(hostID string) (*Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	host, ok := m.hosts.Lookup(hostID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrHostNotFound, hostID)
	}

	if m.ctx != nil {
		m.ctx.teardown()
		m.ctx = nil
	}

	r, err := m.factory(host)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer for %q: %w", hostID, err)
	}
	r.Resize(host.Width(), host.Height())
	w, h := r.Size()

	ctx := &Context{
		Scene:    NewScene(hostID, m.background...),
		Camera:   camera.NewCamera(camera.WithFraming(m.distance), camera.WithViewport(w, h)),
		Renderer: r,
		Host:     host,
		live:     true,
		done:     make(chan struct{}),
		driver:   render_loop.NewDriver(append([]render_loop.DriverBuilderOption{render_loop.WithLogger(m.logger)}, m.loopOptions...)...),
		logger:   m.logger,
	}

	// Remove whatever an earlier mount left behind so the host never shows two surfaces.
	host.Clear()
	host.Attach(r.Surface())
	host.SetResizeCallback(ctx.resize)

	if err := ctx.driver.Start(ctx); err != nil {
		ctx.teardown()
		return nil, fmt.Errorf("failed to start render loop: %w", err)
	}

	m.ctx = ctx
	m.logger.Debug("scene initialized", "host", hostID, "width", w, "height", h, "surface", r.Surface().ID())
	return ctx, nil
}

func (m *manager) Install(msh mesh.Mesh) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return ErrNotInitialized
	}
	if err := m.ctx.install(msh); err != nil {
		return err
	}
	if msh != nil {
		m.ctx.Camera.Frame([3]float32{}, m.distance)
	}
	return nil
}

func (m *manager) Remove() error {
	return m.Install(nil)
}

func (m *manager) Active() mesh.Mesh {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return nil
	}
	return m.ctx.Active()
}

func (m *manager) Context() *Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx
}

func (m *manager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return
	}
	m.ctx.teardown()
	m.ctx = nil
}
