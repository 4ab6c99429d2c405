package scene

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-cone/engine/camera"
	"github.com/Carmen-Shannon/oxy-cone/engine/mesh"
	"github.com/Carmen-Shannon/oxy-cone/engine/render_loop"
	"github.com/Carmen-Shannon/oxy-cone/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cone/engine/window"
)

// Context is the long-lived aggregate a Manager creates on Initialize and destroys on Teardown.
// Its fields are fixed for the life of the context.
type Context struct {
	Scene    Scene
	Camera   camera.Camera
	Renderer renderer.Renderer
	Host     window.Window

	mu     sync.Mutex
	active mesh.Mesh
	live   bool
	done   chan struct{}
	driver render_loop.Driver
	logger *slog.Logger
}

var _ render_loop.Target = &Context{}

// Done returns the context's cancellation token, closed on teardown.
func (c *Context) Done() <-chan struct{} {
	return c.done
}

// Live reports whether the context has not been torn down.
func (c *Context) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Active returns the installed mesh, or nil.
func (c *Context) Active() mesh.Mesh {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Driver returns the render loop animating this context.
func (c *Context) Driver() render_loop.Driver {
	return c.driver
}

// RequestFrame schedules callback on the host's next frame.
func (c *Context) RequestFrame(callback func()) error {
	return c.Host.RequestFrame(callback)
}

// Render applies update to the active mesh, if any, then draws the scene.
//
// Parameters:
//   - update: mutation applied to the active mesh before drawing (may be nil)
//
// Returns:
//   - error: ErrNotInitialized after teardown, or the renderer's error
func (c *Context) Render(update func(active mesh.Mesh)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live {
		return ErrNotInitialized
	}
	if c.active != nil && update != nil {
		update(c.active)
	}
	return c.Renderer.Render(c.Scene, c.Camera)
}

// install swaps m in for the active mesh in one locked step, so no frame sees both.
func (c *Context) install(m mesh.Mesh) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live {
		return ErrNotInitialized
	}
	if c.active != nil {
		c.Scene.Remove(c.active)
	}
	c.active = m
	if m != nil {
		c.Scene.Add(m)
	}
	return nil
}

func (c *Context) resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live {
		return
	}
	c.Renderer.Resize(width, height)
	c.Camera.Resize(c.Renderer.Size())
}

// teardown cancels the token, stops the loop and releases everything the context owns.
func (c *Context) teardown() {
	c.mu.Lock()
	if !c.live {
		c.mu.Unlock()
		return
	}
	c.live = false
	close(c.done)
	if c.active != nil {
		c.Scene.Remove(c.active)
		c.active = nil
	}
	c.Scene.Clear()
	c.mu.Unlock()

	if c.driver != nil {
		c.driver.Stop()
	}
	c.Host.SetResizeCallback(nil)
	c.Host.Detach(c.Renderer.Surface())
	c.Renderer.Release()
	c.logger.Debug("scene context torn down", "host", c.Host.ID(), "frames", c.Renderer.Frames())
}
