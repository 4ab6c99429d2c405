// Package glfw_platform opens host windows on the desktop through GLFW. Its native handle
// exposes a WebGPU surface descriptor, which is what the gpu renderer backend draws into.
package glfw_platform

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-cone/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwPlatform holds the GLFW-specific window state.
type glfwPlatform struct {
	window  *glfw.Window
	running bool
}

var _ window.Platform = &glfwPlatform{}

// Handle is the native handle of a GLFW host window.
type Handle struct {
	window *glfw.Window
}

// SurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
// Uses the wgpuglfw bridge package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (h *Handle) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if h == nil || h.window == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(h.window)
}

// New creates a GLFW platform. The window is opened by window.NewWindow.
//
// Returns:
//   - window.Platform: the platform
func New() window.Platform {
	return &glfwPlatform{}
}

// Open creates the GLFW window and wires its framebuffer resize callback.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func (p *glfwPlatform) Open(title string, width, height int, onResize func(width, height int)) (int, int, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return 0, 0, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return 0, 0, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	p.window = win
	p.running = true

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			p.running = false
			win.SetShouldClose(true)
		}
	})

	// Framebuffer size, not window size: on high-DPI displays the two differ and the
	// renderer needs pixel dimensions.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		if onResize != nil && w > 0 && h > 0 {
			onResize(w, h)
		}
	})

	fbWidth, fbHeight := win.GetFramebufferSize()
	return fbWidth, fbHeight, nil
}

func (p *glfwPlatform) Native() any {
	return &Handle{window: p.window}
}

// PollEvents is the GLFW equivalent of the Win32 PeekMessage loop.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func (p *glfwPlatform) PollEvents() bool {
	if p.window == nil {
		return false
	}
	glfw.PollEvents()
	return p.Running()
}

func (p *glfwPlatform) Running() bool {
	return p.window != nil && p.running && !p.window.ShouldClose()
}

func (p *glfwPlatform) Close() error {
	if p.window == nil {
		return errors.New("window is not initialized")
	}
	p.running = false
	p.window.SetShouldClose(true)
	p.window.Destroy()
	p.window = nil
	glfw.Terminate()
	return nil
}
