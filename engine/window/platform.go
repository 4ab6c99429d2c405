package window

import "sync/atomic"

// Platform supplies the native side of a Window.
type Platform interface {
	// Open creates the native window.
	//
	// Parameters:
	//   - title: the window title
	//   - width, height: the requested client size in pixels
	//   - onResize: called by the platform when the native window changes size
	//
	// Returns:
	//   - width, height: the actual pixel size, which may differ on high-DPI displays
	//   - error: error if the native window could not be created
	Open(title string, width, height int, onResize func(width, height int)) (int, int, error)

	// Native returns the platform's native handle, or nil.
	Native() any

	// PollEvents processes pending native events without blocking.
	//
	// Returns:
	//   - bool: false once the native window has been asked to close
	PollEvents() bool

	// Running reports whether the native window is still open.
	Running() bool

	// Close destroys the native window.
	Close() error
}

// headlessPlatform has no native window. It is used by tests and the CLI's headless mode.
type headlessPlatform struct {
	running atomic.Bool
}

var _ Platform = &headlessPlatform{}

// NewHeadlessPlatform creates a Platform with no native window.
//
// Returns:
//   - Platform: the headless platform
func NewHeadlessPlatform() Platform {
	return &headlessPlatform{}
}

func (p *headlessPlatform) Open(_ string, width, height int, _ func(width, height int)) (int, int, error) {
	p.running.Store(true)
	return width, height, nil
}

func (p *headlessPlatform) Native() any {
	return nil
}

func (p *headlessPlatform) PollEvents() bool {
	return p.running.Load()
}

func (p *headlessPlatform) Running() bool {
	return p.running.Load()
}

func (p *headlessPlatform) Close() error {
	p.running.Store(false)
	return nil
}
