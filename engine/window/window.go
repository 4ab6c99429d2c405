// Package window provides the host containers a renderer draws into. A Window owns a
// cooperative run loop, the set of attached render surfaces and the resize and frame
// callbacks, while a Platform supplies the native window (or none, when headless).
package window

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-cone/common"
	"github.com/Carmen-Shannon/oxy-cone/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cone/engine/run_loop"
	"golang.org/x/time/rate"
)

// DefaultID is the id the viewer's host container is registered under.
const DefaultID = "cone-display"

// ErrClosed is returned by Run when the window has already been closed.
var ErrClosed = errors.New("window: closed")

// Window provides a host container for render surfaces.
// Wraps a Platform with a cooperative run loop so that scene mutation and frame rendering
// happen on one goroutine.
type Window interface {
	// ID returns the id the window is registered under.
	ID() string

	// Width returns the current client area width in pixels.
	Width() int

	// Height returns the current client area height in pixels.
	Height() int

	// Native returns the platform's native handle, or nil for headless windows.
	//
	// Returns:
	//   - any: the native handle
	Native() any

	// Resize changes the client area size and notifies the resize callback.
	// Sizes are clamped to the window's min and max bounds.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	Resize(width, height int)

	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels (or nil to disable)
	SetResizeCallback(callback func(width, height int))

	// SetUpdateCallback sets the function called once per Run iteration, before the loop steps.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// Attach adds a render surface to the window's content.
	//
	// Parameters:
	//   - s: the surface to attach
	Attach(s renderer.Surface)

	// Detach removes a render surface. Unknown surfaces are ignored.
	//
	// Parameters:
	//   - s: the surface to remove
	Detach(s renderer.Surface)

	// Clear removes every attached surface.
	Clear()

	// Surfaces returns a copy of the attached surfaces in attach order.
	//
	// Returns:
	//   - []renderer.Surface: the attached surfaces
	Surfaces() []renderer.Surface

	// RequestFrame schedules a callback for the next frame.
	//
	// Parameters:
	//   - callback: the frame callback
	//
	// Returns:
	//   - error: run_loop.ErrClosed after Close
	RequestFrame(callback func()) error

	// Post schedules a task on the window's loop goroutine.
	//
	// Parameters:
	//   - task: the task to run
	//
	// Returns:
	//   - error: run_loop.ErrClosed after Close
	Post(task func()) error

	// Step runs one iteration of the loop on the calling goroutine.
	//
	// Returns:
	//   - tasks, frames: the amount of work run
	Step() (tasks, frames int)

	// Pending reports how much work the next Step would run.
	Pending() (tasks, frames int)

	// Run polls platform events and steps the loop at the configured frame rate until ctx is
	// cancelled or the platform window closes. Must be called from the goroutine that created
	// the window when the platform requires it (GLFW).
	//
	// Parameters:
	//   - ctx: cancels the run
	//
	// Returns:
	//   - error: ctx.Err() on cancellation, ErrClosed if already closed, nil if the window closed
	Run(ctx context.Context) error

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// Close closes the platform window and its loop. Safe to call more than once.
	//
	// Returns:
	//   - error: the platform's close error, if any
	Close() error
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	mu sync.Mutex

	id    string
	title string

	// Resize bounds; zero disables a bound.
	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	width  int
	height int

	frameRate float64
	platform  Platform
	loop      run_loop.Loop
	logger    *slog.Logger

	surfaces []renderer.Surface

	onUpdate func()
	onResize func(width, height int)

	closed atomic.Bool
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options and opens its platform window.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
//   - error: the platform's open error
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		id:        DefaultID,
		title:     "oxy-cone",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  1,
		minHeight: 1,
		width:     1280,
		height:    720,
		frameRate: 60,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.platform == nil {
		w.platform = NewHeadlessPlatform()
	}
	w.loop = run_loop.NewLoop(run_loop.WithLogger(w.logger))

	width, height, err := w.platform.Open(w.title, w.width, w.height, w.Resize)
	if err != nil {
		w.loop.Close()
		return nil, err
	}
	w.width, w.height = width, height
	w.logger.Debug("window opened", "id", w.id, "width", width, "height", height)
	return w, nil
}

func (w *engineWindow) ID() string {
	return w.id
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

func (w *engineWindow) Native() any {
	return w.platform.Native()
}

func (w *engineWindow) Resize(width, height int) {
	w.mu.Lock()
	width = clampBound(width, w.minWidth, w.maxWidth)
	height = clampBound(height, w.minHeight, w.maxHeight)
	w.width, w.height = width, height
	cb := w.onResize
	w.mu.Unlock()

	if cb != nil {
		cb(width, height)
	}
}

func clampBound(v, lo, hi int) int {
	if hi <= 0 {
		hi = v
	}
	if lo > hi {
		lo = hi
	}
	return common.Clamp(v, lo, hi)
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onResize = callback
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onUpdate = callback
}

func (w *engineWindow) Attach(s renderer.Surface) {
	if s == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, existing := range w.surfaces {
		if existing.ID() == s.ID() {
			return
		}
	}
	w.surfaces = append(w.surfaces, s)
}

func (w *engineWindow) Detach(s renderer.Surface) {
	if s == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, existing := range w.surfaces {
		if existing.ID() == s.ID() {
			w.surfaces = append(w.surfaces[:i], w.surfaces[i+1:]...)
			return
		}
	}
}

func (w *engineWindow) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.surfaces = nil
}

func (w *engineWindow) Surfaces() []renderer.Surface {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]renderer.Surface(nil), w.surfaces...)
}

func (w *engineWindow) RequestFrame(callback func()) error {
	return w.loop.RequestFrame(callback)
}

func (w *engineWindow) Post(task func()) error {
	return w.loop.Post(task)
}

func (w *engineWindow) Step() (tasks, frames int) {
	return w.loop.Step()
}

func (w *engineWindow) Pending() (tasks, frames int) {
	return w.loop.Pending()
}

func (w *engineWindow) Run(ctx context.Context) error {
	if w.closed.Load() {
		return ErrClosed
	}

	var limiter *rate.Limiter
	if w.frameRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(w.frameRate), 1)
	}

	for w.IsRunning() {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				// Wait also fails early when the next token lies past the deadline.
				<-ctx.Done()
				return ctx.Err()
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if !w.platform.PollEvents() {
			break
		}

		w.mu.Lock()
		update := w.onUpdate
		w.mu.Unlock()
		if update != nil {
			update()
		}

		w.loop.Step()
	}
	return nil
}

func (w *engineWindow) IsRunning() bool {
	return !w.closed.Load() && w.platform.Running()
}

func (w *engineWindow) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	w.loop.Close()
	w.Clear()
	w.logger.Debug("window closed", "id", w.id)
	return w.platform.Close()
}
