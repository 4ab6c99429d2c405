// Package render_loop drives the per-frame animation of a scene: each frame rotates the active
// mesh, renders, and reschedules itself on the host's frame callback until stopped or cancelled.
package render_loop

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-cone/engine/mesh"
	"github.com/Carmen-Shannon/oxy-cone/engine/profiler"
)

// DefaultRotationStep is the rotation in radians applied to the X and Y axes each frame.
const DefaultRotationStep float32 = 0.005

// ErrAlreadyRunning is returned by Start on a running driver.
var ErrAlreadyRunning = errors.New("render_loop: already running")

// State is the driver's run state.
type State int32

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Target is what a Driver animates.
type Target interface {
	// Done is the cancellation token. Once closed, no frame does any work or reschedules.
	Done() <-chan struct{}

	// RequestFrame schedules callback on the host's next frame.
	RequestFrame(callback func()) error

	// Render applies update to the active mesh, if one is installed, then draws a frame.
	// Both happen atomically with respect to mesh installation and teardown.
	Render(update func(active mesh.Mesh)) error
}

type driver struct {
	mu         sync.Mutex
	state      State
	generation uint64

	step     float32
	frames   atomic.Uint64
	profiler *profiler.Profiler
	logger   *slog.Logger
}

// Driver runs one self-rescheduling frame loop against a Target.
type Driver interface {
	// Start schedules the first frame and moves the driver to StateRunning.
	//
	// Parameters:
	//   - target: the scene to animate
	//
	// Returns:
	//   - error: ErrAlreadyRunning, or the target's RequestFrame error
	Start(target Target) error

	// Stop moves the driver to StateStopped. Any frame already scheduled does nothing when it fires.
	// Safe to call more than once.
	Stop()

	// State returns the current run state.
	State() State

	// Frames returns the number of frames rendered since the driver was created.
	Frames() uint64
}

var _ Driver = &driver{}

// NewDriver creates a stopped Driver.
//
// Parameters:
//   - options: functional options to configure the driver
//
// Returns:
//   - Driver: the new driver
func NewDriver(options ...DriverBuilderOption) Driver {
	d := &driver{
		step: DefaultRotationStep,
	}
	for _, opt := range options {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

func (d *driver) Start(target Target) error {
	d.mu.Lock()
	if d.state == StateRunning {
		d.mu.Unlock()
		return ErrAlreadyRunning
	}
	d.state = StateRunning
	d.generation++
	gen := d.generation
	d.mu.Unlock()

	if err := target.RequestFrame(func() { d.frame(gen, target) }); err != nil {
		d.stop(gen)
		return err
	}
	d.logger.Debug("render loop started", "rotation_step", d.step)
	return nil
}

func (d *driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateStopped {
		return
	}
	d.state = StateStopped
	d.generation++
	d.logger.Debug("render loop stopped", "frames", d.frames.Load())
}

func (d *driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *driver) Frames() uint64 {
	return d.frames.Load()
}

// live reports whether gen is still the running generation.
func (d *driver) live(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == StateRunning && d.generation == gen
}

// stop stops the driver only if gen is still the running generation.
func (d *driver) stop(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.generation == gen {
		d.state = StateStopped
		d.generation++
	}
}

func (d *driver) frame(gen uint64, target Target) {
	select {
	case <-target.Done():
		d.stop(gen)
		return
	default:
	}
	if !d.live(gen) {
		return
	}

	err := target.Render(func(active mesh.Mesh) {
		active.Rotate(d.step, d.step, 0)
	})
	if err != nil {
		d.logger.Warn("frame render failed", "error", err)
	} else {
		d.frames.Add(1)
		if d.profiler != nil {
			d.profiler.Tick()
		}
	}

	if err := target.RequestFrame(func() { d.frame(gen, target) }); err != nil {
		d.logger.Debug("render loop ended", "error", err)
		d.stop(gen)
	}
}
