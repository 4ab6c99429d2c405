// Package run_loop provides a cooperative, single-goroutine queue of tasks and frame callbacks.
// Everything submitted to a Loop runs on whichever goroutine calls Step, so work posted from
// other goroutines is serialized with frame rendering.
package run_loop

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned when work is submitted to a closed Loop.
var ErrClosed = errors.New("run_loop: loop is closed")

type loop struct {
	mu     sync.Mutex
	tasks  []func()
	frames []func()
	closed bool

	wake   chan struct{}
	logger *slog.Logger
}

// Loop is a cooperative task and frame queue.
// Post and RequestFrame are safe to call from any goroutine; Step must only be called
// from the goroutine that owns the loop.
type Loop interface {
	// Post queues a task to run at the start of the next Step.
	//
	// Parameters:
	//   - task: the function to run
	//
	// Returns:
	//   - error: ErrClosed if the loop has been closed
	Post(task func()) error

	// RequestFrame queues a callback to run once, after the tasks of the next Step.
	// A callback that requests another frame while running is deferred to the following Step.
	//
	// Parameters:
	//   - callback: the frame callback
	//
	// Returns:
	//   - error: ErrClosed if the loop has been closed
	RequestFrame(callback func()) error

	// Step runs every queued task, then every queued frame callback, exactly once.
	// A callback that panics is logged and skipped; the rest of the step still runs.
	//
	// Returns:
	//   - tasks: number of tasks run
	//   - frames: number of frame callbacks run
	Step() (tasks, frames int)

	// Pending reports how much work is queued for the next Step.
	//
	// Returns:
	//   - tasks: queued task count
	//   - frames: queued frame callback count
	Pending() (tasks, frames int)

	// Wake returns a channel that receives a value whenever work is queued.
	// The channel has a buffer of one, so bursts collapse into a single wake-up.
	//
	// Returns:
	//   - <-chan struct{}: the wake channel
	Wake() <-chan struct{}

	// Close discards queued work and rejects further submissions. Safe to call more than once.
	Close()

	// Closed reports whether Close has been called.
	Closed() bool
}

var _ Loop = &loop{}

// NewLoop creates an empty Loop.
//
// Parameters:
//   - options: functional options to configure the loop
//
// Returns:
//   - Loop: the new loop
func NewLoop(options ...LoopBuilderOption) Loop {
	l := &loop{
		wake:   make(chan struct{}, 1),
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loop) Post(task func()) error {
	if task == nil {
		return nil
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()
	l.signal()
	return nil
}

func (l *loop) RequestFrame(callback func()) error {
	if callback == nil {
		return nil
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.frames = append(l.frames, callback)
	l.mu.Unlock()
	l.signal()
	return nil
}

func (l *loop) Step() (tasks, frames int) {
	l.mu.Lock()
	queued := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, task := range queued {
		l.run("task", task)
		tasks++
	}

	// Frames are captured after tasks so a task can request a frame for this same step.
	l.mu.Lock()
	callbacks := l.frames
	l.frames = nil
	l.mu.Unlock()

	for _, cb := range callbacks {
		l.run("frame", cb)
		frames++
	}
	return tasks, frames
}

func (l *loop) Pending() (tasks, frames int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks), len(l.frames)
}

func (l *loop) Wake() <-chan struct{} {
	return l.wake
}

func (l *loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.tasks = nil
	l.frames = nil
}

func (l *loop) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// run invokes fn, recovering and logging a panic.
func (l *loop) run(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("run loop callback panicked", "kind", kind, "panic", r)
		}
	}()
	fn()
}

func (l *loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
