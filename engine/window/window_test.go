package window

import (
	"context"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-cone/engine/run_loop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface uint64

func (s fakeSurface) ID() uint64 { return uint64(s) }
func (s fakeSurface) Size() (width, height int) { return 1, 1 }

func newTestWindow(t *testing.T, options ...WindowBuilderOption) Window {
	t.Helper()
	w, err := NewWindow(options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestNewWindowDefaults(t *testing.T) {
	w := newTestWindow(t)
	assert.Equal(t, DefaultID, w.ID())
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.Nil(t, w.Native())
	assert.True(t, w.IsRunning())
}

func TestResizeClampsAndNotifies(t *testing.T) {
	w := newTestWindow(t, WithSizeBounds(100, 100, 800, 600))

	var gotW, gotH int
	w.SetResizeCallback(func(width, height int) { gotW, gotH = width, height })

	w.Resize(1920, 10)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 100, w.Height())
	assert.Equal(t, 800, gotW)
	assert.Equal(t, 100, gotH)

	w.SetResizeCallback(nil)
	w.Resize(300, 300)
	assert.Equal(t, 800, gotW)
	assert.Equal(t, 300, w.Width())
}

func TestAttachDetachClear(t *testing.T) {
	w := newTestWindow(t)

	w.Attach(fakeSurface(1))
	w.Attach(fakeSurface(2))
	w.Attach(fakeSurface(1))
	require.Len(t, w.Surfaces(), 2)

	w.Detach(fakeSurface(1))
	surfaces := w.Surfaces()
	require.Len(t, surfaces, 1)
	assert.Equal(t, uint64(2), surfaces[0].ID())

	w.Clear()
	assert.Empty(t, w.Surfaces())
}

func TestPostAndFramesRunOnStep(t *testing.T) {
	w := newTestWindow(t)

	var order []string
	require.NoError(t, w.RequestFrame(func() { order = append(order, "frame") }))
	require.NoError(t, w.Post(func() { order = append(order, "task") }))

	tasks, frames := w.Pending()
	assert.Equal(t, 1, tasks)
	assert.Equal(t, 1, frames)

	tasks, frames = w.Step()
	assert.Equal(t, 1, tasks)
	assert.Equal(t, 1, frames)
	assert.Equal(t, []string{"task", "frame"}, order)
}

func TestRunStopsOnCancel(t *testing.T) {
	w := newTestWindow(t, WithFrameRate(1000))

	var updates int
	w.SetUpdateCallback(func() { updates++ })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, updates)
}

func TestRunReturnsWhenClosed(t *testing.T) {
	w := newTestWindow(t)
	require.NoError(t, w.Post(func() { _ = w.Close() }))

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}

	assert.False(t, w.IsRunning())
	assert.ErrorIs(t, w.Run(context.Background()), ErrClosed)
	assert.ErrorIs(t, w.Post(func() {}), run_loop.ErrClosed)
}

func TestRegistry(t *testing.T) {
	a := newTestWindow(t, WithID("a"))
	b := newTestWindow(t, WithID("b"))

	r, err := NewRegistry(a, b)
	require.NoError(t, err)

	got, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.ErrorIs(t, r.Register(newTestWindow(t, WithID("a"))), ErrDuplicateID)

	r.Unregister("a")
	_, ok = r.Lookup("a")
	assert.False(t, ok)
	assert.True(t, a.IsRunning())
}
