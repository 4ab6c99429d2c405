package run_loop

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepRunsTasksBeforeFrames(t *testing.T) {
	l := NewLoop()
	var order []string

	require.NoError(t, l.RequestFrame(func() { order = append(order, "frame") }))
	require.NoError(t, l.Post(func() { order = append(order, "task") }))

	tasks, frames := l.Step()
	assert.Equal(t, 1, tasks)
	assert.Equal(t, 1, frames)
	assert.Equal(t, []string{"task", "frame"}, order)
}

func TestFrameRequestedDuringFrameRunsNextStep(t *testing.T) {
	l := NewLoop()
	count := 0
	var tick func()
	tick = func() {
		count++
		_ = l.RequestFrame(tick)
	}
	require.NoError(t, l.RequestFrame(tick))

	for i := 0; i < 5; i++ {
		_, frames := l.Step()
		assert.Equal(t, 1, frames)
	}
	assert.Equal(t, 5, count)

	_, frames := l.Pending()
	assert.Equal(t, 1, frames)
}

func TestTaskCanRequestFrameForSameStep(t *testing.T) {
	l := NewLoop()
	ran := false
	require.NoError(t, l.Post(func() {
		_ = l.RequestFrame(func() { ran = true })
	}))

	_, frames := l.Step()
	assert.Equal(t, 1, frames)
	assert.True(t, ran)
}

func TestPanickingCallbackIsSkipped(t *testing.T) {
	l := NewLoop()
	ran := false
	require.NoError(t, l.Post(func() { panic("boom") }))
	require.NoError(t, l.Post(func() { ran = true }))

	assert.NotPanics(t, func() { l.Step() })
	assert.True(t, ran)
}

func TestCloseRejectsWork(t *testing.T) {
	l := NewLoop()
	require.NoError(t, l.Post(func() {}))
	l.Close()
	l.Close()

	assert.True(t, l.Closed())
	assert.ErrorIs(t, l.Post(func() {}), ErrClosed)
	assert.ErrorIs(t, l.RequestFrame(func() {}), ErrClosed)

	tasks, frames := l.Step()
	assert.Zero(t, tasks)
	assert.Zero(t, frames)
}

func TestPostFromManyGoroutines(t *testing.T) {
	l := NewLoop()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Post(func() {})
		}()
	}
	wg.Wait()

	select {
	case <-l.Wake():
	default:
		t.Fatal("expected a wake-up after posting")
	}
	tasks, _ := l.Step()
	assert.Equal(t, 16, tasks)
}
