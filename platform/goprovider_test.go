package platform

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapAllocator_Allocate(t *testing.T) {
	var a HeapAllocator

	buf, err := a.Allocate(16)
	require.NoError(t, err)
	assert.Len(t, buf, 16)

	for i, b := range buf {
		assert.Zero(t, b, "byte %d should be zero", i)
	}
}

func TestHeapAllocator_Allocate_ZeroSize(t *testing.T) {
	var a HeapAllocator

	_, err := a.Allocate(0)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestEventMutex_AcquireRelease(t *testing.T) {
	m, err := goLocks{}.NewMutex()
	require.NoError(t, err)
	defer m.Close()

	// Starts free.
	require.NoError(t, m.Acquire(0))
	m.Release()
}

func TestEventMutex_PollHeld(t *testing.T) {
	m, err := goLocks{}.NewMutex()
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Acquire(-1))

	err = m.Acquire(0)
	assert.ErrorIs(t, err, ErrTimedOut)

	m.Release()
}

func TestEventMutex_TimeoutElapses(t *testing.T) {
	m, err := goLocks{}.NewMutex()
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Acquire(-1))

	start := time.Now()
	err = m.Acquire(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	m.Release()
}

func TestEventMutex_ReleaseFromOtherGoroutine(t *testing.T) {
	m, err := goLocks{}.NewMutex()
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Acquire(-1))

	done := make(chan struct{})
	go func() {
		m.Release()
		close(done)
	}()
	<-done

	// Released by the other goroutine, so this acquire succeeds.
	require.NoError(t, m.Acquire(0))
	m.Release()
}

func TestEventMutex_DoubleReleaseCoalesces(t *testing.T) {
	m, err := goLocks{}.NewMutex()
	require.NoError(t, err)
	defer m.Close()

	m.Release()
	m.Release()

	// Only one token exists: a second acquire still blocks.
	require.NoError(t, m.Acquire(0))
	err = m.Acquire(0)
	assert.ErrorIs(t, err, ErrTimedOut)

	m.Release()
}

func TestGoTimer_Fires(t *testing.T) {
	fired := make(chan struct{})
	tm, err := goScheduler{}.NewTimer(func() { close(fired) })
	require.NoError(t, err)
	defer tm.Close()

	replaced := tm.Arm(5 * time.Millisecond)
	assert.False(t, replaced)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestGoTimer_ReArmReportsReplacement(t *testing.T) {
	tm, err := goScheduler{}.NewTimer(func() {})
	require.NoError(t, err)
	defer tm.Close()

	assert.False(t, tm.Arm(time.Hour))
	assert.True(t, tm.Arm(time.Hour))
	tm.Cancel(false)
	assert.False(t, tm.Arm(time.Hour))
}

func TestGoTimer_CancelBeforeDue(t *testing.T) {
	var fired atomic.Bool
	tm, err := goScheduler{}.NewTimer(func() { fired.Store(true) })
	require.NoError(t, err)
	defer tm.Close()

	tm.Arm(30 * time.Millisecond)
	tm.Cancel(true)

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load(), "cancelled timer must not fire")
}

func TestGoTimer_CancelWaitsForInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	tm, err := goScheduler{}.NewTimer(func() {
		close(started)
		<-release
		finished.Store(true)
	})
	require.NoError(t, err)

	tm.Arm(0)
	<-started

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tm.Cancel(true)
	}()

	// Cancel must not return while the callback is still running.
	time.Sleep(10 * time.Millisecond)
	assert.False(t, finished.Load())

	close(release)
	wg.Wait()
	assert.True(t, finished.Load())
	tm.Close()
}

func TestGoScheduler_Submit(t *testing.T) {
	done := make(chan struct{})
	goScheduler{}.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("submitted work did not run")
	}
}
