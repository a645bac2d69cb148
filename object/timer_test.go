package object

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/objkit/platform"
)

// noTimerSched refuses to create timer primitives.
type noTimerSched struct {
	inner platform.Scheduler
}

func (s noTimerSched) NewTimer(fn func()) (platform.Timer, error) {
	return nil, errors.New("timers exhausted")
}

func (s noTimerSched) Submit(fn func()) { s.inner.Submit(fn) }

func TestNewTimer_PrimitiveFailureLeavesNothing(t *testing.T) {
	p := platform.Default()
	p.Sched = noTimerSched{inner: p.Sched}
	env := NewEnv(p)

	_, err := env.NewTimer(TimerConfig{Callback: func(*Timer) {}}, nil)
	require.Error(t, err)
	assert.True(t, IsFailed(err))
	assert.Equal(t, int64(0), env.LiveObjects())
}

func TestTimer_OneShotFiresExactlyOnce(t *testing.T) {
	env, _ := newTestEnv(t)

	var fires atomic.Int32
	fired := make(chan struct{}, 1)
	tm, err := env.NewTimer(TimerConfig{
		Callback: func(*Timer) {
			fires.Add(1)
			select {
			case fired <- struct{}{}:
			default:
			}
		},
	}, nil)
	require.NoError(t, err)
	defer tm.Delete()

	tm.Start(5 * time.Millisecond)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("one-shot timer did not fire")
	}

	// Give a periodic bug a chance to show itself.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load())
}

func TestTimer_StopBeforeDueCallbackNeverFires(t *testing.T) {
	env, _ := newTestEnv(t)

	var fires atomic.Int32
	tm, err := env.NewTimer(TimerConfig{
		Callback: func(*Timer) { fires.Add(1) },
	}, nil)
	require.NoError(t, err)
	defer tm.Delete()

	tm.Start(50 * time.Millisecond)
	stopped := tm.Stop(true)
	assert.True(t, stopped)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load(), "stopped timer must not fire")
}

func TestTimer_StartReportsReplacement(t *testing.T) {
	env, _ := newTestEnv(t)

	tm, err := env.NewTimer(TimerConfig{Callback: func(*Timer) {}}, nil)
	require.NoError(t, err)
	defer tm.Delete()

	assert.False(t, tm.Start(time.Hour), "nothing pending on first start")
	assert.True(t, tm.Start(time.Hour), "second start replaces the pending arm")

	tm.Stop(true)
	assert.False(t, tm.Start(time.Hour), "stop cleared the pending arm")
	tm.Stop(true)
}

func TestTimer_PeriodicFiresUntilStopped(t *testing.T) {
	env, _ := newTestEnv(t)

	var fires atomic.Int32
	tm, err := env.NewTimer(TimerConfig{
		Callback: func(*Timer) { fires.Add(1) },
		Period:   5 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	defer tm.Delete()

	tm.Start(5 * time.Millisecond)

	require.Eventually(t, func() bool { return fires.Load() >= 3 },
		2*time.Second, time.Millisecond, "periodic timer should keep firing")

	tm.Stop(true)
	at := fires.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, at, fires.Load(), "no fires after a waited stop")
}

func TestTimer_StopWaitsForInFlightCallback(t *testing.T) {
	env, _ := newTestEnv(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	tm, err := env.NewTimer(TimerConfig{
		Callback: func(*Timer) {
			close(started)
			<-release
			finished.Store(true)
		},
	}, nil)
	require.NoError(t, err)

	tm.Start(0)
	<-started

	stopReturned := make(chan struct{})
	go func() {
		tm.Stop(true)
		close(stopReturned)
	}()

	select {
	case <-stopReturned:
		t.Fatal("Stop(wait=true) returned while the callback was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-stopReturned
	assert.True(t, finished.Load())

	tm.Delete()
}

func TestTimer_StopWithoutWaitDoesNotBlock(t *testing.T) {
	env, _ := newTestEnv(t)

	started := make(chan struct{})
	release := make(chan struct{})

	tm, err := env.NewTimer(TimerConfig{
		Callback: func(*Timer) {
			close(started)
			<-release
		},
	}, nil)
	require.NoError(t, err)

	tm.Start(0)
	<-started

	done := make(chan struct{})
	go func() {
		tm.Stop(false)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop(wait=false) blocked on an in-flight callback")
	}

	close(release)
	tm.Delete()
}

func TestTimer_CallbackReceivesTimerHandle(t *testing.T) {
	env, _ := newTestEnv(t)

	got := make(chan *Timer, 1)
	tm, err := env.NewTimer(TimerConfig{
		Callback: func(t *Timer) { got <- t },
	}, nil)
	require.NoError(t, err)
	defer tm.Delete()

	tm.Start(0)
	select {
	case h := <-got:
		assert.Same(t, tm.Object, h.Object)
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not run")
	}
	tm.Stop(true)
}

func TestTimer_ParentAccessibleFromCallbackHandle(t *testing.T) {
	env, _ := newTestEnv(t)

	parent, err := env.NewObject(&Attributes{Label: "owner"})
	require.NoError(t, err)

	got := make(chan *Object, 1)
	tm, err := env.NewTimer(TimerConfig{
		Callback: func(t *Timer) { got <- t.Parent() },
	}, &Attributes{Parent: parent})
	require.NoError(t, err)

	tm.Start(0)
	select {
	case p := <-got:
		assert.Same(t, parent, p)
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not run")
	}

	tm.Stop(true)
	parent.Delete()
	assert.Equal(t, int64(0), env.LiveObjects())
}
