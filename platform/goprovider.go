package platform

import (
	"fmt"
	"sync"
	"time"
)

// HeapAllocator allocates plain Go-managed buffers. Free is a no-op; the
// garbage collector reclaims the memory once the runtime drops its reference.
type HeapAllocator struct{}

// Allocate returns a zeroed slice of the given size.
func (HeapAllocator) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("allocate %d bytes: %w", size, ErrExhausted)
	}
	return make([]byte, size), nil
}

// Free is a no-op for heap-managed buffers.
func (HeapAllocator) Free(buf []byte) {}

// goLocks is the default LockProvider.
type goLocks struct{}

func (goLocks) NewMutex() (Mutex, error) {
	m := &eventMutex{tokens: make(chan struct{}, 1)}
	m.tokens <- struct{}{} // starts free
	return m, nil
}

func (goLocks) NewSpinLock() (sync.Locker, error) {
	return &sync.Mutex{}, nil
}

// eventMutex implements Mutex over a one-token channel. Holding the token is
// holding the lock. Release performs a non-blocking send, so releasing a free
// mutex coalesces instead of blocking or panicking.
type eventMutex struct {
	tokens chan struct{}
}

func (m *eventMutex) Acquire(timeout time.Duration) error {
	if timeout < 0 {
		<-m.tokens
		return nil
	}
	if timeout == 0 {
		select {
		case <-m.tokens:
			return nil
		default:
			return ErrTimedOut
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-m.tokens:
		return nil
	case <-t.C:
		return ErrTimedOut
	}
}

func (m *eventMutex) Release() {
	select {
	case m.tokens <- struct{}{}:
	default:
	}
}

func (m *eventMutex) Close() {}

// goScheduler is the default Scheduler. Timers are built on time.AfterFunc;
// Submit dispatches on a fresh goroutine.
type goScheduler struct{}

func (goScheduler) NewTimer(fn func()) (Timer, error) {
	t := &goTimer{fn: fn}
	t.cond = sync.NewCond(&t.mu)
	return t, nil
}

func (goScheduler) Submit(fn func()) {
	go fn()
}

// goTimer arms fn via time.AfterFunc. A generation counter invalidates
// pending fires on cancel or re-arm, and a condition variable lets
// Cancel(wait=true) drain an invocation that has already been dispatched.
type goTimer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	fn      func()
	timer   *time.Timer
	gen     uint64
	pending bool
	running int
}

func (t *goTimer) Arm(d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	replaced := t.pending
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.pending = true
	t.timer = time.AfterFunc(d, func() { t.fire(gen) })
	return replaced
}

func (t *goTimer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		// Cancelled or re-armed after this fire was scheduled.
		t.mu.Unlock()
		return
	}
	t.pending = false
	t.running++
	t.mu.Unlock()

	t.fn()

	t.mu.Lock()
	t.running--
	t.cond.Broadcast()
	t.mu.Unlock()
}

func (t *goTimer) Cancel(wait bool) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
	t.pending = false
	if wait {
		for t.running > 0 {
			t.cond.Wait()
		}
	}
	t.mu.Unlock()
}

func (t *goTimer) Close() {
	t.Cancel(true)
}
