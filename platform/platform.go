// Package platform supplies the capability providers the object runtime is
// built on: raw allocation, lock primitives, and timer/worker scheduling.
//
// The object engine never reasons about how these are implemented. Everything
// it needs is captured in the Provider bundle, which is injected when an
// environment is constructed. Tests substitute tracking or fault-injecting
// implementations; production code uses Default().
package platform

import (
	"errors"
	"sync"
	"time"
)

// ErrExhausted is returned by allocators that have run out of resources
// (or have been configured to simulate running out).
var ErrExhausted = errors.New("platform: allocation failed")

// ErrTimedOut is returned by Mutex.Acquire when the timeout elapses before
// the lock is obtained.
var ErrTimedOut = errors.New("platform: acquire timed out")

// Allocator provides raw buffer allocation. Buffers returned by Allocate are
// zero-filled. Every buffer must eventually be passed to Free exactly once.
type Allocator interface {
	// Allocate returns a zeroed buffer of the given size.
	// Size must be positive.
	Allocate(size int) ([]byte, error)

	// Free releases a buffer previously returned by Allocate.
	Free(buf []byte)
}

// Mutex is a blocking mutual-exclusion primitive with optional timeout.
//
// The default implementation has auto-reset-event semantics: it starts free,
// Release from a goroutine other than the acquirer is legal, and releasing an
// already-free mutex is a no-op. This matches the semantics the runtime's
// wait locks are specified against.
type Mutex interface {
	// Acquire blocks until the mutex is held or the timeout elapses.
	// A negative timeout blocks indefinitely. A zero timeout polls: it
	// returns ErrTimedOut immediately if the mutex is held.
	Acquire(timeout time.Duration) error

	// Release frees the mutex. Never blocks.
	Release()

	// Close releases any resources backing the mutex. The mutex must not
	// be used after Close.
	Close()
}

// LockProvider creates the two lock primitives the runtime consumes.
type LockProvider interface {
	// NewMutex creates a blocking mutex with timeout support.
	NewMutex() (Mutex, error)

	// NewSpinLock creates a cheap mutual-exclusion primitive for short
	// critical sections.
	NewSpinLock() (sync.Locker, error)
}

// Timer is an armable one-shot callback. Re-arming before the due time
// replaces the pending arm. The callback runs on a scheduler-supplied
// goroutine, asynchronously with respect to the armer.
type Timer interface {
	// Arm schedules the callback to fire after d. If an earlier arm was
	// still pending it is replaced and Arm returns true.
	Arm(d time.Duration) bool

	// Cancel prevents future firings of any pending arm. A callback that
	// has already been dispatched may still run to completion; if wait is
	// true, Cancel blocks until any in-flight invocation finishes.
	//
	// Cancel(wait=true) must not be called from inside the callback.
	Cancel(wait bool)

	// Close cancels the timer, waits for in-flight callbacks, and
	// releases its resources.
	Close()
}

// Scheduler provides deferred execution: armable timers and immediate
// worker dispatch.
type Scheduler interface {
	// NewTimer creates a timer that invokes fn when it fires.
	NewTimer(fn func()) (Timer, error)

	// Submit runs fn on a worker goroutine as soon as possible.
	// Submit never blocks.
	Submit(fn func())
}

// Provider bundles the capabilities the object runtime consumes.
type Provider struct {
	Alloc Allocator
	Locks LockProvider
	Sched Scheduler
}

// Default returns a provider backed by the Go runtime: heap allocation,
// channel-based mutexes, and time.AfterFunc timers.
func Default() Provider {
	return Provider{
		Alloc: HeapAllocator{},
		Locks: goLocks{},
		Sched: goScheduler{},
	}
}
