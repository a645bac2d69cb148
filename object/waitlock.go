package object

import (
	"errors"
	"time"

	"github.com/roach88/objkit/platform"
)

// WaitLock is a blocking lock with optional acquire timeout, layered on the
// provider's mutex primitive.
//
// The lock has event semantics rather than owner semantics: Release from a
// goroutine other than the acquirer is legal, and releasing a free lock is a
// no-op. Callers must still pair every successful Acquire with a Release.
type WaitLock struct {
	*Object
}

type waitLockPayload struct {
	mu platform.Mutex
}

func waitLockDestroy(o *Object) {
	o.payload.(*waitLockPayload).mu.Close()
}

// NewWaitLock creates a wait lock. The lock starts free.
func (e *Env) NewWaitLock(attrs *Attributes) (*WaitLock, error) {
	mu, err := e.locks.NewMutex()
	if err != nil {
		return nil, newFailedError("create wait lock primitive", err)
	}

	o, err := e.newObject(TypeWaitLock, attrs, waitLockDestroy)
	if err != nil {
		mu.Close()
		return nil, err
	}
	o.payload = &waitLockPayload{mu: mu}

	if err := e.completeCreate(o); err != nil {
		o.discard()
		return nil, err
	}
	return &WaitLock{o}, nil
}

// Acquire blocks indefinitely until the lock is held.
func (l *WaitLock) Acquire() error {
	return l.acquire(-1)
}

// AcquireTimeout blocks until the lock is held or the timeout elapses,
// returning a TIMED_OUT error in the latter case. A zero timeout polls: it
// fails immediately if the lock is held. A negative timeout blocks
// indefinitely.
func (l *WaitLock) AcquireTimeout(timeout time.Duration) error {
	return l.acquire(timeout)
}

func (l *WaitLock) acquire(timeout time.Duration) error {
	err := l.payload.(*waitLockPayload).mu.Acquire(timeout)
	if err == nil {
		return nil
	}
	if errors.Is(err, platform.ErrTimedOut) {
		return newTimedOutError("wait lock acquire")
	}
	return newFailedError("wait lock acquire", err)
}

// Release frees the lock. Always succeeds; the caller must hold the lock.
func (l *WaitLock) Release() {
	l.payload.(*waitLockPayload).mu.Release()
}
