package object

import "sync"

// SpinLock is a cheap mutual-exclusion lock for short critical sections.
// Acquire does not support timeouts and the caller is never logically
// suspended for long: the guarded sections in this runtime are all O(n) list
// walks.
type SpinLock struct {
	*Object
}

type spinLockPayload struct {
	lk sync.Locker
}

// NewSpinLock creates a spin lock.
func (e *Env) NewSpinLock(attrs *Attributes) (*SpinLock, error) {
	lk, err := e.locks.NewSpinLock()
	if err != nil {
		return nil, newFailedError("create spin lock primitive", err)
	}

	o, err := e.newObject(TypeSpinLock, attrs, nil)
	if err != nil {
		return nil, err
	}
	o.payload = &spinLockPayload{lk: lk}

	if err := e.completeCreate(o); err != nil {
		o.discard()
		return nil, err
	}
	return &SpinLock{o}, nil
}

// Acquire takes the lock, spinning or parking until it is free.
func (l *SpinLock) Acquire() {
	l.payload.(*spinLockPayload).lk.Lock()
}

// Release frees the lock. The caller must hold it.
func (l *SpinLock) Release() {
	l.payload.(*spinLockPayload).lk.Unlock()
}
