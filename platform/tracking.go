package platform

import (
	"fmt"
	"sync"
)

// TrackingAllocator wraps heap allocation with live-buffer accounting and
// optional fault injection. Tests use it to prove that teardown frees every
// buffer the runtime allocated (net allocations after full teardown == 0)
// and that creation paths unwind cleanly when an allocation fails mid-way.
type TrackingAllocator struct {
	mu        sync.Mutex
	live      map[*byte]int // first-byte address -> size
	allocs    int
	frees     int
	failAfter int // -1: disabled; 0: next Allocate fails
}

// NewTrackingAllocator returns a tracking allocator with fault injection
// disabled.
func NewTrackingAllocator() *TrackingAllocator {
	return &TrackingAllocator{
		live:      make(map[*byte]int),
		failAfter: -1,
	}
}

// FailAfter arranges for the next n Allocate calls to succeed and every call
// after that to return ErrExhausted. Pass a negative n to disable injection.
func (a *TrackingAllocator) FailAfter(n int) {
	a.mu.Lock()
	a.failAfter = n
	a.mu.Unlock()
}

// Allocate returns a zeroed buffer and records it as live.
func (a *TrackingAllocator) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("allocate %d bytes: %w", size, ErrExhausted)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.failAfter == 0 {
		return nil, ErrExhausted
	}
	if a.failAfter > 0 {
		a.failAfter--
	}

	buf := make([]byte, size)
	a.live[&buf[0]] = size
	a.allocs++
	return buf, nil
}

// Free releases a tracked buffer. Freeing a buffer that is not live panics:
// that is a double free or a foreign buffer, a caller bug either way.
func (a *TrackingAllocator) Free(buf []byte) {
	if len(buf) == 0 {
		panic("platform: free of zero-length buffer")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := &buf[0]
	if _, ok := a.live[key]; !ok {
		panic("platform: free of untracked buffer")
	}
	delete(a.live, key)
	a.frees++
}

// Live returns the number of buffers currently allocated and not yet freed.
func (a *TrackingAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// LiveBytes returns the total size of live buffers.
func (a *TrackingAllocator) LiveBytes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := 0
	for _, size := range a.live {
		total += size
	}
	return total
}

// Allocs returns the total number of successful allocations.
func (a *TrackingAllocator) Allocs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs
}

// Frees returns the total number of frees.
func (a *TrackingAllocator) Frees() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frees
}
