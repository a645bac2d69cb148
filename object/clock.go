package object

import "sync/atomic"

// Clock is a monotonic logical clock used to stamp lifecycle trace events.
//
// Stamping events with a strictly increasing seq instead of wall time keeps
// trace output deterministic: two runs of the same single-threaded scenario
// produce byte-identical traces.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
