package trace

import (
	"sync"

	"github.com/roach88/objkit/object"
)

// Recorder is an in-memory object.TraceSink. It is safe for concurrent use;
// timer and work-item callbacks record from scheduler goroutines.
type Recorder struct {
	mu     sync.Mutex
	events []object.TraceEvent
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record implements object.TraceSink.
func (r *Recorder) Record(ev object.TraceEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []object.TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]object.TraceEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
