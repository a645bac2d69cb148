package object

import (
	"sync/atomic"

	"github.com/roach88/objkit/platform"
)

// Env is an instance of the object runtime. All objects are created through
// an Env and consume its injected capabilities: allocator, lock provider, and
// scheduler. Multiple independent Envs may coexist; objects from different
// Envs must not be linked into one ownership tree.
type Env struct {
	alloc platform.Allocator
	locks platform.LockProvider
	sched platform.Scheduler

	sink  TraceSink
	clock *Clock
	live  atomic.Int64
}

// Option configures an Env.
type Option func(*Env)

// WithTrace attaches a sink that observes every lifecycle event. A nil sink
// (the default) costs nothing.
func WithTrace(sink TraceSink) Option {
	return func(e *Env) {
		e.sink = sink
	}
}

// NewEnv constructs a runtime environment over the given provider. Any nil
// capability in p falls back to the platform default.
func NewEnv(p platform.Provider, opts ...Option) *Env {
	def := platform.Default()
	if p.Alloc == nil {
		p.Alloc = def.Alloc
	}
	if p.Locks == nil {
		p.Locks = def.Locks
	}
	if p.Sched == nil {
		p.Sched = def.Sched
	}

	e := &Env{
		alloc: p.Alloc,
		locks: p.Locks,
		sched: p.Sched,
		clock: NewClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LiveObjects returns the number of objects created through this Env that
// have not yet been physically destroyed.
func (e *Env) LiveObjects() int64 {
	return e.live.Load()
}

// EventKind identifies a lifecycle trace event.
type EventKind string

const (
	// EventCreated fires once when an object is successfully created.
	EventCreated EventKind = "created"
	// EventReleased fires on every Delete call, destroying or not.
	EventReleased EventKind = "released"
	// EventDestroyed fires once when physical teardown completes.
	EventDestroyed EventKind = "destroyed"
	// EventContextAttached fires when a context block is attached.
	EventContextAttached EventKind = "context_attached"
)

// TraceEvent describes one lifecycle transition. Seq is a logical clock
// stamp; Object is the object's UUID; Refs is the reference count after the
// transition; Detail carries event-specific data (the context type name for
// EventContextAttached).
type TraceEvent struct {
	Seq    int64
	Kind   EventKind
	Object string
	Type   Type
	Label  string
	Refs   int64
	Detail string
}

// TraceSink observes lifecycle events. Implementations must be safe for
// concurrent use; timer and work-item callbacks may delete objects from
// scheduler goroutines.
type TraceSink interface {
	Record(ev TraceEvent)
}

func (e *Env) emit(kind EventKind, o *Object, refs int64, detail string) {
	if e.sink == nil {
		return
	}
	e.sink.Record(TraceEvent{
		Seq:    e.clock.Next(),
		Kind:   kind,
		Object: o.id.String(),
		Type:   o.typ,
		Label:  o.label,
		Refs:   refs,
		Detail: detail,
	})
}
