package object

import (
	"sync"
	"time"

	"github.com/roach88/objkit/platform"
)

// TimerConfig configures a timer object.
type TimerConfig struct {
	// Callback runs when the timer fires, on a scheduler goroutine.
	Callback func(*Timer)

	// Period, if positive, re-arms the timer with this interval after
	// each callback until Stop is called. Zero means one-shot.
	Period time.Duration
}

// Timer is a one-shot or periodic deferred callback behind a generic object.
// Callbacks execute asynchronously with respect to the goroutine that armed
// the timer.
type Timer struct {
	*Object
}

type timerPayload struct {
	cfg TimerConfig
	pt  platform.Timer

	mu      sync.Mutex
	stopped bool
}

func timerDestroy(o *Object) {
	o.payload.(*timerPayload).pt.Close()
}

// NewTimer creates a timer. The timer is created unarmed.
func (e *Env) NewTimer(cfg TimerConfig, attrs *Attributes) (*Timer, error) {
	if cfg.Callback == nil {
		return nil, newFailedError("create timer: callback required", nil)
	}

	// The primitive is acquired before the node so every later failure
	// unwinds through the same destroy hook. The callback closes over t,
	// which is set before the constructor returns and the timer can only
	// fire after Start.
	p := &timerPayload{cfg: cfg}
	var t *Timer
	pt, err := e.sched.NewTimer(func() { p.fire(t) })
	if err != nil {
		return nil, newFailedError("create timer primitive", err)
	}
	p.pt = pt

	o, err := e.newObject(TypeTimer, attrs, timerDestroy)
	if err != nil {
		pt.Close()
		return nil, err
	}
	o.payload = p
	t = &Timer{o}

	if err := e.completeCreate(o); err != nil {
		o.discard()
		return nil, err
	}
	return t, nil
}

func (p *timerPayload) fire(t *Timer) {
	p.cfg.Callback(t)

	p.mu.Lock()
	if p.cfg.Period > 0 && !p.stopped {
		p.pt.Arm(p.cfg.Period)
	}
	p.mu.Unlock()
}

// Start arms the timer to fire after due. It returns whether a previously
// armed, not yet delivered instance was replaced.
func (t *Timer) Start(due time.Duration) bool {
	p := t.payload.(*timerPayload)
	p.mu.Lock()
	p.stopped = false
	replaced := p.pt.Arm(due)
	p.mu.Unlock()
	return replaced
}

// Stop cancels any pending arm and halts periodic re-arming. If wait is
// true, Stop blocks until an in-flight callback invocation finishes before
// returning; with wait false a callback already dispatched may still run to
// completion after Stop returns.
//
// Stop(wait=true) must not be called from inside the timer's own callback.
func (t *Timer) Stop(wait bool) bool {
	p := t.payload.(*timerPayload)
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.pt.Cancel(wait)
	return true
}
