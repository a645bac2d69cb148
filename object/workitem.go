package object

import "sync"

// WorkItemConfig configures a work item object.
type WorkItemConfig struct {
	// Callback runs on a worker goroutine when the item is dispatched.
	Callback func(*WorkItem)
}

// WorkItem is a unit of deferred work behind a generic object. Enqueue
// schedules the callback to run at the earliest opportunity on a worker
// goroutine; enqueues while an invocation is already queued coalesce.
type WorkItem struct {
	*Object
}

type workItemPayload struct {
	cfg WorkItemConfig

	mu     sync.Mutex
	cond   *sync.Cond
	queued bool
	active int
}

// workItemDestroy drains any pending or in-flight invocation before the
// object's memory goes away.
func workItemDestroy(o *Object) {
	o.payload.(*workItemPayload).flush()
}

// NewWorkItem creates a work item.
func (e *Env) NewWorkItem(cfg WorkItemConfig, attrs *Attributes) (*WorkItem, error) {
	if cfg.Callback == nil {
		return nil, newFailedError("create work item: callback required", nil)
	}

	o, err := e.newObject(TypeWorkItem, attrs, workItemDestroy)
	if err != nil {
		return nil, err
	}

	p := &workItemPayload{cfg: cfg}
	p.cond = sync.NewCond(&p.mu)
	o.payload = p

	if err := e.completeCreate(o); err != nil {
		o.discard()
		return nil, err
	}
	return &WorkItem{o}, nil
}

// Enqueue schedules the callback to run as soon as possible. Never blocks.
// If an invocation is already queued and has not started, the call is a
// no-op; an enqueue during the callback's execution queues one more run.
func (w *WorkItem) Enqueue() {
	p := w.payload.(*workItemPayload)

	p.mu.Lock()
	if p.queued {
		p.mu.Unlock()
		return
	}
	p.queued = true
	p.active++
	p.mu.Unlock()

	w.env.sched.Submit(func() { p.run(w) })
}

func (p *workItemPayload) run(w *WorkItem) {
	p.mu.Lock()
	p.queued = false
	p.mu.Unlock()

	p.cfg.Callback(w)

	p.mu.Lock()
	p.active--
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Flush blocks until every invocation enqueued before the call has
// completed.
//
// Flush must not be called from inside the work item's own callback.
func (w *WorkItem) Flush() {
	w.payload.(*workItemPayload).flush()
}

func (p *workItemPayload) flush() {
	p.mu.Lock()
	for p.active > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()
}
