package harness

import (
	"fmt"

	"github.com/roach88/objkit/internal/trace"
	"github.com/roach88/objkit/object"
	"github.com/roach88/objkit/platform"
)

// Result captures everything a scenario run produced.
type Result struct {
	// Snapshot is the canonical trace of the run.
	Snapshot *trace.Snapshot

	// LiveObjects is the number of objects not yet destroyed at the end.
	LiveObjects int64

	// LiveAllocations is the number of allocator buffers not yet freed.
	LiveAllocations int

	// Collections maps the label of each still-live collection to its
	// entry count.
	Collections map[string]int
}

// runner holds the mutable state of one scenario execution.
type runner struct {
	env   *object.Env
	alloc *platform.TrackingAllocator
	rec   *trace.Recorder

	objects     map[string]*object.Object
	collections map[string]*object.Collection
	contexts    map[string]*object.ContextType

	// parents records the parent label each object was created under, so
	// deleting an object can invalidate every label in its subtree.
	parents map[string]string
}

// Run executes a scenario against a fresh runtime and checks its assertions.
// The result is returned even when an assertion fails, so callers can dump
// the trace for debugging.
func Run(s *Scenario) (*Result, error) {
	alloc := platform.NewTrackingAllocator()
	rec := trace.NewRecorder()
	env := object.NewEnv(platform.Provider{Alloc: alloc}, object.WithTrace(rec))

	r := &runner{
		env:         env,
		alloc:       alloc,
		rec:         rec,
		objects:     make(map[string]*object.Object),
		collections: make(map[string]*object.Collection),
		contexts:    make(map[string]*object.ContextType),
		parents:     make(map[string]string),
	}

	for i, step := range s.Steps {
		if err := r.apply(step); err != nil {
			return nil, fmt.Errorf("steps[%d] %s: %w", i, step.Op, err)
		}
	}

	result := &Result{
		Snapshot:        trace.BuildSnapshot(s.Name, rec.Events()),
		LiveObjects:     env.LiveObjects(),
		LiveAllocations: alloc.Live(),
		Collections:     make(map[string]int, len(r.collections)),
	}
	for label, coll := range r.collections {
		result.Collections[label] = coll.Count()
	}

	for i, assertion := range s.Assertions {
		if err := checkAssertion(result, assertion); err != nil {
			return result, fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return result, nil
}

// apply executes one step.
func (r *runner) apply(st Step) error {
	switch st.Op {
	case OpCreate:
		attrs, err := r.attrs(st)
		if err != nil {
			return err
		}
		o, err := r.env.NewObject(attrs)
		if err != nil {
			return err
		}
		return r.register(st, o)

	case OpCreateMemory:
		attrs, err := r.attrs(st)
		if err != nil {
			return err
		}
		m, err := r.env.NewMemory(attrs, st.Size)
		if err != nil {
			return err
		}
		return r.register(st, m.Object)

	case OpCreateWaitLock:
		attrs, err := r.attrs(st)
		if err != nil {
			return err
		}
		wl, err := r.env.NewWaitLock(attrs)
		if err != nil {
			return err
		}
		return r.register(st, wl.Object)

	case OpCreateSpinLock:
		attrs, err := r.attrs(st)
		if err != nil {
			return err
		}
		sl, err := r.env.NewSpinLock(attrs)
		if err != nil {
			return err
		}
		return r.register(st, sl.Object)

	case OpCreateCollection:
		attrs, err := r.attrs(st)
		if err != nil {
			return err
		}
		coll, err := r.env.NewCollection(attrs)
		if err != nil {
			return err
		}
		if err := r.register(st, coll.Object); err != nil {
			return err
		}
		r.collections[st.Label] = coll
		return nil

	case OpAttachContext:
		o, err := r.lookup(st.Target)
		if err != nil {
			return err
		}
		ct, ok := r.contexts[st.Context]
		if !ok {
			ct = &object.ContextType{Name: st.Context, Size: st.Size}
			r.contexts[st.Context] = ct
		}
		_, err = o.AttachContext(ct)
		return err

	case OpCollectionAdd:
		coll, err := r.lookupCollection(st.Target)
		if err != nil {
			return err
		}
		item, err := r.lookup(st.Item)
		if err != nil {
			return err
		}
		return coll.Add(item)

	case OpCollectionRemove:
		coll, err := r.lookupCollection(st.Target)
		if err != nil {
			return err
		}
		item, err := r.lookup(st.Item)
		if err != nil {
			return err
		}
		coll.Remove(item)
		return nil

	case OpDelete:
		o, err := r.lookup(st.Target)
		if err != nil {
			return err
		}
		o.Delete()
		r.prune(st.Target)
		return nil

	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
}

func (r *runner) attrs(st Step) (*object.Attributes, error) {
	attrs := &object.Attributes{Label: st.Label}
	if st.Parent != "" {
		parent, err := r.lookup(st.Parent)
		if err != nil {
			return nil, err
		}
		attrs.Parent = parent
	}
	return attrs, nil
}

func (r *runner) register(st Step, o *object.Object) error {
	if _, exists := r.objects[st.Label]; exists {
		return fmt.Errorf("label %q already in use", st.Label)
	}
	r.objects[st.Label] = o
	if st.Parent != "" {
		r.parents[st.Label] = st.Parent
	}
	return nil
}

// prune drops a deleted label and, transitively, every label that was
// created beneath it. Cascade teardown destroyed those objects too; their
// labels must stop resolving so later steps fail instead of touching dead
// handles.
func (r *runner) prune(label string) {
	delete(r.objects, label)
	delete(r.collections, label)
	delete(r.parents, label)

	var children []string
	for child, parent := range r.parents {
		if parent == label {
			children = append(children, child)
		}
	}
	for _, child := range children {
		r.prune(child)
	}
}

func (r *runner) lookup(label string) (*object.Object, error) {
	o, ok := r.objects[label]
	if !ok {
		return nil, fmt.Errorf("no object with label %q", label)
	}
	return o, nil
}

func (r *runner) lookupCollection(label string) (*object.Collection, error) {
	coll, ok := r.collections[label]
	if !ok {
		return nil, fmt.Errorf("no collection with label %q", label)
	}
	return coll, nil
}
