package object

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Attributes is the caller-supplied configuration copied into every object at
// creation. The zero value is valid: no parent, no callbacks, no context.
type Attributes struct {
	// Parent links the new object under an existing one. The parent holds
	// a partial-ownership claim: deleting the parent cascades one release
	// to the child. A child never owns its parent.
	Parent *Object

	// Cleanup is invoked on every Delete call, whether or not the object
	// is destroyed by it. It notifies "this handle is being released" and
	// may run many times over a shared object's lifetime.
	Cleanup func(*Object)

	// Destroy is invoked exactly once, when the reference count reaches
	// zero and physical teardown begins.
	Destroy func(*Object)

	// Context, if non-nil, is attached automatically during creation.
	Context *ContextType

	// Label is an optional diagnostic name carried into trace events.
	Label string
}

// Object is the universal node of the runtime: a reference-counted carrier
// for a typed payload, an ordered child list, and attached context blocks.
// Specializations embed *Object, so every handle supports the same
// attach/lookup/delete surface.
type Object struct {
	env   *Env
	id    uuid.UUID
	typ   Type
	label string
	attrs Attributes

	refs   atomic.Int64
	parent atomic.Pointer[Object]

	// destroyHook releases payload-specific external resources. Runs once
	// during teardown, after the Destroy callback.
	destroyHook func(*Object)

	// listLock guards children, childCount, and contexts of this object
	// only. Per-node locking: taking a child's lock never requires the
	// parent's, so there are no cross-object lock-order cycles.
	listLock   sync.Locker
	children   []*Object
	childCount int
	contexts   []contextEntry

	payload any
}

// newObject allocates the bare node. The object is not yet linked to a
// parent, counted, or traced; constructors finish with completeCreate after
// the payload is in place, so a failed create never leaves a partial object
// reachable.
func (e *Env) newObject(typ Type, attrs *Attributes, destroyHook func(*Object)) (*Object, error) {
	lk, err := e.locks.NewSpinLock()
	if err != nil {
		return nil, newFailedError("create object list lock", err)
	}

	o := &Object{
		env:         e,
		id:          uuid.Must(uuid.NewV7()),
		typ:         typ,
		destroyHook: destroyHook,
		listLock:    lk,
	}
	if attrs != nil {
		o.attrs = *attrs
	}
	o.label = o.attrs.Label
	o.refs.Store(1)
	return o, nil
}

// completeCreate attaches the auto-context, links the object under its
// parent, and publishes it. Called last by every constructor. If the context
// allocation fails the object has not been linked anywhere; the constructor
// unwinds its own payload and returns the error.
func (e *Env) completeCreate(o *Object) error {
	if ct := o.attrs.Context; ct != nil {
		if _, err := o.attachContext(ct, false); err != nil {
			return err
		}
	}

	if p := o.attrs.Parent; p != nil {
		o.parent.Store(p)
		p.listLock.Lock()
		p.children = append(p.children, o)
		p.childCount++
		p.listLock.Unlock()
	}

	e.live.Add(1)
	e.emit(EventCreated, o, 1, "")
	return nil
}

// discard unwinds a node whose create failed after newObject. Nothing has
// been linked or counted, so only payload resources need releasing.
func (o *Object) discard() {
	if o.destroyHook != nil {
		o.destroyHook(o)
	}
}

// NewObject creates a generic payload-less object. Application layers use it
// for plain ownership-tree nodes.
func (e *Env) NewObject(attrs *Attributes) (*Object, error) {
	return e.newTagged(TypeGeneric, attrs)
}

// NewTagged creates a payload-less object carrying an opaque type tag such
// as TypeDevice or TypeQueue. The runtime attaches no behavior to the tag.
func (e *Env) NewTagged(typ Type, attrs *Attributes) (*Object, error) {
	return e.newTagged(typ, attrs)
}

func (e *Env) newTagged(typ Type, attrs *Attributes) (*Object, error) {
	o, err := e.newObject(typ, attrs, nil)
	if err != nil {
		return nil, err
	}
	if err := e.completeCreate(o); err != nil {
		o.discard()
		return nil, err
	}
	return o, nil
}

// ID returns the object's trace identity.
func (o *Object) ID() uuid.UUID {
	return o.id
}

// Type returns the payload type tag.
func (o *Object) Type() Type {
	return o.typ
}

// Label returns the diagnostic name given at creation.
func (o *Object) Label() string {
	return o.label
}

// Parent returns the current parent, or nil if the object has none or has
// been detached during its parent's teardown.
func (o *Object) Parent() *Object {
	return o.parent.Load()
}

// ChildCount returns the number of children currently linked under o.
func (o *Object) ChildCount() int {
	o.listLock.Lock()
	defer o.listLock.Unlock()
	return o.childCount
}

// HasChild reports whether child is currently linked under o.
func (o *Object) HasChild(child *Object) bool {
	o.listLock.Lock()
	defer o.listLock.Unlock()
	for _, c := range o.children {
		if c == child {
			return true
		}
	}
	return false
}

// Delete releases one reference. The Cleanup callback fires on every call.
// When the count reaches zero the object is physically destroyed: each child
// is released recursively under this object's lock, the Destroy callback and
// the payload's destroy hook run once, the object unlinks from its parent,
// and all owned buffers are freed.
//
// Deleting an already-destroyed object is a caller bug and panics.
func (o *Object) Delete() {
	n := o.refs.Add(-1)
	if n < 0 {
		panic("object: delete of already-destroyed object")
	}

	// Cleanup notifies every release, not just the last.
	if o.attrs.Cleanup != nil {
		o.attrs.Cleanup(o)
	}
	o.env.emit(EventReleased, o, n, "")

	if n != 0 {
		return
	}
	o.teardown()
}

func (o *Object) teardown() {
	// Release every child with the list lock held for the whole walk:
	// subtree teardown is atomic with respect to concurrent structural
	// changes to this object. Children are detached first so their own
	// teardown never re-enters this lock.
	o.listLock.Lock()
	for len(o.children) > 0 {
		child := o.children[0]
		o.children[0] = nil
		o.children = o.children[1:]
		o.childCount--
		if o.childCount < 0 {
			panic("object: child count went negative")
		}
		child.parent.Store(nil)
		child.Delete()
	}
	o.children = nil
	o.listLock.Unlock()

	if o.attrs.Destroy != nil {
		o.attrs.Destroy(o)
	}

	// Unlink from the parent unless the parent's own teardown already
	// detached us.
	if p := o.parent.Swap(nil); p != nil {
		p.unlinkChild(o)
	}

	// Payload-specific external resources (provider locks, timers).
	if o.destroyHook != nil {
		o.destroyHook(o)
	}

	// Context blocks are owned exclusively by this object.
	o.listLock.Lock()
	contexts := o.contexts
	o.contexts = nil
	o.listLock.Unlock()
	for _, c := range contexts {
		o.env.alloc.Free(c.data)
	}

	o.payload = nil
	o.env.live.Add(-1)
	o.env.emit(EventDestroyed, o, 0, "")
}

func (p *Object) unlinkChild(child *Object) {
	p.listLock.Lock()
	defer p.listLock.Unlock()
	for i, c := range p.children {
		if c == child {
			copy(p.children[i:], p.children[i+1:])
			p.children[len(p.children)-1] = nil
			p.children = p.children[:len(p.children)-1]
			p.childCount--
			if p.childCount < 0 {
				panic("object: child count went negative")
			}
			return
		}
	}
}
