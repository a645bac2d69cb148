package object

// Collection is a thread-safe ordered sequence of object handles. The body
// is guarded by a dedicated spin-lock object created through the same path
// as every other object; all operations are O(n) and fully serialized by
// that one lock. No external iteration primitive is exposed: every traversal
// happens inside one locked call.
type Collection struct {
	*Object
}

type collectionPayload struct {
	lock  *SpinLock
	items []*Object
}

func collectionDestroy(o *Object) {
	p := o.payload.(*collectionPayload)
	p.items = nil
	p.lock.Delete()
}

// NewCollection creates an empty collection.
func (e *Env) NewCollection(attrs *Attributes) (*Collection, error) {
	// The guard lock is created first so every later failure unwinds
	// through the same destroy hook.
	lock, err := e.NewSpinLock(nil)
	if err != nil {
		return nil, err
	}

	o, err := e.newObject(TypeCollection, attrs, collectionDestroy)
	if err != nil {
		lock.Delete()
		return nil, err
	}
	o.payload = &collectionPayload{lock: lock}

	if err := e.completeCreate(o); err != nil {
		o.discard()
		return nil, err
	}
	return &Collection{o}, nil
}

// Add appends a handle to the end of the collection.
func (c *Collection) Add(handle *Object) error {
	if handle == nil {
		return newFailedError("collection add: nil handle", nil)
	}

	p := c.payload.(*collectionPayload)
	p.lock.Acquire()
	p.items = append(p.items, handle)
	p.lock.Release()
	return nil
}

// Remove deletes the first entry identical to handle. Removing a handle that
// is not present is a no-op.
func (c *Collection) Remove(handle *Object) {
	p := c.payload.(*collectionPayload)
	p.lock.Acquire()
	for i, item := range p.items {
		if item == handle {
			p.removeAt(i)
			break
		}
	}
	p.lock.Release()
}

// RemoveAt deletes the entry at the given 0-based index. An out-of-range
// index is a no-op.
func (c *Collection) RemoveAt(index int) {
	p := c.payload.(*collectionPayload)
	p.lock.Acquire()
	if index >= 0 && index < len(p.items) {
		p.removeAt(index)
	}
	p.lock.Release()
}

// removeAt must be called with the collection lock held.
func (p *collectionPayload) removeAt(i int) {
	copy(p.items[i:], p.items[i+1:])
	// Zero the vacated slot so the slice does not retain the handle.
	p.items[len(p.items)-1] = nil
	p.items = p.items[:len(p.items)-1]
}

// GetAt returns the entry at the given 0-based index, or nil if the index is
// out of range.
func (c *Collection) GetAt(index int) *Object {
	p := c.payload.(*collectionPayload)
	p.lock.Acquire()
	defer p.lock.Release()
	if index < 0 || index >= len(p.items) {
		return nil
	}
	return p.items[index]
}

// GetFirst returns the first entry, or nil if the collection is empty.
func (c *Collection) GetFirst() *Object {
	p := c.payload.(*collectionPayload)
	p.lock.Acquire()
	defer p.lock.Release()
	if len(p.items) == 0 {
		return nil
	}
	return p.items[0]
}

// GetLast returns the last entry, or nil if the collection is empty.
func (c *Collection) GetLast() *Object {
	p := c.payload.(*collectionPayload)
	p.lock.Acquire()
	defer p.lock.Release()
	if len(p.items) == 0 {
		return nil
	}
	return p.items[len(p.items)-1]
}

// Count returns the number of entries.
func (c *Collection) Count() int {
	p := c.payload.(*collectionPayload)
	p.lock.Acquire()
	defer p.lock.Release()
	return len(p.items)
}
