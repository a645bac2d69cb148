package object

import "fmt"

// ContextType describes a class of attachable context blocks. Lookup is by
// descriptor identity, not by name: callers must present the exact
// *ContextType value used at attach time. Declare descriptors once, as
// package-level variables.
type ContextType struct {
	// Name is a diagnostic label carried into trace events.
	Name string

	// Size is the byte size of each attached block.
	Size int
}

type contextEntry struct {
	typ  *ContextType
	data []byte
}

// AttachContext allocates a zeroed block of ct.Size bytes, tags it with ct,
// and appends it to the object's context list. The buffer is owned by the
// object and freed at teardown. Attaching two contexts of the same type is
// permitted; lookup returns the first.
func (o *Object) AttachContext(ct *ContextType) ([]byte, error) {
	return o.attachContext(ct, true)
}

func (o *Object) attachContext(ct *ContextType, emit bool) ([]byte, error) {
	if ct == nil {
		return nil, newFailedError("attach context: nil context type", nil)
	}
	if ct.Size <= 0 {
		return nil, newFailedError(fmt.Sprintf("attach context %q: size must be positive", ct.Name), nil)
	}

	buf, err := o.env.alloc.Allocate(ct.Size)
	if err != nil {
		return nil, newNoMemoryError(fmt.Sprintf("attach context %q", ct.Name), err)
	}

	o.listLock.Lock()
	o.contexts = append(o.contexts, contextEntry{typ: ct, data: buf})
	o.listLock.Unlock()

	if emit {
		o.env.emit(EventContextAttached, o, o.refs.Load(), ct.Name)
	}
	return buf, nil
}

// Context returns the first attached block whose descriptor is identical to
// ct. A miss returns a NOT_FOUND error; that is a normal query result.
func (o *Object) Context(ct *ContextType) ([]byte, error) {
	if ct == nil {
		return nil, newFailedError("lookup context: nil context type", nil)
	}

	o.listLock.Lock()
	defer o.listLock.Unlock()
	for _, c := range o.contexts {
		if c.typ == ct {
			return c.data, nil
		}
	}
	return nil, newNotFoundError(fmt.Sprintf("no context of type %q", ct.Name))
}
