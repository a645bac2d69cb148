package object

import "fmt"

// Memory is a byte buffer behind a generic object. Buffers are either owned
// (allocated by NewMemory, freed at teardown) or borrowed (supplied to
// NewPreallocatedMemory, never freed by the runtime).
type Memory struct {
	*Object
}

type memoryPayload struct {
	buf              []byte
	needToDeallocate bool
}

func memoryDestroy(o *Object) {
	p := o.payload.(*memoryPayload)
	if p.needToDeallocate {
		o.env.alloc.Free(p.buf)
	}
}

// NewMemory creates a memory object owning a zeroed buffer of the given
// size. The buffer is freed when the object is destroyed.
func (e *Env) NewMemory(attrs *Attributes, size int) (*Memory, error) {
	if size <= 0 {
		return nil, newFailedError(fmt.Sprintf("create memory: size %d must be positive", size), nil)
	}

	buf, err := e.alloc.Allocate(size)
	if err != nil {
		return nil, newNoMemoryError("create memory buffer", err)
	}

	o, err := e.newObject(TypeMemory, attrs, memoryDestroy)
	if err != nil {
		e.alloc.Free(buf)
		return nil, err
	}
	o.payload = &memoryPayload{buf: buf, needToDeallocate: true}

	if err := e.completeCreate(o); err != nil {
		o.discard()
		return nil, err
	}
	return &Memory{o}, nil
}

// NewPreallocatedMemory creates a memory object borrowing a caller-supplied
// buffer. The runtime never frees the buffer; it is only lent for the
// object's lifetime.
func (e *Env) NewPreallocatedMemory(attrs *Attributes, buf []byte) (*Memory, error) {
	if len(buf) == 0 {
		return nil, newFailedError("create preallocated memory: empty buffer", nil)
	}

	o, err := e.newObject(TypeMemory, attrs, memoryDestroy)
	if err != nil {
		return nil, err
	}
	o.payload = &memoryPayload{buf: buf, needToDeallocate: false}

	if err := e.completeCreate(o); err != nil {
		o.discard()
		return nil, err
	}
	return &Memory{o}, nil
}

// Buffer returns the underlying buffer. Its length is the size given at
// creation. Ownership stays with the object.
func (m *Memory) Buffer() []byte {
	return m.payload.(*memoryPayload).buf
}

// Size returns the buffer size in bytes.
func (m *Memory) Size() int {
	return len(m.payload.(*memoryPayload).buf)
}

// Owned reports whether the buffer is freed by the runtime at teardown.
func (m *Memory) Owned() bool {
	return m.payload.(*memoryPayload).needToDeallocate
}
