package object

// Type tags the specialization an object's payload belongs to.
type Type int

const (
	// TypeGeneric is a plain node with no payload.
	TypeGeneric Type = iota
	// TypeMemory is an owned or borrowed byte buffer.
	TypeMemory
	// TypeWaitLock is a blocking lock with optional acquire timeout.
	TypeWaitLock
	// TypeSpinLock is a short-critical-section mutual-exclusion lock.
	TypeSpinLock
	// TypeTimer is a one-shot or periodic deferred callback.
	TypeTimer
	// TypeWorkItem is a unit of deferred worker-thread execution.
	TypeWorkItem
	// TypeCollection is a lock-guarded ordered sequence of handles.
	TypeCollection

	// TypeDevice and TypeQueue are opaque tags reserved for application
	// layers that build device-like specializations on the generic
	// engine. The runtime attaches no behavior to them.
	TypeDevice
	TypeQueue
)

// String returns the lower-case name of the type tag.
func (t Type) String() string {
	switch t {
	case TypeGeneric:
		return "generic"
	case TypeMemory:
		return "memory"
	case TypeWaitLock:
		return "waitlock"
	case TypeSpinLock:
		return "spinlock"
	case TypeTimer:
		return "timer"
	case TypeWorkItem:
		return "workitem"
	case TypeCollection:
		return "collection"
	case TypeDevice:
		return "device"
	case TypeQueue:
		return "queue"
	default:
		return "unknown"
	}
}
