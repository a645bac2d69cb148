// Package object implements a reference-counted object runtime with
// parent/child ownership, attachable typed context blocks, and a set of
// synchronization primitives (wait lock, spin lock, timer, work item) plus a
// thread-safe collection, all built on one creation/teardown protocol.
//
// Every value in the runtime is a specialization of the same generic node:
// locks, timers, collections, and memory buffers are all created through the
// same path, carry the same attributes (optional parent, cleanup and destroy
// callbacks, auto-attached context), and are destroyed by the same recursive
// teardown. Deleting a parent cascades one release to each of its children.
//
// The runtime performs no allocation, locking, or scheduling of its own:
// those capabilities are injected as a platform.Provider when the Env is
// constructed.
package object
