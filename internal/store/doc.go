// Package store provides durable storage for recorded lifecycle traces.
//
// Each scenario execution is persisted as a run plus its ordered trace
// events. SQLite is used with WAL mode so past runs stay readable while a
// new run is being written.
package store
