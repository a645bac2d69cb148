// Package trace records object lifecycle events and renders them into a
// canonical, deterministic form suitable for golden-file comparison and
// durable storage.
//
// A Recorder plugs into an object.Env as its trace sink. A Snapshot rewrites
// the recorded events so that object UUIDs become stable ordinal names
// ("obj-1", "obj-2", ...) in order of first appearance, which makes two runs
// of the same scenario byte-identical regardless of the UUIDs minted.
package trace
