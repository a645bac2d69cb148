// Package harness executes YAML-defined lifecycle scenarios against a fresh
// object runtime and validates the results.
//
// A scenario is a sequence of steps (create objects, attach contexts, build
// collections, delete subtrees) followed by assertions over the final state
// and the recorded trace. Every run uses a tracking allocator, so scenarios
// can assert that teardown freed every buffer the runtime allocated.
//
// Scenario traces can also be compared against golden files; see
// RunWithGolden.
package harness
