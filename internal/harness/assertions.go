package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/objkit/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Events   []trace.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, ev := range e.Events {
		fmt.Fprintf(&buf, "  [%d] %s %s %s", i+1, ev.Kind, ev.Object, ev.Type)
		if ev.Label != "" {
			fmt.Fprintf(&buf, " label=%s", ev.Label)
		}
		if ev.Detail != "" {
			fmt.Fprintf(&buf, " detail=%s", ev.Detail)
		}
		fmt.Fprintln(&buf)
	}

	return buf.String()
}

// checkAssertion dispatches on the assertion type.
func checkAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertLiveObjects:
		return assertLiveObjects(result, a)
	case AssertAllocationsLive:
		return assertAllocationsLive(result, a)
	case AssertCollectionCount:
		return assertCollectionCount(result, a)
	case AssertTraceCount:
		return assertTraceCount(result, a)
	case AssertTraceContains:
		return assertTraceContains(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertLiveObjects(result *Result, a Assertion) error {
	if result.LiveObjects == int64(a.Count) {
		return nil
	}
	return &AssertionError{
		Type:     AssertLiveObjects,
		Expected: fmt.Sprintf("%d live objects", a.Count),
		Actual:   fmt.Sprintf("%d live objects", result.LiveObjects),
		Events:   result.Snapshot.Events,
	}
}

func assertAllocationsLive(result *Result, a Assertion) error {
	if result.LiveAllocations == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertAllocationsLive,
		Expected: fmt.Sprintf("%d live allocations", a.Count),
		Actual:   fmt.Sprintf("%d live allocations", result.LiveAllocations),
		Events:   result.Snapshot.Events,
	}
}

func assertCollectionCount(result *Result, a Assertion) error {
	count, ok := result.Collections[a.Target]
	if !ok {
		return &AssertionError{
			Type:     AssertCollectionCount,
			Expected: fmt.Sprintf("live collection %q", a.Target),
			Actual:   "collection not live at end of run",
			Events:   result.Snapshot.Events,
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCollectionCount,
		Expected: fmt.Sprintf("collection %q holds %d entries", a.Target, a.Count),
		Actual:   fmt.Sprintf("%d entries", count),
		Events:   result.Snapshot.Events,
	}
}

func assertTraceCount(result *Result, a Assertion) error {
	count := 0
	for _, ev := range result.Snapshot.Events {
		if ev.Kind == a.Kind {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d events of kind %q", a.Count, a.Kind),
		Actual:   fmt.Sprintf("%d events", count),
		Events:   result.Snapshot.Events,
	}
}

// assertTraceContains checks for an event of the given kind, optionally
// narrowed by label and detail.
func assertTraceContains(result *Result, a Assertion) error {
	for _, ev := range result.Snapshot.Events {
		if ev.Kind != a.Kind {
			continue
		}
		if a.Label != "" && ev.Label != a.Label {
			continue
		}
		if a.Detail != "" && ev.Detail != a.Detail {
			continue
		}
		return nil
	}

	want := fmt.Sprintf("event of kind %q", a.Kind)
	if a.Label != "" {
		want += fmt.Sprintf(" with label %q", a.Label)
	}
	if a.Detail != "" {
		want += fmt.Sprintf(" with detail %q", a.Detail)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: want,
		Actual:   "not found in trace",
		Events:   result.Snapshot.Events,
	}
}
