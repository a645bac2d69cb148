package trace

import (
	"github.com/roach88/objkit/object"
)

// Event is one lifecycle record with the object's UUID replaced by a stable
// ordinal name. Empty Label and Detail are omitted from canonical output.
type Event struct {
	Seq    int64  `json:"seq"`
	Kind   string `json:"kind"`
	Object string `json:"object"`
	Type   string `json:"type"`
	Label  string `json:"label,omitempty"`
	Refs   int64  `json:"refs"`
	Detail string `json:"detail,omitempty"`
}

// Snapshot is the deterministic rendering of one run's trace.
type Snapshot struct {
	Name   string  `json:"name"`
	Events []Event `json:"events"`
}

// BuildSnapshot converts raw trace events into a snapshot. Object UUIDs are
// replaced by "obj-N" names assigned in order of first appearance, so two
// runs of the same scenario produce identical snapshots.
func BuildSnapshot(name string, events []object.TraceEvent) *Snapshot {
	names := make(map[string]string, len(events))
	out := make([]Event, len(events))

	for i, ev := range events {
		ordinal, ok := names[ev.Object]
		if !ok {
			ordinal = objectName(len(names) + 1)
			names[ev.Object] = ordinal
		}
		out[i] = Event{
			Seq:    ev.Seq,
			Kind:   string(ev.Kind),
			Object: ordinal,
			Type:   ev.Type.String(),
			Label:  ev.Label,
			Refs:   ev.Refs,
			Detail: ev.Detail,
		}
	}

	return &Snapshot{Name: name, Events: out}
}

// MarshalCanonical renders the snapshot as canonical JSON: sorted keys, NFC
// normalized strings, no HTML escaping, empty optional fields omitted.
func (s *Snapshot) MarshalCanonical() ([]byte, error) {
	events := make([]any, len(s.Events))
	for i, ev := range s.Events {
		m := map[string]any{
			"seq":    ev.Seq,
			"kind":   ev.Kind,
			"object": ev.Object,
			"type":   ev.Type,
			"refs":   ev.Refs,
		}
		if ev.Label != "" {
			m["label"] = ev.Label
		}
		if ev.Detail != "" {
			m["detail"] = ev.Detail
		}
		events[i] = m
	}

	return marshalCanonical(map[string]any{
		"name":   s.Name,
		"events": events,
	})
}

func objectName(n int) string {
	// Small and hot enough that fmt is overkill.
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return "obj-" + string(digits[i:])
}
