package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a lifecycle test scenario.
// Scenarios exercise the object runtime by executing a sequence of steps
// and asserting on the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps is the ordered sequence of operations to execute.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and trace.
	// Supported types: live_objects, allocations_live, collection_count,
	// trace_count, trace_contains.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation against the runtime. Objects are addressed by the
// label they were created with. Deleting an object invalidates its label and
// the labels of everything beneath it in the ownership tree; later steps and
// assertions must not reference them.
type Step struct {
	// Op selects the operation. See the Op* constants.
	Op string `yaml:"op"`

	// Label names the object a create operation produces.
	Label string `yaml:"label,omitempty"`

	// Parent optionally links a created object under an existing one.
	Parent string `yaml:"parent,omitempty"`

	// Target addresses an existing object (attach_context, collection ops,
	// delete).
	Target string `yaml:"target,omitempty"`

	// Item addresses the object a collection operation adds or removes.
	Item string `yaml:"item,omitempty"`

	// Context names the context type for attach_context. Types are created
	// on first use; the same name addresses the same type for the rest of
	// the run.
	Context string `yaml:"context,omitempty"`

	// Size is the buffer size for create_memory and attach_context.
	Size int `yaml:"size,omitempty"`
}

// Step operation constants.
const (
	OpCreate           = "create"
	OpCreateMemory     = "create_memory"
	OpCreateWaitLock   = "create_waitlock"
	OpCreateSpinLock   = "create_spinlock"
	OpCreateCollection = "create_collection"
	OpAttachContext    = "attach_context"
	OpCollectionAdd    = "collection_add"
	OpCollectionRemove = "collection_remove"
	OpDelete           = "delete"
)

// Assertion validates the trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "live_objects": objects not yet destroyed equals Count
	// - "allocations_live": allocator buffers not yet freed equals Count
	// - "collection_count": collection Target holds Count entries
	// - "trace_count": events of Kind appear exactly Count times
	// - "trace_contains": an event of Kind for object Label exists
	Type string `yaml:"type"`

	// Count is the expected quantity (live_objects, allocations_live,
	// collection_count, trace_count).
	Count int `yaml:"count"`

	// Kind is the event kind (trace_count, trace_contains).
	Kind string `yaml:"kind,omitempty"`

	// Label is the object label an event must carry (trace_contains).
	Label string `yaml:"label,omitempty"`

	// Detail is an optional event detail to match (trace_contains).
	Detail string `yaml:"detail,omitempty"`

	// Target is the collection label (collection_count).
	Target string `yaml:"target,omitempty"`
}

// Assertion type constants.
const (
	AssertLiveObjects     = "live_objects"
	AssertAllocationsLive = "allocations_live"
	AssertCollectionCount = "collection_count"
	AssertTraceCount      = "trace_count"
	AssertTraceContains   = "trace_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its operation.
func validateStep(index int, st *Step) error {
	switch st.Op {
	case OpCreate, OpCreateWaitLock, OpCreateSpinLock, OpCreateCollection:
		if st.Label == "" {
			return fmt.Errorf("steps[%d]: label is required for %s", index, st.Op)
		}
	case OpCreateMemory:
		if st.Label == "" {
			return fmt.Errorf("steps[%d]: label is required for %s", index, st.Op)
		}
		if st.Size <= 0 {
			return fmt.Errorf("steps[%d]: size must be positive for %s", index, st.Op)
		}
	case OpAttachContext:
		if st.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for %s", index, st.Op)
		}
		if st.Context == "" {
			return fmt.Errorf("steps[%d]: context is required for %s", index, st.Op)
		}
		if st.Size <= 0 {
			return fmt.Errorf("steps[%d]: size must be positive for %s", index, st.Op)
		}
	case OpCollectionAdd, OpCollectionRemove:
		if st.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for %s", index, st.Op)
		}
		if st.Item == "" {
			return fmt.Errorf("steps[%d]: item is required for %s", index, st.Op)
		}
	case OpDelete:
		if st.Target == "" {
			return fmt.Errorf("steps[%d]: target is required for %s", index, st.Op)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLiveObjects, AssertAllocationsLive:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertCollectionCount:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for collection_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for collection_count", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertTraceContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
