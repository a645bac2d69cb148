package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Golden scenarios avoid timers and work items: their callbacks run on
// scheduler goroutines and would make event ordering nondeterministic.

func runGolden(t *testing.T, name string) {
	t.Helper()
	s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, s))
}

func TestGolden_MemoryLifecycle(t *testing.T) {
	runGolden(t, "memory-lifecycle")
}

func TestGolden_ContextAttach(t *testing.T) {
	runGolden(t, "context-attach")
}

func TestGolden_CollectionMembership(t *testing.T) {
	runGolden(t, "collection-membership")
}

func TestGolden_TeardownCascade(t *testing.T) {
	runGolden(t, "teardown-cascade")
}
