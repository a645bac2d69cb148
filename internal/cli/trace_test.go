package cli

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceCommand_RequiresDatabase(t *testing.T) {
	_, err := executeCommand("trace")
	require.Error(t, err)
}

func TestTraceCommand_ListRunsEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traces.db")

	out, err := executeCommand("trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "no runs recorded")
}

func TestTraceCommand_ListAndShowRun(t *testing.T) {
	scenario := writeScenario(t)
	db := filepath.Join(t.TempDir(), "traces.db")

	_, err := executeCommand("run", "--db", db, scenario)
	require.NoError(t, err)

	out, err := executeCommand("trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "cli-fixture")

	// Pull the run ID out of the listing and show its events.
	idPattern := regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	runID := idPattern.FindString(out)
	require.NotEmpty(t, runID)

	out, err = executeCommand("trace", "--db", db, runID)
	require.NoError(t, err)
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "destroyed")
	assert.Contains(t, out, "obj-1")
}

func TestTraceCommand_UnknownRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traces.db")

	// Create the database first so only the run lookup fails.
	_, err := executeCommand("trace", "--db", db)
	require.NoError(t, err)

	_, err = executeCommand("trace", "--db", db, "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
