package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with the given args and returns the
// combined output.
func executeCommand(args ...string) (string, error) {
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

const validScenarioYAML = `name: cli-fixture
description: Minimal scenario for CLI tests.
steps:
  - op: create
    label: root
  - op: create_memory
    label: buf
    size: 8
    parent: root
  - op: delete
    target: root
assertions:
  - type: live_objects
    count: 0
  - type: allocations_live
    count: 0
`

// writeScenario drops a valid scenario file into a temp dir.
func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenarioYAML), 0o644))
	return path
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
