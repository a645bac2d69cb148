package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/objkit/internal/harness"
	"github.com/roach88/objkit/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a lifecycle scenario",
		Long: `Execute a lifecycle scenario against a fresh object runtime.

The scenario's steps run in order, its assertions are checked against the
final state, and the recorded trace is optionally persisted to a SQLite
database for later inspection with 'objkit trace'.

Example:
  objkit run ./scenarios/teardown-cascade.yaml
  objkit run --db ./traces.db ./scenarios/teardown-cascade.yaml --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (optional)")

	return cmd
}

// runSummary is the payload reported after a successful run.
type runSummary struct {
	Scenario    string `json:"scenario"`
	RunID       string `json:"run_id,omitempty"`
	Events      int    `json:"events"`
	LiveObjects int64  `json:"live_objects"`
}

func (s runSummary) String() string {
	out := fmt.Sprintf("scenario %s passed: %d events, %d live objects", s.Scenario, s.Events, s.LiveObjects)
	if s.RunID != "" {
		out += fmt.Sprintf(" (run %s)", s.RunID)
	}
	return out
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	slog.Info("loading scenario", "path", path)
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	slog.Info("scenario loaded", "name", scenario.Name, "steps", len(scenario.Steps))

	result, err := harness.Run(scenario)
	if err != nil {
		if result != nil {
			slog.Debug("scenario failed", "events", len(result.Snapshot.Events))
		}
		return WrapExitError(ExitFailure, "scenario failed", err)
	}

	summary := runSummary{
		Scenario:    scenario.Name,
		Events:      len(result.Snapshot.Events),
		LiveObjects: result.LiveObjects,
	}

	if opts.Database != "" {
		runID := uuid.Must(uuid.NewV7()).String()
		slog.Info("persisting trace", "db", opts.Database, "run_id", runID)

		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		if err := st.WriteSnapshot(context.Background(), runID, result.Snapshot); err != nil {
			return WrapExitError(ExitCommandError, "failed to persist trace", err)
		}
		summary.RunID = runID
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	return formatter.Success(summary)
}
