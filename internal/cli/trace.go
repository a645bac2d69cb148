package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/objkit/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Inspect persisted traces",
		Long: `Inspect traces persisted by 'objkit run --db'.

Without a run ID, lists all persisted runs. With a run ID, prints that
run's lifecycle events in sequence order.

Example:
  objkit trace --db ./traces.db
  objkit trace --db ./traces.db 0190a8e2-... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listRuns(opts, cmd)
			}
			return showRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// runsListing is the payload for the run listing.
type runsListing struct {
	Runs []store.Run `json:"runs"`
}

func (l runsListing) String() string {
	if len(l.Runs) == 0 {
		return "no runs recorded"
	}
	var b strings.Builder
	for _, r := range l.Runs {
		fmt.Fprintf(&b, "%s  %s  %s\n", r.ID, r.CreatedAt, r.Scenario)
	}
	return strings.TrimRight(b.String(), "\n")
}

// eventListing is the payload for one run's events.
type eventListing struct {
	RunID    string         `json:"run_id"`
	Scenario string         `json:"scenario"`
	Events   []eventSummary `json:"events"`
}

type eventSummary struct {
	Seq    int64  `json:"seq"`
	Kind   string `json:"kind"`
	Object string `json:"object"`
	Type   string `json:"type"`
	Label  string `json:"label,omitempty"`
	Refs   int64  `json:"refs"`
	Detail string `json:"detail,omitempty"`
}

func (l eventListing) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s)\n", l.RunID, l.Scenario)
	for _, ev := range l.Events {
		fmt.Fprintf(&b, "  [%d] %-16s %s %s refs=%d", ev.Seq, ev.Kind, ev.Object, ev.Type, ev.Refs)
		if ev.Label != "" {
			fmt.Fprintf(&b, " label=%s", ev.Label)
		}
		if ev.Detail != "" {
			fmt.Fprintf(&b, " detail=%s", ev.Detail)
		}
		fmt.Fprintln(&b)
	}
	return strings.TrimRight(b.String(), "\n")
}

func listRuns(opts *TraceOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	return formatter.Success(runsListing{Runs: runs})
}

func showRun(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := context.Background()
	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	if run == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("run %q not found", runID))
	}

	events, err := st.ListEvents(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	listing := eventListing{
		RunID:    run.ID,
		Scenario: run.Scenario,
		Events:   make([]eventSummary, len(events)),
	}
	for i, ev := range events {
		listing.Events[i] = eventSummary{
			Seq:    ev.Seq,
			Kind:   ev.Kind,
			Object: ev.Object,
			Type:   ev.Type,
			Label:  ev.Label,
			Refs:   ev.Refs,
			Detail: ev.Detail,
		}
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	return formatter.Success(listing)
}
