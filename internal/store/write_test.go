package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/objkit/internal/trace"
)

func TestWriteRun_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, "run-1", "teardown-cascade"))
	// Same ID again is a silent no-op.
	require.NoError(t, s.WriteRun(ctx, "run-1", "teardown-cascade"))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, "teardown-cascade", runs[0].Scenario)
}

func TestWriteEvent_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, "run-1", "demo"))
	require.NoError(t, s.WriteEvent(ctx, "run-1", trace.Event{
		Seq: 1, Kind: "created", Object: "obj-1", Type: "generic", Label: "root", Refs: 1,
	}))
	require.NoError(t, s.WriteEvent(ctx, "run-1", trace.Event{
		Seq: 2, Kind: "context_attached", Object: "obj-1", Type: "generic", Label: "root", Refs: 1, Detail: "state",
	}))

	events, err := s.ListEvents(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "created", events[0].Kind)
	assert.Equal(t, "state", events[1].Detail)
}

func TestWriteEvent_DuplicateSeqIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, "run-1", "demo"))
	ev := trace.Event{Seq: 1, Kind: "created", Object: "obj-1", Type: "generic", Refs: 1}
	require.NoError(t, s.WriteEvent(ctx, "run-1", ev))
	require.NoError(t, s.WriteEvent(ctx, "run-1", ev))

	n, err := s.CountEvents(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteEvent_UnknownRunRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WriteEvent(ctx, "missing", trace.Event{Seq: 1, Kind: "created", Object: "obj-1", Type: "generic", Refs: 1})
	assert.Error(t, err)
}

func TestWriteSnapshot_Transactional(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snap := &trace.Snapshot{
		Name: "memory-lifecycle",
		Events: []trace.Event{
			{Seq: 1, Kind: "created", Object: "obj-1", Type: "memory", Label: "buf", Refs: 1},
			{Seq: 2, Kind: "released", Object: "obj-1", Type: "memory", Label: "buf", Refs: 0},
			{Seq: 3, Kind: "destroyed", Object: "obj-1", Type: "memory", Label: "buf", Refs: 0},
		},
	}
	require.NoError(t, s.WriteSnapshot(ctx, "run-9", snap))

	run, err := s.GetRun(ctx, "run-9")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "memory-lifecycle", run.Scenario)

	events, err := s.ListEvents(ctx, "run-9")
	require.NoError(t, err)
	assert.Len(t, events, 3)

	// Re-writing the same snapshot is idempotent.
	require.NoError(t, s.WriteSnapshot(ctx, "run-9", snap))
	n, err := s.CountEvents(ctx, "run-9")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
