package store

import (
	"context"
	"fmt"

	"github.com/roach88/objkit/internal/trace"
)

// Run identifies one persisted scenario execution.
type Run struct {
	ID        string
	Scenario  string
	CreatedAt string
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations still return errors.
func (s *Store) WriteRun(ctx context.Context, id, scenario string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, scenario)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteEvent inserts one trace event for a run.
// Uses ON CONFLICT DO NOTHING for idempotency - re-writing the same
// (run_id, seq) pair is silently ignored.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteEvent(ctx context.Context, runID string, ev trace.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events
		(run_id, seq, kind, object, type, label, refs, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		runID,
		ev.Seq,
		ev.Kind,
		ev.Object,
		ev.Type,
		ev.Label,
		ev.Refs,
		ev.Detail,
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// WriteSnapshot persists a run and all of its events in one transaction.
// The whole snapshot lands or none of it does.
func (s *Store) WriteSnapshot(ctx context.Context, runID string, snap *trace.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, scenario)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, runID, snap.Name); err != nil {
		return fmt.Errorf("write snapshot: run: %w", err)
	}

	for _, ev := range snap.Events {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events
			(run_id, seq, kind, object, type, label, refs, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`,
			runID, ev.Seq, ev.Kind, ev.Object, ev.Type, ev.Label, ev.Refs, ev.Detail,
		); err != nil {
			return fmt.Errorf("write snapshot: event seq %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write snapshot: commit: %w", err)
	}
	return nil
}
