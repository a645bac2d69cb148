package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion is stamped into PRAGMA user_version after setup.
// Version 1 added idx_events_kind on top of the initial tables.
const currentSchemaVersion = 1

// bootPragmas are applied to every new connection before the schema. WAL
// lets readers proceed while a run is being written; the busy timeout
// covers the brief writer lock during commits.
var bootPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Store is a handle to one trace database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path, configures it, and
// brings the schema up to currentSchemaVersion. Reopening an existing file
// is a no-op beyond the version check.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}

	// A single connection sidesteps SQLite's one-writer restriction
	// entirely; the store never needs more.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := setup(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle. Safe on a nil-initialized store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle for ad-hoc queries in tests and tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

func setup(db *sql.DB) error {
	for _, p := range bootPragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return migrate(db)
}

// migrate walks the database forward from its recorded user_version. Fresh
// files get the full schema from schema.sql and only need the version stamp;
// older files pick up whatever each step added.
func migrate(db *sql.DB) error {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if v < 1 {
		// v1: per-kind event lookup. IF NOT EXISTS keeps this safe for
		// fresh files that already carry the index via schema.sql.
		if _, err := db.Exec(
			"CREATE INDEX IF NOT EXISTS idx_events_kind ON events(run_id, kind)",
		); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("write user_version: %w", err)
	}
	return nil
}

// verifyPragma reads back a pragma and compares it to want.
func (s *Store) verifyPragma(name, want string) error {
	var got string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&got); err != nil {
		return fmt.Errorf("read pragma %s: %w", name, err)
	}
	if got != want {
		return fmt.Errorf("pragma %s = %q, want %q", name, got, want)
	}
	return nil
}
