/*
Package sqlite provides a SQLite-backed implementation of the pipeline
state store.

PURPOSE:
  Persists the named stage outputs (chargebackData, overrideData,
  DisbursementData) between runs. One table, upsert semantics: the store
  contract is full-overwrite, last-writer-wins.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - multiple readers don't block
  - single writer at a time
  - better crash recovery

USAGE:
  store, err := sqlite.New("./recon.db")   // or ":memory:" for tests
  defer store.Close()

SEE ALSO:
  - state/store.go: the Store interface this implements
  - state/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/recon-engine/state"
)

// Store implements state.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ state.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Named pipeline state (full-overwrite, last-writer-wins)
	CREATE TABLE IF NOT EXISTS pipeline_state (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the value stored under name; found=false when never written.
func (s *Store) Get(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM pipeline_state WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set overwrites the value stored under name.
func (s *Store) Set(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pipeline_state (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		name, value, time.Now().UTC().Format(time.RFC3339))
	return err
}
