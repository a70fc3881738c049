// Package history keeps a local record of completed name checks in a
// SQLite file, giving operators a trail of what was checked, when, and
// with what verdict without depending on the cache's TTL.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checks (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	check_type  TEXT NOT NULL,
	verdict     TEXT NOT NULL,
	cached      INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checks_created_at ON checks (created_at);`

// Entry is one recorded check. Failed checks carry an empty verdict and
// the error text instead.
type Entry struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	CheckType  string    `db:"check_type" json:"check_type"`
	Verdict    string    `db:"verdict" json:"verdict"`
	Cached     bool      `db:"cached" json:"cached"`
	DurationMS int64     `db:"duration_ms" json:"duration_ms"`
	Error      string    `db:"error" json:"error,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Store wraps the checks table.
type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite file at path, creating the schema when
// absent. WAL mode keeps concurrent reads from blocking the recorder.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_journal=WAL&_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("connecting to history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing history db: %w", err)
	}
	return nil
}

// Record inserts one check. A nil store is a no-op so callers can leave
// history unconfigured without guarding every call site.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO checks (id, name, check_type, verdict, cached, duration_ms, error, created_at)
		VALUES (:id, :name, :check_type, :verdict, :cached, :duration_ms, :error, :created_at)`, e)
	if err != nil {
		return fmt.Errorf("recording check: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	var entries []Entry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, name, check_type, verdict, cached, duration_ms, error, created_at
		FROM checks ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("loading recent checks: %w", err)
	}
	return entries, nil
}
