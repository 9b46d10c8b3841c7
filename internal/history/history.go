// Package history persists a record per build into SQLite, so serve mode can
// report recent build outcomes.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// BuildRecord summarizes one build pass.
type BuildRecord struct {
	BuildID  string        `json:"build_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Status   string        `json:"status"` // "success" or "failed"
	Posts    int           `json:"posts"`
	Tags     int           `json:"tags"`
	Issues   int           `json:"issues"`
}

// Store is a SQLite-backed build history. Use ":memory:" for an ephemeral
// store, or a file path for persistence across restarts.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (and initializes) the history database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		started INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		status TEXT NOT NULL,
		posts INTEGER NOT NULL,
		tags INTEGER NOT NULL,
		issues INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one build record.
func (s *Store) Record(ctx context.Context, rec BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, started, duration_ms, status, posts, tags, issues) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.BuildID, rec.Started.Unix(), rec.Duration.Milliseconds(), rec.Status, rec.Posts, rec.Tags, rec.Issues,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns the most recent builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]BuildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, started, duration_ms, status, posts, tags, issues FROM builds ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var records []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		var started, durationMS int64
		if err := rows.Scan(&rec.BuildID, &started, &durationMS, &rec.Status, &rec.Posts, &rec.Tags, &rec.Issues); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		rec.Started = time.Unix(started, 0).UTC()
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
