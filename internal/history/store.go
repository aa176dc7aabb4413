// Package history keeps a per-cache-directory log of orchestrator
// runs in SQLite, powering the report command and post-hoc debugging.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Invocation is one recorded orchestrator run.
type Invocation struct {
	ID             string
	CreatedAt      time.Time
	Outcome        string
	Reused         bool
	TotalProblems  int
	UniqueProblems int
	Truncated      bool
	ReportFile     string
	Duration       time.Duration
}

// Store persists invocations in SQLite. Use ":memory:" for tests.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and initializes) the invocation history database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS invocations (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		reused INTEGER NOT NULL,
		total_problems INTEGER NOT NULL,
		unique_problems INTEGER NOT NULL,
		truncated INTEGER NOT NULL,
		report_file TEXT,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_invocations_created ON invocations(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordInvocation appends one run.
func (s *Store) RecordInvocation(ctx context.Context, inv Invocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (id, created_at, outcome, reused, total_problems, unique_problems, truncated, report_file, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.CreatedAt.Unix(), inv.Outcome, boolInt(inv.Reused),
		inv.TotalProblems, inv.UniqueProblems, boolInt(inv.Truncated),
		inv.ReportFile, inv.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert invocation: %w", err)
	}
	return nil
}

// Recent returns the most recent invocations, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Invocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, outcome, reused, total_problems, unique_problems, truncated, report_file, duration_ms
		 FROM invocations ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	var out []Invocation
	for rows.Next() {
		var inv Invocation
		var created, reused, truncated, durationMs int64
		var reportFile sql.NullString
		if err := rows.Scan(&inv.ID, &created, &inv.Outcome, &reused,
			&inv.TotalProblems, &inv.UniqueProblems, &truncated, &reportFile, &durationMs); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		inv.CreatedAt = time.Unix(created, 0)
		inv.Reused = reused != 0
		inv.Truncated = truncated != 0
		inv.ReportFile = reportFile.String
		inv.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Last returns the most recent invocation, or nil when none exist.
func (s *Store) Last(ctx context.Context) (*Invocation, error) {
	recent, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, nil
	}
	return &recent[0], nil
}

// Prune deletes invocations older than the cutoff and returns how many
// rows were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM invocations WHERE created_at < ?`, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune invocations: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
