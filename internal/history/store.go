// Package history keeps a local record of past audit runs so regressions
// between audits of the same repository are easy to spot.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ChamsBouzaiene/codeaudit/internal/audit"
)

// Run is one recorded audit.
type Run struct {
	ID         string
	RepoPath   string
	Provider   string
	Model      string
	State      string
	Iterations int
	Total      int
	Critical   int
	High       int
	Medium     int
	Low        int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store persists runs in a local sqlite database.
type Store struct {
	db *sql.DB
}

// DefaultPath places the database under the user config dir.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	dir := filepath.Join(base, "codeaudit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (creating if needed) the history database.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	// modernc sqlite serializes access; one connection avoids lock churn.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	repo_path   TEXT NOT NULL,
	provider    TEXT NOT NULL,
	model       TEXT NOT NULL,
	state       TEXT NOT NULL,
	iterations  INTEGER NOT NULL,
	total       INTEGER NOT NULL,
	critical    INTEGER NOT NULL,
	high        INTEGER NOT NULL,
	medium      INTEGER NOT NULL,
	low         INTEGER NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_repo ON runs(repo_path, finished_at DESC);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("initializing history schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run. A missing ID is generated.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, repo_path, provider, model, state, iterations,
	total, critical, high, medium, low, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RepoPath, run.Provider, run.Model, run.State, run.Iterations,
		run.Total, run.Critical, run.High, run.Medium, run.Low,
		run.StartedAt.Unix(), run.FinishedAt.Unix())
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return run.ID, nil
}

// RecentRuns lists the newest runs for a repository, most recent first.
func (s *Store) RecentRuns(ctx context.Context, repoPath string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, repo_path, provider, model, state, iterations,
	total, critical, high, medium, low, started_at, finished_at
FROM runs WHERE repo_path = ? ORDER BY finished_at DESC LIMIT ?`, repoPath, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.RepoPath, &r.Provider, &r.Model, &r.State, &r.Iterations,
			&r.Total, &r.Critical, &r.High, &r.Medium, &r.Low, &started, &finished); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(started, 0)
		r.FinishedAt = time.Unix(finished, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SeverityCounts fills the per-severity fields from a summary.
func (r *Run) SeverityCounts(summary audit.Summary) {
	r.Total = summary.Total
	r.Critical = summary.BySeverity[audit.SeverityCritical]
	r.High = summary.BySeverity[audit.SeverityHigh]
	r.Medium = summary.BySeverity[audit.SeverityMedium]
	r.Low = summary.BySeverity[audit.SeverityLow]
}
