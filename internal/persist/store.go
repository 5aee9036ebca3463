package persist

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed run index. It records every pipeline run so
// past runs can be listed and their directories located for rebuilds.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Run is one recorded pipeline execution.
type Run struct {
	ID          string
	Query       string
	Dir         string
	Status      string
	Products    int
	Reviews     int
	StartedAt   time.Time
	CompletedAt time.Time
	Error       string
}

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusEmpty     = "empty"
)

// NewStore opens (creating if needed) the run index at the given path.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			query         TEXT NOT NULL,
			dir           TEXT NOT NULL,
			status        TEXT NOT NULL,
			products      INTEGER NOT NULL DEFAULT 0,
			reviews       INTEGER NOT NULL DEFAULT 0,
			error         TEXT,
			started_at    TEXT NOT NULL,
			completed_at  TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`)
	return err
}

// RecordStart registers a new run in the running state.
func (s *Store) RecordStart(id, query, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO runs (id, query, dir, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, query, dir, StatusRunning, time.Now().Format(time.RFC3339))
	return err
}

// RecordFinish marks a run terminal with its final status and counts.
func (s *Store) RecordFinish(id, status string, products, reviews int, runErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}

	_, err := s.db.Exec(`
		UPDATE runs
		SET status = ?, products = ?, reviews = ?, error = ?, completed_at = ?
		WHERE id = ?
	`, status, products, reviews, errText, time.Now().Format(time.RFC3339), id)
	return err
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, query, dir, status, products, reviews,
		       COALESCE(error, ''), started_at, COALESCE(completed_at, '')
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt, completedAt string
		if err := rows.Scan(&r.ID, &r.Query, &r.Dir, &r.Status, &r.Products,
			&r.Reviews, &r.Error, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			r.StartedAt = t
		}
		if completedAt != "" {
			if t, err := time.Parse(time.RFC3339, completedAt); err == nil {
				r.CompletedAt = t
			}
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// LatestRunDir returns the directory of the most recent run, if any.
func (s *Store) LatestRunDir() (string, error) {
	runs, err := s.ListRuns(1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no recorded runs")
	}
	return runs[0].Dir, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
