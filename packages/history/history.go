// Package history records reqctl invocations in a local SQLite
// database. Recording is best-effort: a broken store degrades to a
// warning and never changes the dispatch outcome.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const queryTimeout = 5 * time.Second

// Entry is one recorded invocation.
type Entry struct {
	ID          string
	CreatedAt   time.Time
	Method      string
	URL         string
	ContentType string
	BodyFile    string
	UploadFile  string
	ExitCode    int
	Duration    time.Duration
}

// Stats summarizes recorded latencies.
type Stats struct {
	Count int64
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P90   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// Store is a SQLite-backed invocation log.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default history database location,
// $HOME/.reqctl/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".reqctl", "history.db"), nil
}

// Open opens (and if necessary creates) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS invocations (
			id           TEXT PRIMARY KEY,
			created_at   TIMESTAMP NOT NULL,
			method       TEXT NOT NULL,
			url          TEXT NOT NULL,
			content_type TEXT NOT NULL,
			body_file    TEXT NOT NULL DEFAULT '',
			upload_file  TEXT NOT NULL DEFAULT '',
			exit_code    INTEGER NOT NULL,
			duration_ms  INTEGER NOT NULL
		)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts one invocation.
func (s *Store) Record(e *Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations (id, created_at, method, url, content_type, body_file, upload_file, exit_code, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt, e.Method, e.URL, e.ContentType, e.BodyFile, e.UploadFile, e.ExitCode, e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}
	return nil
}

// List returns the most recent invocations, newest first. limit <= 0
// means no limit.
func (s *Store) List(limit int) ([]*Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
		SELECT id, created_at, method, url, content_type, body_file, upload_file, exit_code, duration_ms
		FROM invocations ORDER BY created_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		var durationMs int64
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Method, &e.URL, &e.ContentType, &e.BodyFile, &e.UploadFile, &e.ExitCode, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Percentiles aggregates recorded durations into latency percentiles.
func (s *Store) Percentiles() (*Stats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT duration_ms FROM invocations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query durations: %w", err)
	}
	defer rows.Close()

	h := hdrhistogram.New(1, 3_600_000, 3)
	var count int64
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return nil, fmt.Errorf("failed to scan duration: %w", err)
		}
		if ms < 1 {
			ms = 1
		}
		_ = h.RecordValue(ms)
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if count == 0 {
		return &Stats{}, nil
	}

	return &Stats{
		Count: count,
		Min:   time.Duration(h.Min()) * time.Millisecond,
		Max:   time.Duration(h.Max()) * time.Millisecond,
		Mean:  time.Duration(h.Mean()) * time.Millisecond,
		P50:   time.Duration(h.ValueAtQuantile(50)) * time.Millisecond,
		P90:   time.Duration(h.ValueAtQuantile(90)) * time.Millisecond,
		P95:   time.Duration(h.ValueAtQuantile(95)) * time.Millisecond,
		P99:   time.Duration(h.ValueAtQuantile(99)) * time.Millisecond,
	}, nil
}

// Clear removes all recorded invocations.
func (s *Store) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM invocations`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
