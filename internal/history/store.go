package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// StatusOK and StatusError are the two recorded request outcomes.
	StatusOK    = "ok"
	StatusError = "error"

	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Entry is one recorded analysis request.
type Entry struct {
	ID          int64
	RequestID   string
	VacancyText string
	ResumeText  string
	ResultJSON  string
	Status      string
	Error       string
	CreatedAt   time.Time
}

// Store keeps the request history in a local sqlite database. Recording is
// best-effort from the caller's point of view: a failed write must not fail
// the analysis itself.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT UNIQUE NOT NULL,
			vacancy_text TEXT NOT NULL,
			resume_text TEXT NOT NULL,
			result_json TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one request outcome.
func (s *Store) Record(ctx context.Context, e Entry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (request_id, vacancy_text, resume_text, result_json, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.RequestID, e.VacancyText, e.ResumeText, e.ResultJSON, e.Status, e.Error, createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record request: %w", err)
	}

	return nil
}

// List returns the most recent entries, newest first. A non-positive limit
// falls back to the default and an oversized one is clamped.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, vacancy_text, resume_text, result_json, status, error, created_at
		FROM requests
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.RequestID, &e.VacancyText, &e.ResumeText, &e.ResultJSON, &e.Status, &e.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scan request row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	return entries, nil
}
