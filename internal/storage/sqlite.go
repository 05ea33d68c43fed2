// Package storage provides SQLite implementation of the Transcript interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/faqnav/internal/models"
)

// SQLiteTranscript implements Transcript using SQLite.
type SQLiteTranscript struct {
	db   *sql.DB
	path string
}

// NewSQLiteTranscript opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteTranscript(dbPath string) (*SQLiteTranscript, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteTranscript{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		input TEXT NOT NULL,
		outcome TEXT NOT NULL,
		title TEXT NOT NULL,
		depth INTEGER NOT NULL,
		revision TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_events_session_seq ON session_events(session_id, seq);
	CREATE INDEX IF NOT EXISTS idx_events_created_at ON session_events(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteTranscript) Path() string {
	return s.path
}

// RecordEvent inserts ev and sets its ID and CreatedAt.
func (s *SQLiteTranscript) RecordEvent(ctx context.Context, ev *models.SessionEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO session_events (session_id, seq, input, outcome, title, depth, revision, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.SessionID, ev.Seq, ev.Input, ev.Outcome, ev.Title, ev.Depth, ev.Revision, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		ev.ID = id
	}
	return nil
}

// ListEvents returns the events of a session in sequence order.
func (s *SQLiteTranscript) ListEvents(ctx context.Context, sessionID string, offset, limit int) ([]*models.SessionEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, seq, input, outcome, title, depth, revision, created_at
		 FROM session_events WHERE session_id = ?
		 ORDER BY seq ASC LIMIT ? OFFSET ?`, sessionID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.SessionEvent
	for rows.Next() {
		var ev models.SessionEvent
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Seq, &ev.Input, &ev.Outcome,
			&ev.Title, &ev.Depth, &ev.Revision, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// ListSessions returns one summary per recorded session, most recently active first.
func (s *SQLiteTranscript) ListSessions(ctx context.Context, offset, limit int) ([]*models.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, COUNT(*), MAX(seq), MAX(depth)
		 FROM session_events GROUP BY session_id
		 ORDER BY MAX(id) DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.SessionSummary
	for rows.Next() {
		var sum models.SessionSummary
		if err := rows.Scan(&sum.SessionID, &sum.Events, &sum.LastSeq, &sum.MaxDepth); err != nil {
			return nil, err
		}
		sessions = append(sessions, &sum)
	}
	return sessions, rows.Err()
}

// CountEvents returns the number of recorded events.
func (s *SQLiteTranscript) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM session_events").Scan(&count)
	return count, err
}

// CountSessions returns the number of distinct sessions with at least one event.
func (s *SQLiteTranscript) CountSessions(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT session_id) FROM session_events").Scan(&count)
	return count, err
}

// Close closes the database.
func (s *SQLiteTranscript) Close() error {
	return s.db.Close()
}
