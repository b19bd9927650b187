// Package transcript provides a persistent local record of
// investigation exchanges. Entries are append-only and indexed by
// chat and start time so recent activity can be reviewed offline.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Entry represents one prompt/response exchange with the agent.
type Entry struct {
	ID         string
	ChatID     string
	RequestID  string
	Prompt     string
	Response   string
	// Partials counts how many intermediate previews the agent sent
	// before the final response.
	Partials   int
	Status     string // "complete", "failed", "cancelled"
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store is an append-only SQLite store for exchange transcripts. All
// public methods are safe for concurrent use (SQLite serializes writes).
type Store struct {
	db *sql.DB
}

// NewStore creates a transcript store at the given database path. The
// schema is created automatically on first use.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open transcript database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate transcript schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id          TEXT PRIMARY KEY,
		chat_id     TEXT NOT NULL,
		request_id  TEXT,
		prompt      TEXT NOT NULL,
		response    TEXT,
		partials    INTEGER NOT NULL DEFAULT 0,
		status      TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_chat ON exchanges(chat_id);
	CREATE INDEX IF NOT EXISTS idx_exchanges_started ON exchanges(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record persists an exchange. If e.ID is empty, a UUIDv7 is generated.
// The context is used for cancellation only.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate exchange ID: %w", err)
		}
		e.ID = id.String()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}

	var finished any
	if !e.FinishedAt.IsZero() {
		finished = e.FinishedAt.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges
			(id, chat_id, request_id, prompt, response, partials, status, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.ChatID,
		e.RequestID,
		e.Prompt,
		e.Response,
		e.Partials,
		e.Status,
		e.StartedAt.UTC().Format(time.RFC3339),
		finished,
	)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

// Recent returns the most recent exchanges, newest first. A chatID
// filter narrows results to one chat; empty means all chats.
func (s *Store) Recent(ctx context.Context, chatID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, chat_id, COALESCE(request_id, ''), prompt, COALESCE(response, ''),
	                 partials, status, started_at, COALESCE(finished_at, '')
	          FROM exchanges`
	args := []any{}
	if chatID != "" {
		query += ` WHERE chat_id = ?`
		args = append(args, chatID)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, finished string
		if err := rows.Scan(&e.ID, &e.ChatID, &e.RequestID, &e.Prompt, &e.Response,
			&e.Partials, &e.Status, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			e.StartedAt = t
		}
		if finished != "" {
			if t, err := time.Parse(time.RFC3339, finished); err == nil {
				e.FinishedAt = t
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByChat returns the number of recorded exchanges per chat.
func (s *Store) CountByChat(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, COUNT(*) FROM exchanges GROUP BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("count exchanges: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var chat string
		var n int
		if err := rows.Scan(&chat, &n); err != nil {
			return nil, fmt.Errorf("scan exchange count: %w", err)
		}
		counts[chat] = n
	}
	return counts, rows.Err()
}
