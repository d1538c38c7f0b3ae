// Package store persists distilled sessions as JSON documents in a local
// sqlite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/johns/vibe-distill/internal/distill"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id  TEXT PRIMARY KEY,
	distilled_at INTEGER NOT NULL,
	doc         TEXT NOT NULL
);`

// Store wraps the sessions database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sessions database at path, with WAL
// journal mode and a 5-second busy timeout, and verifies the connection
// before returning.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	ctx := context.Background()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode on %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout on %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes a distilled session, replacing any prior document for the same
// session id. Re-distilling a session is an overwrite, not an append.
func (s *Store) Save(ctx context.Context, ds *distill.DistilledSession, distilledAt int64) error {
	doc, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", ds.SessionID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, distilled_at, doc) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET distilled_at=excluded.distilled_at, doc=excluded.doc`,
		ds.SessionID, distilledAt, string(doc))
	if err != nil {
		return fmt.Errorf("save session %s: %w", ds.SessionID, err)
	}
	return nil
}

// Load reads one distilled session. Missing sessions return (nil, nil).
func (s *Store) Load(ctx context.Context, sessionID string) (*distill.DistilledSession, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT doc FROM sessions WHERE session_id = ?", sessionID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var ds distill.DistilledSession
	if err := json.Unmarshal([]byte(doc), &ds); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &ds, nil
}

// List returns all stored session ids, most recently distilled first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT session_id FROM sessions ORDER BY distilled_at DESC, session_id")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
