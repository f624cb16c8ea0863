// Package sqlite provides a file-backed session store on database/sql with
// the mattn/go-sqlite3 driver. The schema is created on open, so a store
// pointed at a fresh file is immediately usable. Suited for single-process
// deployments and local development.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	messages   TEXT NOT NULL DEFAULT '[]',
	vars       TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions (updated_at);
`

// Store implements session.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file at path and initializes the
// schema. WAL mode is enabled for concurrent readers.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	return NewStore(db)
}

// NewStore initializes the schema on an existing database handle. The
// caller keeps ownership of the handle unless Close is used.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts the session if missing and returns the stored row either
// way.
func (s *Store) Create(ctx context.Context, id string) (*session.Session, error) {
	now := time.Now().UTC().Unix()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)`,
		id, now, now)
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}

	return s.Get(ctx, id)
}

// Get loads a session, or session.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	var (
		sess      session.Session
		messages  string
		vars      string
		createdAt int64
		updatedAt int64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, messages, vars, created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &messages, &vars, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get session %s: %w", id, session.ErrNotFound)
		}

		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(messages), &sess.Messages); err != nil {
		return nil, fmt.Errorf("decode messages of session %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(vars), &sess.Vars); err != nil {
		return nil, fmt.Errorf("decode vars of session %s: %w", id, err)
	}

	if sess.Vars == nil {
		sess.Vars = core.ContextVars{}
	}

	sess.CreatedAt = time.Unix(createdAt, 0).UTC()
	sess.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &sess, nil
}

// AppendMessages adds messages to the stored history in one transaction.
func (s *Store) AppendMessages(ctx context.Context, id string, messages ...core.Message) error {
	if len(messages) == 0 {
		return nil
	}

	return s.update(ctx, id, func(sess *session.Session) {
		sess.Messages = append(sess.Messages, messages...)
	})
}

// MergeVars merges a context patch into the stored variables, overwriting
// existing keys.
func (s *Store) MergeVars(ctx context.Context, id string, vars core.ContextVars) error {
	if len(vars) == 0 {
		return nil
	}

	return s.update(ctx, id, func(sess *session.Session) {
		sess.Vars.Merge(vars)
	})
}

// Delete removes the session row.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}

	if affected == 0 {
		return fmt.Errorf("delete session %s: %w", id, session.ErrNotFound)
	}

	return nil
}

// update runs a read-modify-write cycle on one session inside a
// transaction. SQLite has no JSONB concatenation worth depending on, so the
// merge happens in Go.
func (s *Store) update(ctx context.Context, id string, mutate func(sess *session.Session)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update of session %s: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		messages string
		vars     string
	)

	err = tx.QueryRowContext(ctx,
		`SELECT messages, vars FROM sessions WHERE id = ?`, id,
	).Scan(&messages, &vars)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update session %s: %w", id, session.ErrNotFound)
		}

		return fmt.Errorf("update session %s: %w", id, err)
	}

	sess := session.Session{ID: id}

	if err := json.Unmarshal([]byte(messages), &sess.Messages); err != nil {
		return fmt.Errorf("decode messages of session %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(vars), &sess.Vars); err != nil {
		return fmt.Errorf("decode vars of session %s: %w", id, err)
	}

	if sess.Vars == nil {
		sess.Vars = core.ContextVars{}
	}

	mutate(&sess)

	encodedMessages, err := json.Marshal(sess.Messages)
	if err != nil {
		return fmt.Errorf("encode messages of session %s: %w", id, err)
	}

	encodedVars, err := json.Marshal(sess.Vars)
	if err != nil {
		return fmt.Errorf("encode vars of session %s: %w", id, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET messages = ?, vars = ?, updated_at = ? WHERE id = ?`,
		string(encodedMessages), string(encodedVars), time.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update of session %s: %w", id, err)
	}

	return nil
}
