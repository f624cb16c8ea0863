// Package postgres provides a PostgreSQL-backed session store built on a
// pgx connection pool, with schema migrations embedded via goose. Message
// history and context variables are stored as JSONB so appends and merges
// happen server-side in a single statement.
package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/session"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Options holds pool tuning overrides passed to New().
type Options struct {
	// MaxConns caps the pool size. Zero keeps the pgxpool default.
	MaxConns int32

	// HealthCheckPeriod sets how often idle connections are checked. Zero
	// keeps the pgxpool default.
	HealthCheckPeriod time.Duration
}

// Store implements session.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New connects a pool to dsn, pings it, and returns a ready store. The
// caller owns the pool lifetime through Close.
func New(ctx context.Context, dsn string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if opts.MaxConns > 0 {
		poolCfg.MaxConns = opts.MaxConns
	}

	if opts.HealthCheckPeriod > 0 {
		poolCfg.HealthCheckPeriod = opts.HealthCheckPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Store{pool: pool}, nil
}

// NewStore wraps an existing pool without taking ownership of it.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate applies all pending migrations from the embedded SQL files.
func Migrate(ctx context.Context, dsn string) error {
	goose.SetBaseFS(migrations)

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Create inserts the session if missing and returns the stored row either
// way.
func (s *Store) Create(ctx context.Context, id string) (*session.Session, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id)
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}

	return s.Get(ctx, id)
}

// Get loads a session, or session.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	var (
		sess     session.Session
		messages []byte
		vars     []byte
	)

	err := s.pool.QueryRow(ctx,
		`SELECT id, messages, vars, created_at, updated_at FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &messages, &vars, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get session %s: %w", id, session.ErrNotFound)
		}

		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	if err := json.Unmarshal(messages, &sess.Messages); err != nil {
		return nil, fmt.Errorf("decode messages of session %s: %w", id, err)
	}

	if err := json.Unmarshal(vars, &sess.Vars); err != nil {
		return nil, fmt.Errorf("decode vars of session %s: %w", id, err)
	}

	if sess.Vars == nil {
		sess.Vars = core.ContextVars{}
	}

	return &sess, nil
}

// AppendMessages concatenates messages onto the stored history.
func (s *Store) AppendMessages(ctx context.Context, id string, messages ...core.Message) error {
	if len(messages) == 0 {
		return nil
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode messages for session %s: %w", id, err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET messages = messages || $2::jsonb, updated_at = now() WHERE id = $1`,
		id, payload)
	if err != nil {
		return fmt.Errorf("append messages to session %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("append messages to session %s: %w", id, session.ErrNotFound)
	}

	return nil
}

// MergeVars merges a context patch into the stored variables. The JSONB
// concatenation operator overwrites existing keys, matching the additive
// last-write-wins contract.
func (s *Store) MergeVars(ctx context.Context, id string, vars core.ContextVars) error {
	if len(vars) == 0 {
		return nil
	}

	payload, err := json.Marshal(vars)
	if err != nil {
		return fmt.Errorf("encode vars for session %s: %w", id, err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET vars = vars || $2::jsonb, updated_at = now() WHERE id = $1`,
		id, payload)
	if err != nil {
		return fmt.Errorf("merge vars into session %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("merge vars into session %s: %w", id, session.ErrNotFound)
	}

	return nil
}

// Delete removes the session row.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete session %s: %w", id, session.ErrNotFound)
	}

	return nil
}
