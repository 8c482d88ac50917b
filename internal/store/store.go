package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout is fixed width so that created_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Store struct {
	db  *sqlx.DB
	log *slog.Logger
	now func() time.Time
}

type Option func(*Store)

// WithLogger routes store and migration logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
// Any failure here is wrapped in ErrInit.
func New(ctx context.Context, dbPath string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %w", ErrInit, err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", ErrInit, err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: exec pragma %q: %w", ErrInit, p, err)
		}
	}

	s := &Store{
		db:  db,
		log: slog.New(slog.DiscardHandler),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %w", ErrInit, err)
	}
	s.log.Debug("store opened", "path", dbPath)
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory(ctx context.Context, opts ...Option) (*Store, error) {
	return New(ctx, ":memory:", opts...)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{s.log})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, s.db.DB, "migrations")
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTimestamp(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, v)
	}
	return t
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// withTx runs fn inside a transaction, committing on success and rolling back
// on error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

// gooseLogger adapts slog to goose's printf-style logger.
type gooseLogger struct {
	l *slog.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// DefaultDBPath returns ~/.config/solartrack/solartrack.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "solartrack", "solartrack.db"), nil
}
