package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zpam/nbspam/pkg/learning"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS models (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	name     TEXT NOT NULL,
	id       TEXT NOT NULL,
	version  INTEGER NOT NULL,
	saved_at INTEGER NOT NULL,
	blob     BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_models_name ON models(name, seq);
`

// SQLiteStore keeps every saved revision of a model; Load returns the
// newest one.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSQLiteStore opens the database at path and creates the schema
func NewSQLiteStore(ctx context.Context, path string, log *slog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, log: orDiscard(log)}, nil
}

// Save appends a new revision of name
func (s *SQLiteStore) Save(ctx context.Context, name string, state *learning.ModelState) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := Encode(state)
	if err != nil {
		return err
	}
	env, err := DecodeEnvelope(data)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO models (name, id, version, saved_at, blob) VALUES (?, ?, ?, ?, ?)",
		name, env.ID, env.Version, env.SavedAt.UnixNano(), data)
	if err != nil {
		return fmt.Errorf("failed to save model to sqlite: %w", err)
	}

	s.log.Debug("Model saved", "backend", "sqlite", "name", name, "id", env.ID, "bytes", len(data))
	return nil
}

// Load returns the newest revision of name
func (s *SQLiteStore) Load(ctx context.Context, name string) (*learning.ModelState, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT blob FROM models WHERE name = ? ORDER BY seq DESC LIMIT 1", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model from sqlite: %w", err)
	}
	return Decode(data)
}

// LoadRevision returns a specific revision of name by its id
func (s *SQLiteStore) LoadRevision(ctx context.Context, name, id string) (*learning.ModelState, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT blob FROM models WHERE name = ? AND id = ?", name, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s@%s", ErrNotFound, name, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model revision: %w", err)
	}
	return Decode(data)
}

// History lists the revisions of name, newest first
func (s *SQLiteStore) History(ctx context.Context, name string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, version, saved_at FROM models WHERE name = ? ORDER BY seq DESC", name)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var (
			r       Revision
			savedAt int64
		)
		if err := rows.Scan(&r.ID, &r.Version, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		r.SavedAt = time.Unix(0, savedAt).UTC()
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
