// Package store persists trained models. Every backend stores the same
// versioned JSON blob produced by Encode.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zpam/nbspam/pkg/config"
	"github.com/zpam/nbspam/pkg/learning"
)

var (
	// ErrNotFound reports a model name with no saved blob
	ErrNotFound = errors.New("model not found")
	// ErrDeserialization reports a corrupt or incompatible blob
	ErrDeserialization = errors.New("model deserialization failed")
)

// Store saves and loads models by name
type Store interface {
	Save(ctx context.Context, name string, s *learning.ModelState) error
	Load(ctx context.Context, name string) (*learning.ModelState, error)
	Close() error
}

// Revision describes one saved version of a model
type Revision struct {
	ID      string    `json:"id"`
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
}

// Open creates the backend selected in cfg
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (Store, error) {
	log = orDiscard(log)
	switch cfg.Backend {
	case "file", "":
		return NewFileStore(cfg.File.Dir, log)
	case "redis":
		return NewRedisStore(ctx, cfg.Redis, log)
	case "badger":
		return NewBadgerStore(cfg.Badger.Dir, log)
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.SQLite.Path, log)
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}

// LoadClassifier loads name from st and wraps it in a classifier
func LoadClassifier(ctx context.Context, st Store, name string, opts ...learning.Option) (*learning.Classifier, error) {
	s, err := st.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return learning.FromState(s, opts...)
}

// SaveClassifier saves the classifier's current snapshot under name
func SaveClassifier(ctx context.Context, st Store, name string, c *learning.Classifier) error {
	s, err := c.State()
	if err != nil {
		return err
	}
	return st.Save(ctx, name, s)
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return log
}
