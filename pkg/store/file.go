package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zpam/nbspam/pkg/learning"
)

const fileExt = ".json"

// FileStore keeps each model as <dir>/<name>.json
type FileStore struct {
	dir string
	log *slog.Logger
}

// NewFileStore creates dir if needed
func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}
	return &FileStore{dir: dir, log: orDiscard(log)}, nil
}

// Path returns the file backing name
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: invalid model name %q", learning.ErrInvalidArgument, name)
	}
	return nil
}

// Save writes the blob to a temporary file and renames it into place so
// readers never observe a partial model.
func (s *FileStore) Save(ctx context.Context, name string, state *learning.ModelState) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(state)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		return fmt.Errorf("failed to move model into place: %w", err)
	}

	s.log.Debug("Model saved", "backend", "file", "path", s.Path(name), "bytes", len(data))
	return nil
}

// Load reads and decodes name
func (s *FileStore) Load(ctx context.Context, name string) (*learning.ModelState, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path(name))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return Decode(data)
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}

var _ Store = (*FileStore)(nil)
