package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zpam/nbspam/pkg/learning"
)

// DefaultReloadDebounce coalesces bursts of file events into one reload
const DefaultReloadDebounce = 200 * time.Millisecond

// Reloader accepts a freshly loaded model
type Reloader interface {
	Replace(s *learning.ModelState) error
}

// Watcher reloads a file-backed model into a running classifier whenever
// the file is replaced. A reload that fails keeps the previous model.
type Watcher struct {
	store    *FileStore
	name     string
	target   Reloader
	log      *slog.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
	reloaded chan struct{}
}

// NewWatcher watches the directory holding name. Watching the directory
// rather than the file survives the rename done by FileStore.Save.
func NewWatcher(st *FileStore, name string, target Reloader, log *slog.Logger) (*Watcher, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(st.dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", st.dir, err)
	}
	return &Watcher{
		store:    st,
		name:     name,
		target:   target,
		log:      orDiscard(log),
		debounce: DefaultReloadDebounce,
		watcher:  fw,
		reloaded: make(chan struct{}, 1),
	}, nil
}

// SetDebounce changes the quiet period before reloading
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Reloaded is signalled after each successful reload
func (w *Watcher) Reloaded() <-chan struct{} {
	return w.reloaded
}

// Run blocks until ctx is cancelled or the watcher fails
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	target := filepath.Clean(w.store.Path(w.name))
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				pending = time.After(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("File watcher error", "error", err)

		case <-pending:
			pending = nil
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	s, err := w.store.Load(ctx, w.name)
	if err != nil {
		w.log.Error("Model reload failed, keeping current model", "name", w.name, "error", err)
		return
	}
	if err := w.target.Replace(s); err != nil {
		w.log.Error("Model reload rejected", "name", w.name, "error", err)
		return
	}
	w.log.Info("Model reloaded", "name", w.name, "vocabulary", s.VocabularySize())

	select {
	case w.reloaded <- struct{}{}:
	default:
	}
}
