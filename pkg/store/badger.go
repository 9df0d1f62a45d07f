package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/zpam/nbspam/pkg/learning"
)

const badgerKeyPrefix = "model:"

// BadgerStore keeps model blobs in an embedded Badger database
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
	log    *slog.Logger
}

// NewBadgerStore opens (or creates) a Badger database in dir
func NewBadgerStore(dir string, log *slog.Logger) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}
	return &BadgerStore{db: db, ownsDB: true, log: orDiscard(log)}, nil
}

// NewBadgerStoreWithDB wraps a database owned by the caller
func NewBadgerStoreWithDB(db *badger.DB, log *slog.Logger) *BadgerStore {
	return &BadgerStore{db: db, log: orDiscard(log)}
}

// Save writes the blob under model:<name>
func (s *BadgerStore) Save(ctx context.Context, name string, state *learning.ModelState) error {
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

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+name), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save model to badger: %w", err)
	}

	s.log.Debug("Model saved", "backend", "badger", "key", badgerKeyPrefix+name, "bytes", len(data))
	return nil
}

// Load reads and decodes name
func (s *BadgerStore) Load(ctx context.Context, name string) (*learning.ModelState, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model from badger: %w", err)
	}
	return Decode(data)
}

// List returns the names of every stored model
func (s *BadgerStore) List(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			names = append(names, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	return names, nil
}

// Close closes the database if the store opened it
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
