package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zpam/nbspam/pkg/config"
	"github.com/zpam/nbspam/pkg/learning"
)

// RedisStore keeps each model blob under <prefix>:model:<name> with a
// metadata hash at <prefix>:meta:<name>.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	log     *slog.Logger
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg config.RedisStoreConfig, log *slog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	if cfg.DB > 0 {
		opt.DB = cfg.DB
	}
	client := redis.NewClient(opt)

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis connection failed: %w", err)
	}

	return &RedisStore{client: client, prefix: cfg.KeyPrefix, timeout: timeout, log: orDiscard(log)}, nil
}

func (s *RedisStore) modelKey(name string) string {
	return fmt.Sprintf("%s:model:%s", s.prefix, name)
}

func (s *RedisStore) metaKey(name string) string {
	return fmt.Sprintf("%s:meta:%s", s.prefix, name)
}

// Save writes the blob and its metadata in one transaction
func (s *RedisStore) Save(ctx context.Context, name string, state *learning.ModelState) error {
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

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.modelKey(name), data, 0)
		pipe.HSet(ctx, s.metaKey(name),
			"id", env.ID,
			"version", env.Version,
			"saved_at", env.SavedAt.Unix(),
			"vocabulary", state.VocabularySize())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save model to Redis: %w", err)
	}

	s.log.Debug("Model saved", "backend", "redis", "key", s.modelKey(name), "bytes", len(data))
	return nil
}

// Load fetches and decodes name
func (s *RedisStore) Load(ctx context.Context, name string) (*learning.ModelState, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.modelKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.modelKey(name))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model from Redis: %w", err)
	}
	return Decode(data)
}

// Delete removes name and its metadata
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.modelKey(name), s.metaKey(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
