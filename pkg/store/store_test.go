package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/zpam/nbspam/pkg/config"
	"github.com/zpam/nbspam/pkg/learning"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var probes = []learning.Input{
	learning.TokenSequence(nil),
	learning.TokenSequence([]string{"gratis"}),
	learning.TokenSequence([]string{"gana", "premio", "desconocido"}),
	learning.RawText("Reunión del equipo mañana"),
	learning.RawText("¡¡OFERTA exclusiva, gana dinero!!"),
	learning.RawText("palabras totalmente nuevas aquí"),
}

func trainedClassifier(t *testing.T) *learning.Classifier {
	t.Helper()
	c, err := learning.NewClassifier(0.7, learning.WithLogger(discard))
	require.NoError(t, err)
	require.NoError(t, c.Train(
		[][]string{
			{"gana", "dinero", "gratis"},
			{"oferta", "exclusiva", "premio", "gratis"},
			{"reunión", "equipo", "mañana"},
			{"informe", "proyecto"},
			{"documento", "adjunto", "proyecto"},
		},
		[]learning.Label{learning.Spam, learning.Spam, learning.Ham, learning.Ham, learning.Ham},
	))
	return c
}

func requireSamePredictions(t *testing.T, want, got *learning.Classifier) {
	t.Helper()
	for _, in := range probes {
		wl, wp, err := want.Classify(in)
		require.NoError(t, err)
		gl, gp, err := got.Classify(in)
		require.NoError(t, err)
		require.Equal(t, wl, gl)
		require.Equal(t, wp, gp)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	c := trainedClassifier(t)
	s, err := c.State()
	require.NoError(t, err)

	data, err := Encode(s)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, s.Alpha, decoded.Alpha)
	require.Equal(t, s.PriorSpam, decoded.PriorSpam)
	require.Equal(t, s.LogPriorHam, decoded.LogPriorHam)
	require.Equal(t, s.SpamWordCounts, decoded.SpamWordCounts)
	require.Equal(t, s.HamWordCounts, decoded.HamWordCounts)
	require.Equal(t, s.Vocabulary, decoded.Vocabulary)
	require.Equal(t, s.CondLogSpam, decoded.CondLogSpam)
	require.Equal(t, s.CondLogHam, decoded.CondLogHam)
	require.Equal(t, s.SpamMessages, decoded.SpamMessages)
	require.Equal(t, s.HamMessages, decoded.HamMessages)
	require.True(t, decoded.CountsExact)

	restored, err := learning.FromState(decoded)
	require.NoError(t, err)
	requireSamePredictions(t, c, restored)
}

func TestCodecNegativeInfinityPrior(t *testing.T) {
	c, err := learning.NewClassifier(1.0)
	require.NoError(t, err)
	require.NoError(t, c.Train([][]string{{"solo", "spam"}}, []learning.Label{learning.Spam}))
	s, err := c.State()
	require.NoError(t, err)

	data, err := Encode(s)
	require.NoError(t, err)
	require.Contains(t, string(data), "-Inf")

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.True(t, math.IsInf(decoded.LogPriorHam, -1))
	require.Equal(t, 0.0, decoded.PriorHam)
}

func TestCodecRejectsUntrained(t *testing.T) {
	_, err := Encode(nil)
	require.ErrorIs(t, err, learning.ErrInvalidState)

	_, err = Encode(&learning.ModelState{Alpha: 1})
	require.ErrorIs(t, err, learning.ErrInvalidState)
}

const v1Blob = `{
  "format": "nbspam-model",
  "version": 1,
  "model": {
    "alpha": 1,
    "prior_spam": 0.5,
    "prior_ham": 0.5,
    "log_prior_spam": -0.6931471805599453,
    "log_prior_ham": -0.6931471805599453,
    "spam_word_counts": {"a": 1},
    "ham_word_counts": {"b": 1},
    "total_spam_words": 1,
    "total_ham_words": 1,
    "vocabulary": ["a", "b"],
    "cond_log_spam": {"a": -0.4054651081081644, "b": -1.0986122886681098},
    "cond_log_ham": {"a": -1.0986122886681098, "b": -0.4054651081081644},
    "trained": true
  }
}`

func TestDecodeSchemaV1(t *testing.T) {
	s, err := Decode([]byte(v1Blob))
	require.NoError(t, err)
	require.False(t, s.CountsExact)
	require.Equal(t, 2, s.VocabularySize())

	c, err := learning.FromState(s)
	require.NoError(t, err)
	label, err := c.Predict(learning.TokenSequence([]string{"a"}))
	require.NoError(t, err)
	require.Equal(t, learning.Spam, label)

	// legacy models still accept updates through the estimated priors
	require.NoError(t, c.IncrementalUpdate([][]string{{"c"}}, []learning.Label{learning.Ham}))
	after, err := c.State()
	require.NoError(t, err)
	require.InDelta(t, 1.0, after.PriorSpam+after.PriorHam, 1e-9)
}

func TestDecodeRejectsBadBlobs(t *testing.T) {
	c := trainedClassifier(t)
	s, err := c.State()
	require.NoError(t, err)
	good, err := Encode(s)
	require.NoError(t, err)

	mutate := func(fn func(env map[string]any)) []byte {
		var env map[string]any
		require.NoError(t, json.Unmarshal(good, &env))
		fn(env)
		out, err := json.Marshal(env)
		require.NoError(t, err)
		return out
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"not json", []byte("not json at all")},
		{"truncated", good[:len(good)/2]},
		{"wrong format", mutate(func(env map[string]any) { env["format"] = "pickle" })},
		{"future version", mutate(func(env map[string]any) { env["version"] = 99 })},
		{"missing model", mutate(func(env map[string]any) { delete(env, "model") })},
		{"untrained", mutate(func(env map[string]any) {
			env["model"].(map[string]any)["trained"] = false
		})},
		{"table missing token", mutate(func(env map[string]any) {
			delete(env["model"].(map[string]any)["cond_log_spam"].(map[string]any), "gratis")
		})},
		{"v2 without counts", mutate(func(env map[string]any) {
			delete(env["model"].(map[string]any), "spam_messages")
		})},
		{"priors do not sum", mutate(func(env map[string]any) {
			env["model"].(map[string]any)["prior_spam"] = 0.9
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.ErrorIs(t, err, ErrDeserialization)
		})
	}
}

func testStoreContract(t *testing.T, st Store) {
	ctx := context.Background()

	_, err := st.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	c := trainedClassifier(t)
	require.NoError(t, SaveClassifier(ctx, st, "modelo", c))

	restored, err := LoadClassifier(ctx, st, "modelo")
	require.NoError(t, err)
	requireSamePredictions(t, c, restored)

	// overwrite with an updated model
	require.NoError(t, c.IncrementalUpdate([][]string{{"nuevo", "premio"}}, []learning.Label{learning.Spam}))
	require.NoError(t, SaveClassifier(ctx, st, "modelo", c))
	restored, err = LoadClassifier(ctx, st, "modelo")
	require.NoError(t, err)
	requireSamePredictions(t, c, restored)

	untrained, err := learning.NewClassifier(1.0)
	require.NoError(t, err)
	require.ErrorIs(t, SaveClassifier(ctx, st, "modelo", untrained), learning.ErrInvalidState)

	require.ErrorIs(t, st.Save(ctx, "../escape", nil), learning.ErrInvalidArgument)
}

func TestFileStore(t *testing.T) {
	st, err := NewFileStore(filepath.Join(t.TempDir(), "modelos"), discard)
	require.NoError(t, err)
	defer st.Close()
	testStoreContract(t, st)

	entries, err := os.ReadDir(st.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStoreCorruptFile(t *testing.T) {
	st, err := NewFileStore(t.TempDir(), discard)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(st.Path("roto"), []byte("{\"format\":"), 0644))

	_, err = st.Load(context.Background(), "roto")
	require.ErrorIs(t, err, ErrDeserialization)
}

func TestBadgerStore(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	st := NewBadgerStoreWithDB(db, discard)
	testStoreContract(t, st)

	names, err := st.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"modelo"}, names)
}

func TestBadgerStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	st, err := NewBadgerStore(dir, discard)
	require.NoError(t, err)

	c := trainedClassifier(t)
	require.NoError(t, SaveClassifier(context.Background(), st, "modelo", c))
	require.NoError(t, st.Close())

	reopened, err := NewBadgerStore(dir, discard)
	require.NoError(t, err)
	defer reopened.Close()
	restored, err := LoadClassifier(context.Background(), reopened, "modelo")
	require.NoError(t, err)
	requireSamePredictions(t, c, restored)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	st, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "db", "models.db"), discard)
	require.NoError(t, err)
	defer st.Close()
	testStoreContract(t, st)

	revs, err := st.History(ctx, "modelo")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	require.NotEqual(t, revs[0].ID, revs[1].ID)
	require.Equal(t, CurrentSchema, revs[0].Version)

	older, err := st.LoadRevision(ctx, "modelo", revs[1].ID)
	require.NoError(t, err)
	newer, err := st.Load(ctx, "modelo")
	require.NoError(t, err)
	require.Greater(t, newer.VocabularySize(), older.VocabularySize())

	_, err = st.LoadRevision(ctx, "modelo", "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func isRedisAvailable() bool {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use test database
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return client.Ping(ctx).Err() == nil
}

func TestRedisStore(t *testing.T) {
	if !isRedisAvailable() {
		t.Skip("Redis not available, skipping test")
	}

	ctx := context.Background()
	st, err := NewRedisStore(ctx, config.RedisStoreConfig{
		URL:       "redis://localhost:6379",
		KeyPrefix: "nbspam:test",
		DB:        1,
		TimeoutMs: 2000,
	}, discard)
	require.NoError(t, err)
	defer st.Close()
	defer st.Delete(ctx, "modelo")

	testStoreContract(t, st)
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := config.DefaultConfig().Store
	cfg.File.Dir = filepath.Join(dir, "files")
	cfg.SQLite.Path = filepath.Join(dir, "models.db")
	cfg.Badger.Dir = filepath.Join(dir, "badger")

	for backend, want := range map[string]any{
		"file":   &FileStore{},
		"sqlite": &SQLiteStore{},
		"badger": &BadgerStore{},
	} {
		cfg.Backend = backend
		st, err := Open(ctx, cfg, discard)
		require.NoError(t, err, backend)
		require.IsType(t, want, st)
		require.NoError(t, st.Close())
	}

	cfg.Backend = "s3"
	_, err := Open(ctx, cfg, discard)
	require.Error(t, err)
}

func TestWatcherReloadsModel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := NewFileStore(t.TempDir(), discard)
	require.NoError(t, err)

	live := trainedClassifier(t)
	require.NoError(t, SaveClassifier(ctx, st, "modelo", live))

	w, err := NewWatcher(st, "modelo", live, discard)
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	retrained, err := learning.NewClassifier(1.0)
	require.NoError(t, err)
	require.NoError(t, retrained.Train([][]string{{"x"}, {"y"}}, []learning.Label{learning.Spam, learning.Ham}))
	require.NoError(t, SaveClassifier(ctx, st, "modelo", retrained))

	select {
	case <-w.Reloaded():
	case <-time.After(5 * time.Second):
		t.Fatal("model was not reloaded")
	}

	s, err := live.State()
	require.NoError(t, err)
	require.Equal(t, 2, s.VocabularySize())
	require.Equal(t, 1.0, live.Alpha())

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherKeepsModelOnCorruptFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := NewFileStore(t.TempDir(), discard)
	require.NoError(t, err)

	live := trainedClassifier(t)
	require.NoError(t, SaveClassifier(ctx, st, "modelo", live))
	before, err := live.State()
	require.NoError(t, err)

	w, err := NewWatcher(st, "modelo", live, discard)
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(st.Path("modelo"), []byte("garbage"), 0644))

	select {
	case <-w.Reloaded():
		t.Fatal("corrupt model must not be reloaded")
	case <-time.After(300 * time.Millisecond):
	}

	after, err := live.State()
	require.NoError(t, err)
	require.Same(t, before, after)
}
