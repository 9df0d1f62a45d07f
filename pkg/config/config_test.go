package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"zero alpha", func(c *Config) { c.Model.Alpha = 0 }, "Alpha"},
		{"unknown language", func(c *Config) { c.Model.Language = "latin" }, "Language"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "s3" }, "Backend"},
		{"train ratio of one", func(c *Config) { c.Training.TrainRatio = 1 }, "TrainRatio"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "Level"},
		{"bad milter network", func(c *Config) { c.Milter.Network = "udp" }, "Network"},
		{"reject threshold above one", func(c *Config) { c.Milter.RejectThreshold = 1.5 }, "RejectThreshold"},
		{"model name with slash", func(c *Config) { c.Model.Name = "../x/y" }, "Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateHeaderPrefix(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Milter.SpamHeaderPrefix = ""
	require.Error(t, cfg.Validate())

	cfg.Milter.AddSpamHeaders = false
	require.NoError(t, cfg.Validate())
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Model.Alpha = 0.5
	cfg.Store.Backend = "sqlite"
	cfg.Training.TopWords = 20
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 0.5, loaded.Model.Alpha)
	require.Equal(t, "sqlite", loaded.Store.Backend)
	require.Equal(t, 20, loaded.Training.TopWords)
	require.Equal(t, cfg.Milter, loaded.Milter)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  alpha: 2.5\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2.5, cfg.Model.Alpha)
	require.Equal(t, "spanish", cfg.Model.Language)
	require.Equal(t, "file", cfg.Store.Backend)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0644))
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("NBSPAM_MODEL_ALPHA", "0.25")
	t.Setenv("NBSPAM_STORE_BACKEND", "badger")
	t.Setenv("NBSPAM_STORE_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("NBSPAM_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, 0.25, cfg.Model.Alpha)
	require.Equal(t, "badger", cfg.Store.Backend)
	require.Equal(t, "redis://cache:6379/2", cfg.Store.Redis.URL)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvironmentSplitWordKeys(t *testing.T) {
	t.Setenv("NBSPAM_STORE_SQLITE_PATH", "/var/lib/nbspam/models.db")
	t.Setenv("NBSPAM_MILTER_READ_TIMEOUT_MS", "5000")
	t.Setenv("NBSPAM_TRAINING_TRAIN_RATIO", "0.7")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "/var/lib/nbspam/models.db", cfg.Store.SQLite.Path)
	require.Equal(t, 5000, cfg.Milter.ReadTimeoutMs)
	require.Equal(t, 0.7, cfg.Training.TrainRatio)
}

func TestUnprefixedHostVariablesAreIgnored(t *testing.T) {
	t.Setenv("PATH", "/usr/local/bin:/usr/bin:/bin")
	t.Setenv("LANGUAGE", "en_US:en")
	t.Setenv("NAME", "host")
	t.Setenv("URL", "http://example.com")
	t.Setenv("FILE", "/tmp/other.log")
	t.Setenv("LEVEL", "verbose")
	t.Setenv("DIR", "/tmp")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	defaults := DefaultConfig()
	require.Equal(t, defaults.Store.SQLite.Path, cfg.Store.SQLite.Path)
	require.Equal(t, defaults.Model.Language, cfg.Model.Language)
	require.Equal(t, defaults.Model.Name, cfg.Model.Name)
	require.Equal(t, defaults.Store.Redis.URL, cfg.Store.Redis.URL)
	require.Equal(t, defaults.Store.File.Dir, cfg.Store.File.Dir)
	require.Equal(t, defaults.Logging, cfg.Logging)
}

func TestEnvironmentOverrideIsValidated(t *testing.T) {
	t.Setenv("NBSPAM_MODEL_ALPHA", "-1")
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	log.Info("hidden")
	log.Warn("shown", "k", "v")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.True(t, strings.HasPrefix(out, "{"))
	require.Contains(t, out, `"k":"v"`)
}
