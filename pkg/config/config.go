package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. NBSPAM_MODEL_ALPHA
const EnvPrefix = "NBSPAM"

// Config represents nbspam configuration
type Config struct {
	// Classifier settings
	Model ModelConfig `yaml:"model"`

	// Model persistence
	Store StoreConfig `yaml:"store"`

	// Training pipeline defaults
	Training TrainingConfig `yaml:"training"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`

	// Milter server settings
	Milter MilterConfig `yaml:"milter"`
}

// ModelConfig contains classifier parameters
type ModelConfig struct {
	Name     string  `yaml:"name" validate:"required,excludesall=/"`
	Alpha    float64 `yaml:"alpha" validate:"gt=0"`
	Language string  `yaml:"language" validate:"oneof=spanish english auto"`
}

// StoreConfig selects and configures the model store backend
type StoreConfig struct {
	// Backend selection: "file", "redis", "badger" or "sqlite"
	Backend string `yaml:"backend" validate:"oneof=file redis badger sqlite"`

	File   FileStoreConfig   `yaml:"file"`
	Redis  RedisStoreConfig  `yaml:"redis"`
	Badger BadgerStoreConfig `yaml:"badger"`
	SQLite SQLiteStoreConfig `yaml:"sqlite"`
}

// FileStoreConfig keeps one JSON file per model in Dir
type FileStoreConfig struct {
	Dir string `yaml:"dir" validate:"required"`
	// Reload the model when its file changes (milter only)
	Watch bool `yaml:"watch"`
}

// RedisStoreConfig contains Redis connection settings
type RedisStoreConfig struct {
	URL       string `yaml:"url" validate:"required"`
	KeyPrefix string `yaml:"key_prefix" split_words:"true" validate:"required"`
	DB        int    `yaml:"db" validate:"gte=0"`
	TimeoutMs int    `yaml:"timeout_ms" split_words:"true" validate:"gte=100"`
}

// BadgerStoreConfig contains the Badger data directory
type BadgerStoreConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

// SQLiteStoreConfig contains the SQLite database path
type SQLiteStoreConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// TrainingConfig contains dataset and evaluation defaults
type TrainingConfig struct {
	Dataset      string  `yaml:"dataset"`
	TrainRatio   float64 `yaml:"train_ratio" split_words:"true" validate:"gt=0,lt=1"`
	Seed         int64   `yaml:"seed"`
	TopWords     int     `yaml:"top_words" split_words:"true" validate:"gte=1"`
	ReportPath   string  `yaml:"report_path" split_words:"true"`
	ErrorSamples int     `yaml:"error_samples" split_words:"true" validate:"gte=0"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
	File   string `yaml:"file"` // empty = stderr
}

// MilterConfig contains milter server settings
type MilterConfig struct {
	// Network and address for milter socket
	Network string `yaml:"network" validate:"oneof=tcp unix"`
	Address string `yaml:"address" validate:"required"`

	// Connection settings
	ReadTimeoutMs  int `yaml:"read_timeout_ms" split_words:"true" validate:"gte=1000"`
	WriteTimeoutMs int `yaml:"write_timeout_ms" split_words:"true" validate:"gte=1000"`

	// Protocol options (what events to skip)
	SkipConnect bool `yaml:"skip_connect" split_words:"true"`
	SkipHelo    bool `yaml:"skip_helo" split_words:"true"`
	SkipRcpt    bool `yaml:"skip_rcpt" split_words:"true"`

	GracefulShutdownTimeoutMs int `yaml:"graceful_shutdown_timeout_ms" split_words:"true" validate:"gte=0"`

	// Messages with P(spam) >= RejectThreshold are rejected; 0 disables
	RejectThreshold float64 `yaml:"reject_threshold" split_words:"true" validate:"gte=0,lte=1"`
	RejectMessage   string  `yaml:"reject_message" split_words:"true"`

	// Header modifications
	AddSpamHeaders   bool   `yaml:"add_spam_headers" split_words:"true"`
	SpamHeaderPrefix string `yaml:"spam_header_prefix" split_words:"true"`
}

// DefaultConfig returns nbspam default configuration
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Name:     "modelo_entrenado",
			Alpha:    1.0,
			Language: "spanish",
		},
		Store: StoreConfig{
			Backend: "file",
			File: FileStoreConfig{
				Dir: "modelos",
			},
			Redis: RedisStoreConfig{
				URL:       "redis://localhost:6379",
				KeyPrefix: "nbspam",
				DB:        0,
				TimeoutMs: 5000,
			},
			Badger: BadgerStoreConfig{
				Dir: "modelos/badger",
			},
			SQLite: SQLiteStoreConfig{
				Path: "modelos/models.db",
			},
		},
		Training: TrainingConfig{
			Dataset:      "data/dataset_grande.csv",
			TrainRatio:   0.8,
			Seed:         42,
			TopWords:     15,
			ReportPath:   "",
			ErrorSamples: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Milter: MilterConfig{
			Network:                   "tcp",
			Address:                   "127.0.0.1:7357",
			ReadTimeoutMs:             10000,
			WriteTimeoutMs:            10000,
			GracefulShutdownTimeoutMs: 30000,
			RejectThreshold:           0.99,
			AddSpamHeaders:            true,
			SpamHeaderPrefix:          "X-NBSpam-",
		},
	}
}

// LoadConfig loads configuration from file, then applies .env and
// NBSPAM_* environment overrides. An empty path means defaults plus
// environment.
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// ApplyEnv loads a .env file if present and overrides fields from
// NBSPAM_* variables. Keys follow the field path, e.g.
// NBSPAM_STORE_SQLITE_PATH or NBSPAM_MILTER_READ_TIMEOUT_MS; unprefixed
// variables are never read. Variables already set in the process win over
// .env.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("failed to apply environment: %w", err)
	}
	return nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var validate = validator.New()

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if c.Milter.AddSpamHeaders && c.Milter.SpamHeaderPrefix == "" {
		return fmt.Errorf("milter spam_header_prefix cannot be empty when add_spam_headers is set")
	}

	return nil
}
