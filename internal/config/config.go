// Package config loads process settings from INTERVUE_* environment
// variables. Command-line flags override individual fields afterwards.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/llm"
)

// Storage backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Scorers.
const (
	ScorerHeuristic = "heuristic"
	ScorerLLM       = "llm"
)

type Config struct {
	// DBPath is the SQLite file. Empty means the XDG data directory.
	DBPath string `env:"INTERVUE_DB"`
	Store  string `env:"INTERVUE_STORE" envDefault:"sqlite"`

	RedisAddr   string `env:"INTERVUE_REDIS_ADDR"   envDefault:"localhost:6379"`
	RedisPrefix string `env:"INTERVUE_REDIS_PREFIX" envDefault:"intervue"`

	StorageKey        string `env:"INTERVUE_STORAGE_KEY"        envDefault:"interview-storage"`
	SnapshotRetention int    `env:"INTERVUE_SNAPSHOT_RETENTION" envDefault:"5"`

	// Questions is a YAML or JSON question file. Empty uses the built-in bank.
	Questions string `env:"INTERVUE_QUESTIONS"`

	HTTPAddr        string        `env:"INTERVUE_HTTP_ADDR"        envDefault:":8080"`
	AllowedOrigins  []string      `env:"INTERVUE_ALLOWED_ORIGINS"  envDefault:"http://localhost:5173" envSeparator:","`
	ShutdownTimeout time.Duration `env:"INTERVUE_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	LogLevel  string `env:"INTERVUE_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"INTERVUE_LOG_FORMAT" envDefault:"json"`

	Scorer string `env:"INTERVUE_SCORER" envDefault:"heuristic"`

	LLM llm.Config
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	// Reparse so vendor key discovery applies.
	llmCfg, err := llm.ConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.LLM = llmCfg

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated fields and bounds.
func (c *Config) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want sqlite, redis or memory)", c.Store)
	}

	c.Scorer = strings.ToLower(strings.TrimSpace(c.Scorer))
	switch c.Scorer {
	case ScorerHeuristic, ScorerLLM:
	default:
		return fmt.Errorf("unknown scorer %q (want heuristic or llm)", c.Scorer)
	}

	if c.Store == StoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("INTERVUE_REDIS_ADDR is required for the redis store")
	}
	if c.SnapshotRetention < 0 {
		return fmt.Errorf("snapshot retention must not be negative, got %d", c.SnapshotRetention)
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		c.StorageKey = interview.DefaultStorageKey
	}
	return nil
}
