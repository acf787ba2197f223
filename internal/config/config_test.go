package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intervue/internal/llm"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"INTERVUE_DB", "INTERVUE_STORE", "INTERVUE_REDIS_ADDR", "INTERVUE_STORAGE_KEY",
		"INTERVUE_SNAPSHOT_RETENTION", "INTERVUE_QUESTIONS", "INTERVUE_HTTP_ADDR",
		"INTERVUE_LOG_LEVEL", "INTERVUE_SCORER", "INTERVUE_LLM_PROVIDER",
		"INTERVUE_ALLOWED_ORIGINS", "ANTHROPIC_API_KEY", "OPENAI_API_KEY",
		"GEMINI_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, ScorerHeuristic, cfg.Scorer)
	assert.Equal(t, "interview-storage", cfg.StorageKey)
	assert.Equal(t, 5, cfg.SnapshotRetention)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("INTERVUE_STORE", "Redis")
	t.Setenv("INTERVUE_REDIS_ADDR", "cache:6379")
	t.Setenv("INTERVUE_SNAPSHOT_RETENTION", "2")
	t.Setenv("INTERVUE_SCORER", "llm")
	t.Setenv("INTERVUE_STORAGE_KEY", "panel-b")
	t.Setenv("INTERVUE_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("INTERVUE_LLM_PROVIDER", "mock")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.SnapshotRetention)
	assert.Equal(t, ScorerLLM, cfg.Scorer)
	assert.Equal(t, "panel-b", cfg.StorageKey)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"unknown store", Config{Store: "postgres", Scorer: "heuristic"}, "unknown store"},
		{"unknown scorer", Config{Store: "memory", Scorer: "vibes"}, "unknown scorer"},
		{"redis without addr", Config{Store: "redis", Scorer: "heuristic"}, "INTERVUE_REDIS_ADDR"},
		{"negative retention", Config{Store: "memory", Scorer: "heuristic", SnapshotRetention: -1}, "retention"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDefaultsStorageKey(t *testing.T) {
	cfg := Config{Store: "memory", Scorer: "heuristic", StorageKey: "  "}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "interview-storage", cfg.StorageKey)
}
