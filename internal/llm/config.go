package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the scoring model.
type Config struct {
	Provider string        `env:"INTERVUE_LLM_PROVIDER" envDefault:"anthropic"`
	Timeout  time.Duration `env:"INTERVUE_LLM_TIMEOUT"  envDefault:"30s"`

	// MockReply is what the mock provider answers with, for demos and
	// end-to-end tests without network access.
	MockReply string `env:"INTERVUE_LLM_MOCK_REPLY"`

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig
}

type AnthropicConfig struct {
	APIKey string `env:"INTERVUE_ANTHROPIC_API_KEY"`
	Model  string `env:"INTERVUE_ANTHROPIC_MODEL" envDefault:"claude-haiku"`
}

type OpenAIConfig struct {
	APIKey  string `env:"INTERVUE_OPENAI_API_KEY"`
	Model   string `env:"INTERVUE_OPENAI_MODEL"    envDefault:"gpt-4o-mini"`
	BaseURL string `env:"INTERVUE_OPENAI_BASE_URL"`
}

type GeminiConfig struct {
	APIKey string `env:"INTERVUE_GEMINI_API_KEY"`
	Model  string `env:"INTERVUE_GEMINI_MODEL" envDefault:"gemini-flash"`
}

type OpenRouterConfig struct {
	APIKey  string `env:"INTERVUE_OPENROUTER_API_KEY"`
	Model   string `env:"INTERVUE_OPENROUTER_MODEL"    envDefault:"google/gemini-2.0-flash-exp"`
	BaseURL string `env:"INTERVUE_OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
}

// RetryConfig is the backoff policy for transient failures.
type RetryConfig struct {
	MaxAttempts int           `env:"INTERVUE_LLM_MAX_ATTEMPTS" envDefault:"3"`
	InitialWait time.Duration `env:"INTERVUE_LLM_RETRY_WAIT"   envDefault:"1s"`
	MaxWait     time.Duration `env:"INTERVUE_LLM_RETRY_MAX"    envDefault:"10s"`
	Multiplier  float64       `env:"INTERVUE_LLM_RETRY_FACTOR" envDefault:"2"`
}

// ConfigFromEnv reads INTERVUE_* variables, applying defaults for anything
// unset. When no INTERVUE_LLM_PROVIDER is given, the conventional vendor
// key variables are probed so an existing ANTHROPIC_API_KEY just works.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse llm env: %w", err)
	}
	if _, set := os.LookupEnv("INTERVUE_LLM_PROVIDER"); !set {
		discover(&cfg)
	}
	return cfg, nil
}

// discover fills in the first vendor key found, leaving explicit INTERVUE_*
// keys alone.
func discover(cfg *Config) {
	probes := []struct {
		provider string
		envVar   string
		key      *string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY", &cfg.Anthropic.APIKey},
		{ProviderOpenAI, "OPENAI_API_KEY", &cfg.OpenAI.APIKey},
		{ProviderGemini, "GEMINI_API_KEY", &cfg.Gemini.APIKey},
		{ProviderOpenRouter, "OPENROUTER_API_KEY", &cfg.OpenRouter.APIKey},
	}
	for _, p := range probes {
		if *p.key != "" {
			cfg.Provider = p.provider
			return
		}
	}
	for _, p := range probes {
		if v, ok := os.LookupEnv(p.envVar); ok && v != "" {
			cfg.Provider = p.provider
			*p.key = v
			return
		}
	}
}

// Validate checks that the selected provider has credentials.
func (c Config) Validate() error {
	var key, envVar string
	switch c.Provider {
	case ProviderAnthropic:
		key, envVar = c.Anthropic.APIKey, "INTERVUE_ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		key, envVar = c.OpenAI.APIKey, "INTERVUE_OPENAI_API_KEY"
	case ProviderGemini:
		key, envVar = c.Gemini.APIKey, "INTERVUE_GEMINI_API_KEY"
	case ProviderOpenRouter:
		key, envVar = c.OpenRouter.APIKey, "INTERVUE_OPENROUTER_API_KEY"
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", envVar, c.Provider)
	}
	return nil
}
