package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/intervue/internal/store"
)

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	first, err := mock.Generate(context.Background(), Request{System: "sys"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first.Content) != `{"a":1}` || first.Usage.TotalTokens != 15 {
		t.Errorf("first = %s %+v", first.Content, first.Usage)
	}
	second, _ := mock.Generate(context.Background(), Request{})
	if string(second.Content) != `{"b":2}` {
		t.Errorf("second = %s", second.Content)
	}
	if mock.CallCount() != 2 || mock.Calls[0].System != "sys" {
		t.Errorf("calls = %+v", mock.Calls)
	}

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("empty queue: error = %T", err)
	}
}

func TestMockProvider_FallbackAndSchema(t *testing.T) {
	mock := NewMockProvider()
	mock.Fallback = json.RawMessage(`{"score":50,"summary":"ok"}`)

	for i := 0; i < 2; i++ {
		if _, err := mock.Generate(context.Background(), Request{Schema: verdictSchema()}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	mock.AddResponse(MockResponse{Content: json.RawMessage(`{"score":50}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: verdictSchema()})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("error = %v, want schema rejection", err)
	}
}

func TestContextLabels(t *testing.T) {
	ctx := context.Background()
	if PurposeFrom(ctx) != "unknown" || SessionFrom(ctx) != "" {
		t.Fatal("unexpected defaults")
	}
	ctx = WithSession(WithPurpose(ctx, "interview-score"), "s-1")
	if PurposeFrom(ctx) != "interview-score" || SessionFrom(ctx) != "s-1" {
		t.Errorf("purpose=%q session=%q", PurposeFrom(ctx), SessionFrom(ctx))
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, "INTERVUE_ANTHROPIC_API_KEY"},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k"}}, ""},
		{"openai without key", Config{Provider: ProviderOpenAI}, "INTERVUE_OPENAI_API_KEY"},
		{"gemini without key", Config{Provider: ProviderGemini}, "INTERVUE_GEMINI_API_KEY"},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "k"}}, ""},
		{"mock", Config{Provider: ProviderMock}, ""},
		{"unknown", Config{Provider: "llama"}, "unknown LLM provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func clearVendorKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	clearVendorKeys(t)
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != ProviderAnthropic || cfg.Anthropic.Model != "claude-haiku" {
		t.Errorf("provider=%q model=%q", cfg.Provider, cfg.Anthropic.Model)
	}
	if cfg.Timeout != 30*time.Second || cfg.Retry.MaxAttempts != 3 || cfg.Retry.Multiplier != 2 {
		t.Errorf("timeout=%s retry=%+v", cfg.Timeout, cfg.Retry)
	}
	if cfg.OpenRouter.BaseURL != defaultOpenRouterBaseURL {
		t.Errorf("openrouter base = %q", cfg.OpenRouter.BaseURL)
	}
}

func TestConfigFromEnv_Explicit(t *testing.T) {
	clearVendorKeys(t)
	t.Setenv("INTERVUE_LLM_PROVIDER", "openai")
	t.Setenv("INTERVUE_OPENAI_API_KEY", "sk-explicit")
	t.Setenv("INTERVUE_OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("GEMINI_API_KEY", "ignored")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-explicit" || cfg.OpenAI.Model != "gpt-4.1-mini" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Gemini.APIKey != "" {
		t.Error("vendor keys must not be probed when a provider is set")
	}
}

func TestConfigFromEnv_DiscoversVendorKey(t *testing.T) {
	clearVendorKeys(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != ProviderGemini || cfg.Gemini.APIKey != "g-key" {
		t.Errorf("provider=%q key=%q", cfg.Provider, cfg.Gemini.APIKey)
	}
}

func TestConfigFromEnv_BadDuration(t *testing.T) {
	t.Setenv("INTERVUE_LLM_TIMEOUT", "soon")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewProvider_Mock(t *testing.T) {
	events := store.NewMemory()
	cfg := Config{
		Provider:  ProviderMock,
		MockReply: `{"score":75,"summary":"mock"}`,
		Retry:     RetryConfig{MaxAttempts: 1},
	}
	p, err := NewProvider(context.Background(), cfg, events, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := WithSession(WithPurpose(context.Background(), "interview-score"), "s-9")
	resp, err := p.Generate(ctx, Request{Schema: verdictSchema()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(resp.Content) != `{"score":75,"summary":"mock"}` {
		t.Errorf("content = %s", resp.Content)
	}

	got, err := events.List(context.Background(), "s-9", store.QueryOpts{})
	if err != nil || len(got) != 1 || got[0].Action != store.ActionLLMRequest {
		t.Fatalf("events = %+v, err = %v", got, err)
	}
}

func TestNewProvider_RejectsMissingKey(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: ProviderOpenAI}, nil, nil)
	if err == nil {
		t.Fatal("expected validation error")
	}
}

type failingEvents struct{}

func (failingEvents) Append(context.Context, store.Event) error { return errors.New("disk full") }
func (failingEvents) List(context.Context, string, store.QueryOpts) ([]store.Event, error) {
	return nil, nil
}

func TestLoggingProvider_RecordsCallData(t *testing.T) {
	events := store.NewMemory()
	core, logs := observer.New(zap.DebugLevel)
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`), Usage: Usage{InputTokens: 1000, OutputTokens: 200}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}},
	)
	p := WithLogging(mock, ProviderMock, events, zap.New(core))
	ctx := WithPurpose(context.Background(), "interview-score")

	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	got, _ := events.List(context.Background(), "", store.QueryOpts{})
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	var ok, failed store.LLMRequestEventData
	_ = json.Unmarshal([]byte(got[0].Detail), &ok)
	_ = json.Unmarshal([]byte(got[1].Detail), &failed)
	if !ok.Success || ok.InputTokens != 1000 || ok.Purpose != "interview-score" || ok.Provider != ProviderMock {
		t.Errorf("success event = %+v", ok)
	}
	if failed.Success || !strings.Contains(failed.ErrorMessage, "slow down") {
		t.Errorf("failure event = %+v", failed)
	}

	if logs.FilterMessage("llm request failed").Len() != 1 {
		t.Error("expected a warning for the failed call")
	}
}

func TestLoggingProvider_AuditFailureDoesNotFailCall(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), ProviderMock, failingEvents{}, zap.New(core))
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.FilterMessage("record llm request event").Len() != 1 {
		t.Error("expected audit failure to be logged")
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	if got := c.Cost(1_000_000, 1_000_000); got < 0.749 || got > 0.751 {
		t.Errorf("cost = %f, want 0.75", got)
	}
	if LookupCost("mock") != nil {
		t.Error("mock should have no pricing")
	}
}
