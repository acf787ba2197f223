package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/intervue/internal/store"
)

// LoggingProvider records every call in the audit trail and the process log.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      *zap.Logger
}

// WithLogging decorates p. A nil repo or logger disables that sink.
func WithLogging(p Provider, providerName string, events store.EventRepo, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingProvider{inner: p, provider: providerName, events: events, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		if c := LookupCost(data.Model); c != nil {
			data.CostUSD = c.Cost(data.InputTokens, data.OutputTokens)
		}
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	fields := []zap.Field{
		zap.String("provider", data.Provider),
		zap.String("model", data.Model),
		zap.String("purpose", data.Purpose),
		zap.Int64("latency_ms", data.LatencyMs),
		zap.Int("input_tokens", data.InputTokens),
		zap.Int("output_tokens", data.OutputTokens),
	}
	if err != nil {
		l.log.Warn("llm request failed", append(fields, zap.Error(err))...)
	} else {
		l.log.Debug("llm request", fields...)
	}

	if l.events != nil {
		// Audit failures never fail the request.
		if logErr := l.events.Append(ctx, store.NewLLMRequestEvent(SessionFrom(ctx), data)); logErr != nil {
			l.log.Warn("record llm request event", zap.Error(logErr))
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
