// Package app assembles a session from configuration: storage backend,
// state machine, question source and scorer.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/abhisek/intervue/internal/config"
	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/llm"
	"github.com/abhisek/intervue/internal/metrics"
	"github.com/abhisek/intervue/internal/questionbank"
	"github.com/abhisek/intervue/internal/scoring"
	"github.com/abhisek/intervue/internal/store"
)

// App holds the wired dependencies for one process.
type App struct {
	Config    config.Config
	Log       *zap.Logger
	Machine   *interview.Machine
	Events    store.EventRepo
	Questions questionbank.Source
	Metrics   *metrics.Metrics

	scorer  scoring.Scorer
	closers []func() error
}

// Options tweak how the machine is opened.
type Options struct {
	// Registry receives the metrics collectors. Nil skips metrics.
	Registry *prometheus.Registry
	// Listeners are attached to the machine before it is opened.
	Listeners []interview.Listener
}

// Open connects the configured backend and rehydrates the session.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger, opts Options) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log, Questions: questionbank.New(cfg.Questions)}

	snapshots, events, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	a.Events = events

	mopts := []interview.Option{
		interview.WithEvents(events),
		interview.WithLogger(log),
		interview.WithStorageKey(cfg.StorageKey),
		interview.WithRetention(cfg.SnapshotRetention),
	}
	if opts.Registry != nil {
		a.Metrics = metrics.New(opts.Registry)
		mopts = append(mopts, interview.WithObserver(a.Metrics))
	}
	for _, l := range opts.Listeners {
		mopts = append(mopts, interview.WithListener(l))
	}
	a.Machine = interview.Open(ctx, snapshots, mopts...)
	return a, nil
}

func (a *App) openBackend(ctx context.Context) (store.SnapshotRepo, store.EventRepo, error) {
	switch a.Config.Store {
	case config.StoreMemory:
		mem := store.NewMemory()
		return mem, mem, nil

	case config.StoreRedis:
		rs, err := store.OpenRedis(ctx, a.Config.RedisAddr, a.Config.RedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis store: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		return rs, rs, nil

	default:
		path := a.Config.DBPath
		var err error
		if path == "" {
			path, err = store.DefaultDBPath()
		} else {
			err = store.EnsureDir(path)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		a.closers = append(a.closers, st.Close)
		return st.SnapshotRepo(), st.EventRepo(), nil
	}
}

// Scorer builds the configured scorer on first use, so commands that never
// score do not need model credentials.
func (a *App) Scorer(ctx context.Context) (scoring.Scorer, error) {
	if a.scorer != nil {
		return a.scorer, nil
	}
	switch a.Config.Scorer {
	case config.ScorerLLM:
		provider, err := llm.NewProvider(ctx, a.Config.LLM, a.Events, a.Log)
		if err != nil {
			return nil, fmt.Errorf("llm scorer: %w", err)
		}
		cfg := scoring.DefaultLLMConfig()
		cfg.Timeout = a.Config.LLM.Timeout
		a.scorer = scoring.Fallback{
			Primary:   scoring.NewLLM(provider, cfg),
			Secondary: scoring.Heuristic{},
			Log:       a.Log,
		}
	default:
		a.scorer = scoring.Heuristic{}
	}
	return a.scorer, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
