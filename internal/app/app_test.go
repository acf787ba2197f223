package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intervue/internal/config"
	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/llm"
	"github.com/abhisek/intervue/internal/scoring"
)

func baseConfig(store string) config.Config {
	return config.Config{
		Store:             store,
		StorageKey:        interview.DefaultStorageKey,
		SnapshotRetention: 3,
		Scorer:            config.ScorerHeuristic,
		RedisPrefix:       "test",
	}
}

var candidate = interview.CandidateInfo{Name: "Ada", Email: "ada@example.com", Phone: "1"}

func startSession(t *testing.T, a *App) {
	t.Helper()
	ctx := context.Background()
	_, err := a.Machine.SetCandidateInfo(ctx, candidate)
	require.NoError(t, err)
	qs, err := a.Questions.Questions(ctx)
	require.NoError(t, err)
	_, err = a.Machine.StartInterview(ctx, qs)
	require.NoError(t, err)
}

func TestOpenSQLiteResumesAcrossProcesses(t *testing.T) {
	cfg := baseConfig(config.StoreSQLite)
	cfg.DBPath = filepath.Join(t.TempDir(), "nested", "intervue.db")
	ctx := context.Background()

	a, err := Open(ctx, cfg, nil, Options{})
	require.NoError(t, err)
	startSession(t, a)
	require.NoError(t, a.Close())

	b, err := Open(ctx, cfg, nil, Options{})
	require.NoError(t, err)
	defer b.Close()
	v := b.Machine.View()
	assert.Equal(t, interview.PhaseSuspended, v.Phase)
	assert.Len(t, v.State.Questions, 6)
	assert.False(t, v.Degraded)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig(config.StoreRedis)
	cfg.RedisAddr = mr.Addr()
	ctx := context.Background()

	a, err := Open(ctx, cfg, nil, Options{})
	require.NoError(t, err)
	startSession(t, a)
	require.NoError(t, a.Close())

	b, err := Open(ctx, cfg, nil, Options{})
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, interview.PhaseSuspended, b.Machine.View().Phase)
}

func TestOpenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig(config.StoreRedis)
	cfg.RedisAddr = mr.Addr()
	mr.Close()

	_, err := Open(context.Background(), cfg, nil, Options{})
	assert.Error(t, err)
}

func TestOpenMemoryWithMetricsAndListener(t *testing.T) {
	var seen []interview.Phase
	a, err := Open(context.Background(), baseConfig(config.StoreMemory), nil, Options{
		Registry:  prometheus.NewRegistry(),
		Listeners: []interview.Listener{func(v interview.View) { seen = append(seen, v.Phase) }},
	})
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Metrics)
	startSession(t, a)
	assert.Equal(t, []interview.Phase{interview.PhaseAwaitingStart, interview.PhaseActive}, seen)
}

func TestScorerSelection(t *testing.T) {
	ctx := context.Background()

	a, err := Open(ctx, baseConfig(config.StoreMemory), nil, Options{})
	require.NoError(t, err)
	s, err := a.Scorer(ctx)
	require.NoError(t, err)
	assert.IsType(t, scoring.Heuristic{}, s)

	cfg := baseConfig(config.StoreMemory)
	cfg.Scorer = config.ScorerLLM
	cfg.LLM = llm.Config{
		Provider:  llm.ProviderMock,
		MockReply: `{"score":64,"summary":"Solid on basics."}`,
		Retry:     llm.RetryConfig{MaxAttempts: 1},
	}
	a, err = Open(ctx, cfg, nil, Options{})
	require.NoError(t, err)
	s, err = a.Scorer(ctx)
	require.NoError(t, err)
	require.IsType(t, scoring.Fallback{}, s)

	startSession(t, a)
	for range 6 {
		_, err = a.Machine.HandleTimeout(ctx)
		require.NoError(t, err)
	}
	v, err := scoring.Finalize(ctx, a.Machine, s)
	require.NoError(t, err)
	require.NotNil(t, v.State.FinalScore)
	assert.Equal(t, 64.0, *v.State.FinalScore)
	assert.Equal(t, "Solid on basics.", *v.State.Summary)
}

func TestScorerMissingCredentials(t *testing.T) {
	cfg := baseConfig(config.StoreMemory)
	cfg.Scorer = config.ScorerLLM
	cfg.LLM = llm.Config{Provider: llm.ProviderAnthropic}

	a, err := Open(context.Background(), cfg, nil, Options{})
	require.NoError(t, err)
	_, err = a.Scorer(context.Background())
	assert.ErrorContains(t, err, "INTERVUE_ANTHROPIC_API_KEY")
}
