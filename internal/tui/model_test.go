package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/questionbank"
	"github.com/abhisek/intervue/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(keyPress(r))
	}
	return m
}

// exec runs a command that talks to the machine and feeds its message back.
func exec(t *testing.T, m tea.Model, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	return m.Update(cmd())
}

func phaseOf(m tea.Model) interview.Phase {
	return m.(Model).view.Phase
}

func oneQuestion() questionbank.Static {
	return questionbank.Static{{ID: "q1", Text: "What does useEffect do?", Difficulty: interview.DifficultyEasy, TimeLimitSeconds: 20}}
}

func newMachine(mem *store.Memory) *interview.Machine {
	return interview.Open(context.Background(), mem,
		interview.WithClock(func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }))
}

func fillIntake(t *testing.T, m tea.Model, email string) (tea.Model, tea.Cmd) {
	t.Helper()
	m = typeText(m, "Ada")
	m, _ = m.Update(specialKey(tea.KeyTab))
	m = typeText(m, email)
	m, _ = m.Update(specialKey(tea.KeyTab))
	m = typeText(m, "5550100")
	return m.Update(specialKey(tea.KeyEnter))
}

func TestIntakeStartsInterview(t *testing.T) {
	mc := newMachine(store.NewMemory())
	var m tea.Model = New(context.Background(), Options{Machine: mc})
	assert.Equal(t, interview.PhaseIdle, phaseOf(m))

	m, cmd := fillIntake(t, m, "ada@example.com")
	m, _ = exec(t, m, cmd)

	require.Equal(t, interview.PhaseActive, phaseOf(m))
	v := mc.View()
	assert.Equal(t, "Ada", v.State.CandidateInfo.Name)
	assert.Len(t, v.State.Questions, 6)
	assert.Contains(t, m.(Model).content(100), v.State.Questions[0].Text)
}

func TestIntakeShowsValidationError(t *testing.T) {
	mc := newMachine(store.NewMemory())
	var m tea.Model = New(context.Background(), Options{Machine: mc})

	m, cmd := fillIntake(t, m, "not-an-email")
	m, _ = exec(t, m, cmd)

	assert.Equal(t, interview.PhaseIdle, phaseOf(m))
	assert.Contains(t, m.(Model).errMsg, "email")
	assert.False(t, m.(Model).busy)
}

func TestTickStepsCountdown(t *testing.T) {
	mc := newMachine(store.NewMemory())
	var m tea.Model = New(context.Background(), Options{Machine: mc, Questions: oneQuestion()})
	m, cmd := fillIntake(t, m, "ada@example.com")
	m, _ = exec(t, m, cmd)

	m, cmd = m.Update(tickMsg(time.Now()))
	m, _ = exec(t, m, cmd)
	assert.Equal(t, 19, m.(Model).view.State.TimeRemainingSeconds)
	assert.Equal(t, 19, mc.View().State.TimeRemainingSeconds)
}

func TestPauseStopsCountdown(t *testing.T) {
	mc := newMachine(store.NewMemory())
	var m tea.Model = New(context.Background(), Options{Machine: mc, Questions: oneQuestion()})
	m, cmd := fillIntake(t, m, "ada@example.com")
	m, _ = exec(t, m, cmd)

	m, cmd = m.Update(tea.KeyPressMsg{Code: 'p', Mod: tea.ModCtrl})
	m, _ = exec(t, m, cmd)
	assert.False(t, m.(Model).view.State.IsTimerRunning)
	assert.Contains(t, m.(Model).content(100), "paused")

	// A tick while paused only re-arms the ticker.
	m, _ = m.Update(tickMsg(time.Now()))
	assert.Equal(t, 20, mc.View().State.TimeRemainingSeconds)
}

func TestAnswerThenScoreThenRestart(t *testing.T) {
	mc := newMachine(store.NewMemory())
	var m tea.Model = New(context.Background(), Options{Machine: mc, Questions: oneQuestion()})
	m, cmd := fillIntake(t, m, "ada@example.com")
	m, _ = exec(t, m, cmd)

	m = typeText(m, "side-effects")
	m, cmd = m.Update(specialKey(tea.KeyEnter))
	m, cmd = exec(t, m, cmd)
	require.Equal(t, interview.PhaseAwaitingScore, phaseOf(m))
	assert.Equal(t, "side-effects", mc.View().State.Answers[0].Text)

	// Reaching awaiting-score starts scoring on its own.
	m, _ = exec(t, m, cmd)
	require.Equal(t, interview.PhaseComplete, phaseOf(m))
	assert.Contains(t, m.(Model).content(100), "Final score")

	m, cmd = m.Update(keyPress('n'))
	m, _ = exec(t, m, cmd)
	assert.Equal(t, interview.PhaseIdle, phaseOf(m))
	assert.Empty(t, m.(Model).fields[fieldName].Value())
}

func TestTimeoutAdvancesView(t *testing.T) {
	mc := newMachine(store.NewMemory())
	var m tea.Model = New(context.Background(), Options{Machine: mc, Questions: questionbank.Static{
		{ID: "q1", Text: "First", Difficulty: interview.DifficultyEasy, TimeLimitSeconds: 1},
		{ID: "q2", Text: "Second", Difficulty: interview.DifficultyEasy, TimeLimitSeconds: 1},
	}})
	m, cmd := fillIntake(t, m, "ada@example.com")
	m, _ = exec(t, m, cmd)
	m = typeText(m, "draft")

	m, cmd = m.Update(tickMsg(time.Now()))
	m, _ = exec(t, m, cmd)

	st := m.(Model).view.State
	assert.Equal(t, 1, st.CurrentQuestionIndex)
	assert.Equal(t, interview.NoAnswerText, st.Answers[0].Text)
	assert.Empty(t, m.(Model).answer.Value(), "input is cleared for the next question")
}

func TestWelcomeBackContinue(t *testing.T) {
	mem := store.NewMemory()
	first := newMachine(mem)
	ctx := context.Background()
	_, err := first.SetCandidateInfo(ctx, interview.CandidateInfo{Name: "Ada", Email: "ada@example.com", Phone: "1"})
	require.NoError(t, err)
	_, err = first.StartInterview(ctx, oneQuestion())
	require.NoError(t, err)

	mc := newMachine(mem)
	var m tea.Model = New(ctx, Options{Machine: mc})
	require.Equal(t, interview.PhaseSuspended, phaseOf(m))
	assert.Contains(t, m.(Model).content(100), "Welcome back, Ada")

	// Keys other than the menu's do nothing while suspended.
	m, cmd := m.Update(keyPress('x'))
	assert.Nil(t, cmd)

	m, cmd = m.Update(specialKey(tea.KeyEnter))
	m, _ = exec(t, m, cmd)
	assert.Equal(t, interview.PhaseActive, phaseOf(m))
	assert.True(t, mc.View().State.IsTimerRunning)
}

func TestWelcomeBackRestart(t *testing.T) {
	mem := store.NewMemory()
	first := newMachine(mem)
	ctx := context.Background()
	_, err := first.SetCandidateInfo(ctx, interview.CandidateInfo{Name: "Ada", Email: "ada@example.com", Phone: "1"})
	require.NoError(t, err)
	_, err = first.StartInterview(ctx, oneQuestion())
	require.NoError(t, err)

	var m tea.Model = New(ctx, Options{Machine: newMachine(mem)})
	m, _ = m.Update(specialKey(tea.KeyDown))
	m, cmd := m.Update(specialKey(tea.KeyEnter))
	m, _ = exec(t, m, cmd)
	assert.Equal(t, interview.PhaseIdle, phaseOf(m))
}

func TestStatusLine(t *testing.T) {
	mc := newMachine(store.NewMemory())
	var m tea.Model = New(context.Background(), Options{Machine: mc, Questions: oneQuestion()})
	m, cmd := fillIntake(t, m, "ada@example.com")
	m, _ = exec(t, m, cmd)

	status := m.(Model).status()
	assert.True(t, strings.HasPrefix(status, "Ada · Q 1/1"), status)
}

func TestScoringStartedByInitIsTracked(t *testing.T) {
	ctx := context.Background()
	mc := newMachine(store.NewMemory())
	_, err := mc.SetCandidateInfo(ctx, interview.CandidateInfo{Name: "Ada", Email: "ada@example.com", Phone: "1"})
	require.NoError(t, err)
	qs, err := oneQuestion().Questions(ctx)
	require.NoError(t, err)
	_, err = mc.StartInterview(ctx, qs)
	require.NoError(t, err)
	_, err = mc.HandleTimeout(ctx)
	require.NoError(t, err)

	model := New(ctx, Options{Machine: mc})
	require.Equal(t, interview.PhaseAwaitingScore, model.view.Phase)
	assert.True(t, model.scoring)
	require.NotNil(t, model.Init())

	// A view arriving while scoring runs must not start a second scorer.
	var m tea.Model = model
	m, cmd := m.Update(viewMsg{View: mc.View()})
	assert.Nil(t, cmd)
	assert.True(t, m.(Model).scoring)
}
