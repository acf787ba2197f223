// Package tui is the terminal presenter for an interview session. It reads
// the machine's view, renders the screen for the current phase and turns
// key presses into machine operations.
package tui

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/questionbank"
	"github.com/abhisek/intervue/internal/scoring"
	"github.com/abhisek/intervue/internal/ui/components"
)

// Options wires the presenter to a session.
type Options struct {
	Machine   *interview.Machine
	Questions questionbank.Source
	Scorer    scoring.Scorer
	Log       *zap.Logger
}

// tickMsg fires once a second while the program runs.
type tickMsg time.Time

// stepMsg carries the outcome of one countdown step.
type stepMsg struct {
	Result interview.StepResult
	View   interview.View
	Err    error
}

// viewMsg carries the machine view after an operation.
type viewMsg struct {
	View   interview.View
	Err    error
	Scored bool
}

const (
	fieldName = iota
	fieldEmail
	fieldPhone
)

// Model is the root Bubble Tea model.
type Model struct {
	ctx  context.Context
	opts Options

	view          interview.View
	width, height int

	fields []components.TextField
	focus  int
	answer components.TextField
	resume components.Menu

	errMsg      string
	busy        bool
	scoring     bool
	scoreFailed bool
}

// New builds the model from the machine's current view.
func New(ctx context.Context, opts Options) Model {
	if opts.Questions == nil {
		opts.Questions = questionbank.Builtin{}
	}
	if opts.Scorer == nil {
		opts.Scorer = scoring.Heuristic{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	m := Model{
		ctx:  ctx,
		opts: opts,
		view: opts.Machine.View(),
		fields: []components.TextField{
			components.NewTextField("Full name", "Ada Lovelace", 80),
			components.NewTextField("Email", "ada@example.com", 120),
			components.NewTextField("Phone", "+1 555 0100", 32),
		},
		answer: components.NewTextField("Your answer", "Type your answer and press Enter", 0),
	}
	m.resume = components.NewMenu(
		components.Choice{Label: "Continue where I left off", Action: func() tea.Cmd { return m.resumeCmd(interview.ResumeContinue) }},
		components.Choice{Label: "Start over", Action: func() tea.Cmd { return m.resumeCmd(interview.ResumeRestart) }},
	)
	if c := m.view.State.CandidateInfo; c != nil {
		m.fields[fieldName].Model.SetValue(c.Name)
		m.fields[fieldEmail].Model.SetValue(c.Email)
		m.fields[fieldPhone].Model.SetValue(c.Phone)
	}
	m.fields[fieldName].Focus()
	m.answer.Focus()
	// Init starts scoring for a session that is already waiting on it.
	m.scoring = m.view.Phase == interview.PhaseAwaitingScore
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	switch m.view.Phase {
	case interview.PhaseIdle, interview.PhaseAwaitingStart:
		cmds = append(cmds, m.fields[fieldName].Focus())
	case interview.PhaseActive:
		cmds = append(cmds, m.answer.Focus())
	case interview.PhaseAwaitingScore:
		cmds = append(cmds, m.finalizeCmd())
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		if m.view.State.IsTimerRunning && !m.view.Suspended {
			return m, m.stepCmd()
		}
		return m, tick()

	case stepMsg:
		if msg.Err != nil {
			m.opts.Log.Debug("countdown step rejected", zap.Error(msg.Err))
		}
		var cmd tea.Cmd
		m, cmd = m.apply(msg.View)
		return m, tea.Batch(tick(), cmd)

	case viewMsg:
		m.busy = false
		if msg.Scored {
			m.scoring = false
			m.scoreFailed = msg.Err != nil
		}
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			m.view = msg.View
			return m, nil
		}
		m.errMsg = ""
		return m.apply(msg.View)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

// apply installs a new view, resetting per-question input when the
// question changes and kicking off scoring once the last question is done.
func (m Model) apply(v interview.View) (Model, tea.Cmd) {
	prev := m.view
	m.view = v

	if v.Phase == interview.PhaseActive &&
		(prev.Phase != interview.PhaseActive || prev.State.CurrentQuestionIndex != v.State.CurrentQuestionIndex) {
		m.answer.Reset()
		m.answer.Focus()
	}
	if v.Phase == interview.PhaseIdle && prev.Phase != interview.PhaseIdle {
		for i := range m.fields {
			m.fields[i].Reset()
			m.fields[i].Blur()
		}
		m.focus = fieldName
		m.fields[fieldName].Focus()
	}
	if v.Phase == interview.PhaseAwaitingScore && !m.scoring && !m.scoreFailed {
		cmd := m.scoreCmd()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	key := msg.String()

	switch m.view.Phase {
	case interview.PhaseSuspended:
		var cmd tea.Cmd
		m.resume, cmd = m.resume.Update(msg)
		if cmd != nil {
			m.busy = true
		}
		return m, cmd

	case interview.PhaseIdle, interview.PhaseAwaitingStart:
		switch key {
		case "tab", "down":
			return m.moveFocus(1), nil
		case "shift+tab", "up":
			return m.moveFocus(-1), nil
		case "enter":
			if m.focus < len(m.fields)-1 {
				return m.moveFocus(1), nil
			}
			m.busy = true
			return m, m.startCmd(interview.CandidateInfo{
				Name:  m.fields[fieldName].Value(),
				Email: m.fields[fieldEmail].Value(),
				Phone: m.fields[fieldPhone].Value(),
			})
		}

	case interview.PhaseActive:
		switch key {
		case "enter":
			m.busy = true
			return m, m.answerCmd(m.answer.Value())
		case "ctrl+p":
			m.busy = true
			return m, m.timerCmd(!m.view.State.IsTimerRunning)
		}

	case interview.PhaseAwaitingScore:
		if key == "r" && m.scoreFailed {
			m.scoreFailed = false
			m.errMsg = ""
			cmd := m.scoreCmd()
			return m, cmd
		}
		return m, nil

	case interview.PhaseComplete:
		switch key {
		case "n":
			m.busy = true
			return m, m.resetCmd()
		case "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	}

	return m.forward(msg)
}

// forward hands input to whichever text field is focused.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view.Phase {
	case interview.PhaseIdle, interview.PhaseAwaitingStart:
		m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	case interview.PhaseActive:
		m.answer, cmd = m.answer.Update(msg)
	}
	return m, cmd
}

func (m Model) moveFocus(delta int) Model {
	m.fields[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	m.fields[m.focus].Focus()
	return m
}

func (m Model) stepCmd() tea.Cmd {
	mc, ctx := m.opts.Machine, m.ctx
	return func() tea.Msg {
		res, err := mc.Step(ctx)
		return stepMsg{Result: res, View: mc.View(), Err: err}
	}
}

func (m Model) startCmd(info interview.CandidateInfo) tea.Cmd {
	mc, src, ctx := m.opts.Machine, m.opts.Questions, m.ctx
	return func() tea.Msg {
		if mc.View().Phase == interview.PhaseIdle || mc.View().Phase == interview.PhaseAwaitingStart {
			if v, err := mc.SetCandidateInfo(ctx, info); err != nil {
				return viewMsg{View: v, Err: err}
			}
		}
		qs, err := src.Questions(ctx)
		if err != nil {
			return viewMsg{View: mc.View(), Err: err}
		}
		v, err := mc.StartInterview(ctx, qs)
		return viewMsg{View: v, Err: err}
	}
}

func (m Model) answerCmd(text string) tea.Cmd {
	mc, ctx := m.opts.Machine, m.ctx
	return func() tea.Msg {
		v, err := mc.Answer(ctx, text)
		return viewMsg{View: v, Err: err}
	}
}

func (m Model) timerCmd(running bool) tea.Cmd {
	mc, ctx := m.opts.Machine, m.ctx
	return func() tea.Msg {
		v, err := mc.SetTimerActive(ctx, running)
		return viewMsg{View: v, Err: err}
	}
}

func (m Model) resumeCmd(choice interview.ResumeChoice) tea.Cmd {
	mc, ctx := m.opts.Machine, m.ctx
	return func() tea.Msg {
		v, err := mc.ResumeOrRestart(ctx, choice)
		return viewMsg{View: v, Err: err}
	}
}

func (m Model) resetCmd() tea.Cmd {
	mc, ctx := m.opts.Machine, m.ctx
	return func() tea.Msg {
		v, err := mc.ResetInterview(ctx)
		return viewMsg{View: v, Err: err}
	}
}

// scoreCmd marks scoring as in flight and returns the command that runs it.
func (m *Model) scoreCmd() tea.Cmd {
	m.scoring = true
	return m.finalizeCmd()
}

func (m Model) finalizeCmd() tea.Cmd {
	mc, scorer, ctx, log := m.opts.Machine, m.opts.Scorer, m.ctx, m.opts.Log
	return func() tea.Msg {
		v, err := scoring.Finalize(ctx, mc, scorer)
		if err != nil {
			log.Warn("scoring failed", zap.Error(err))
		}
		return viewMsg{View: v, Err: err, Scored: true}
	}
}
