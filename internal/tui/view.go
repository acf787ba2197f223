package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/ui/components"
	"github.com/abhisek/intervue/internal/ui/layout"
	"github.com/abhisek/intervue/internal/ui/theme"
)

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader(m.title(), m.status(), m.width)
	footer := layout.RenderFooter(m.keyHints(), m.width)
	v.SetContent(layout.RenderFrame(header, m.content(m.width-4), footer, m.width, m.height))
	return v
}

func (m Model) title() string {
	switch m.view.Phase {
	case interview.PhaseSuspended:
		return "Welcome back"
	case interview.PhaseActive:
		return "Interview"
	case interview.PhaseAwaitingScore:
		return "Scoring"
	case interview.PhaseComplete:
		return "Results"
	}
	return "Candidate details"
}

func (m Model) status() string {
	s := m.view.State
	var parts []string
	if s.CandidateInfo != nil {
		parts = append(parts, s.CandidateInfo.Name)
	}
	if s.IsActive && s.CurrentQuestionIndex < len(s.Questions) {
		parts = append(parts, fmt.Sprintf("Q %d/%d", s.CurrentQuestionIndex+1, len(s.Questions)))
	}
	if m.view.Degraded {
		parts = append(parts, "not saving")
	}
	return strings.Join(parts, " · ") + " "
}

func (m Model) keyHints() []layout.KeyHint {
	switch m.view.Phase {
	case interview.PhaseSuspended:
		return []layout.KeyHint{{Key: "↑↓", Description: "Choose"}, {Key: "Enter", Description: "Confirm"}}
	case interview.PhaseActive:
		pause := "Pause"
		if !m.view.State.IsTimerRunning {
			pause = "Resume"
		}
		return []layout.KeyHint{{Key: "Enter", Description: "Submit"}, {Key: "Ctrl+P", Description: pause}, {Key: "Ctrl+C", Description: "Quit"}}
	case interview.PhaseAwaitingScore:
		if m.scoreFailed {
			return []layout.KeyHint{{Key: "R", Description: "Retry scoring"}, {Key: "Ctrl+C", Description: "Quit"}}
		}
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	case interview.PhaseComplete:
		return []layout.KeyHint{{Key: "N", Description: "New interview"}, {Key: "Q", Description: "Quit"}}
	}
	return []layout.KeyHint{{Key: "Tab", Description: "Next field"}, {Key: "Enter", Description: "Start"}, {Key: "Ctrl+C", Description: "Quit"}}
}

func (m Model) content(width int) string {
	var body string
	switch m.view.Phase {
	case interview.PhaseSuspended:
		body = m.renderResume()
	case interview.PhaseActive:
		body = m.renderQuestion(width)
	case interview.PhaseAwaitingScore:
		body = m.renderScoring()
	case interview.PhaseComplete:
		body = m.renderResults(width)
	default:
		body = m.renderIntake()
	}
	if m.errMsg != "" {
		body += "\n\n" + theme.ErrorText.Render(m.errMsg)
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}

func (m Model) renderIntake() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Before we begin"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Six timed questions, easy to hard. The clock starts as soon as you press Enter."))
	b.WriteString("\n\n")
	for _, f := range m.fields {
		b.WriteString(f.View())
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) renderResume() string {
	s := m.view.State
	name := "there"
	if s.CandidateInfo != nil {
		name = s.CandidateInfo.Name
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Welcome back, " + name))
	b.WriteString("\n\n")
	if s.IsActive {
		b.WriteString(theme.Body.Render(fmt.Sprintf(
			"You have an interview in progress: question %d of %d, %s left on the clock.",
			min(s.CurrentQuestionIndex+1, len(s.Questions)), len(s.Questions), clock(s.TimeRemainingSeconds))))
	} else {
		b.WriteString(theme.Body.Render("Your answers are in and waiting to be scored."))
	}
	b.WriteString("\n\n")
	b.WriteString(m.resume.View())
	return b.String()
}

func (m Model) renderQuestion(width int) string {
	s := m.view.State
	q, ok := s.CurrentQuestion()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(badge(q.Difficulty))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  Question %d of %d", s.CurrentQuestionIndex+1, len(s.Questions))))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(width - 4).Render(q.Text))
	b.WriteString("\n\n")
	b.WriteString(components.Countdown{
		Remaining: s.TimeRemainingSeconds,
		Limit:     q.TimeLimitSeconds,
		Paused:    !s.IsTimerRunning,
		Width:     min(width-4, 60),
	}.View())
	b.WriteString("\n\n")
	b.WriteString(m.answer.View())
	return b.String()
}

func (m Model) renderScoring() string {
	if m.scoreFailed {
		return theme.Title.Render("Scoring failed") + "\n\n" +
			theme.Hint.Render("Your answers are saved. Press R to try again.")
	}
	return theme.Title.Render("Scoring your interview…") + "\n\n" +
		theme.Hint.Render("This usually takes a few seconds.")
}

func (m Model) renderResults(width int) string {
	s := m.view.State
	var b strings.Builder
	if s.FinalScore != nil {
		b.WriteString(theme.Title.Render(fmt.Sprintf("Final score: %.1f / 100", *s.FinalScore)))
		b.WriteString("\n\n")
	}
	if s.Summary != nil {
		b.WriteString(theme.Body.Width(width - 4).Render(*s.Summary))
		b.WriteString("\n\n")
	}

	for i, q := range s.Questions {
		if i >= len(s.Answers) {
			break
		}
		a := s.Answers[i]
		mark := lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		detail := fmt.Sprintf("answered in %s", clock(a.TimeUsedSeconds))
		if a.TimedOut() {
			mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
			detail = "timed out"
		}
		line := fmt.Sprintf("%s %s  %s", mark, badge(q.Difficulty), truncate(q.Text, width-40))
		b.WriteString(line + theme.Hint.Render("  "+detail) + "\n")
	}
	return b.String()
}

func badge(d interview.Difficulty) string {
	label := strings.ToUpper(string(d))
	switch d {
	case interview.DifficultyEasy:
		return theme.BadgeEasy.Render(label)
	case interview.DifficultyMedium:
		return theme.BadgeMedium.Render(label)
	case interview.DifficultyHard:
		return theme.BadgeHard.Render(label)
	}
	return label
}

func clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func truncate(s string, n int) string {
	if n < 8 {
		n = 8
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
