package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervue/internal/ui/theme"
)

// TextField is a labelled single-line input.
type TextField struct {
	Label string
	Model textinput.Model
}

// NewTextField creates an unfocused field. A zero limit means unbounded.
func NewTextField(label, placeholder string, limit int) TextField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if limit > 0 {
		ti.CharLimit = limit
	}
	return TextField{Label: label, Model: ti}
}

func (f *TextField) Focus() tea.Cmd {
	return f.Model.Focus()
}

func (f *TextField) Blur() {
	f.Model.Blur()
}

func (f TextField) Focused() bool {
	return f.Model.Focused()
}

func (f TextField) Update(msg tea.Msg) (TextField, tea.Cmd) {
	var cmd tea.Cmd
	f.Model, cmd = f.Model.Update(msg)
	return f, cmd
}

// View renders the label above the input, highlighting the focused field.
func (f TextField) View() string {
	label := lipgloss.NewStyle().Foreground(theme.TextDim).Render(f.Label)
	if f.Focused() {
		label = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(f.Label)
	}
	return label + "\n" + f.Model.View()
}

// Value is the trimmed input.
func (f TextField) Value() string {
	return strings.TrimSpace(f.Model.Value())
}

func (f *TextField) Reset() {
	f.Model.Reset()
}
