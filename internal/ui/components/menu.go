package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervue/internal/ui/theme"
)

// Choice is one option in a Menu.
type Choice struct {
	Label  string
	Action func() tea.Cmd
}

// Menu is a vertical list of choices navigated with the arrow keys.
type Menu struct {
	Choices  []Choice
	Selected int
}

func NewMenu(choices ...Choice) Menu {
	return Menu{Choices: choices}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Choices)-1 {
			m.Selected++
		}
	case "enter":
		if m.Selected < len(m.Choices) && m.Choices[m.Selected].Action != nil {
			return m, m.Choices[m.Selected].Action()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	var s string
	for i, c := range m.Choices {
		if i == m.Selected {
			s += lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  ▸ "+c.Label) + "\n"
		} else {
			s += lipgloss.NewStyle().Foreground(theme.Text).Render("    "+c.Label) + "\n"
		}
	}
	return s
}
