package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervue/internal/ui/theme"
)

// Countdown renders the time left on a question as a draining bar.
type Countdown struct {
	Remaining int
	Limit     int
	Paused    bool
	Width     int
}

// Fraction is the share of the limit still left, in [0, 1].
func (c Countdown) Fraction() float64 {
	if c.Limit <= 0 {
		return 0
	}
	f := float64(c.Remaining) / float64(c.Limit)
	return max(0, min(1, f))
}

func (c Countdown) View() string {
	label := fmt.Sprintf("%d:%02d", c.Remaining/60, c.Remaining%60)
	if c.Paused {
		label += " paused"
	}
	label = lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(label)

	barWidth := c.Width - lipgloss.Width(label) - 2
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(float64(barWidth) * c.Fraction())
	empty := barWidth - filled

	bar := theme.CountdownColor(c.Fraction()).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", empty))
	return bar + "  " + label
}
