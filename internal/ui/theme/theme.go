package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette: calm neutrals with a single accent, and a warning ramp for the
// countdown.
var (
	Primary = lipgloss.Color("#6366F1") // Indigo
	Accent  = lipgloss.Color("#0EA5E9") // Sky
	Success = lipgloss.Color("#22C55E") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red
	Text    = lipgloss.Color("#F1F5F9")
	TextDim = lipgloss.Color("#94A3B8")
	BgCard  = lipgloss.Color("#1E293B")
	Border  = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// Difficulty badges.
var (
	BadgeEasy   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	BadgeMedium = lipgloss.NewStyle().Foreground(Warning).Bold(true)
	BadgeHard   = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// CountdownColor returns the bar color for the fraction of time left.
func CountdownColor(fraction float64) lipgloss.Style {
	switch {
	case fraction <= 0.2:
		return lipgloss.NewStyle().Background(Error)
	case fraction <= 0.5:
		return lipgloss.NewStyle().Background(Warning)
	}
	return lipgloss.NewStyle().Background(Accent)
}
