package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the chat palette.
type Theme struct {
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Warning       lipgloss.Color
	Border        lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),
	Primary:       lipgloss.Color("#7aa2f7"),
	Secondary:     lipgloss.Color("#bb9af7"),
	Warning:       lipgloss.Color("#e0af68"),
	Border:        lipgloss.Color("#3b4261"),
}

type Styles struct {
	Title    lipgloss.Style
	BotLabel lipgloss.Style
	UserText lipgloss.Style
	Reply    lipgloss.Style
	Notice   lipgloss.Style
	Help     lipgloss.Style
	Frame    lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		BotLabel: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		UserText: lipgloss.NewStyle().Foreground(t.Primary),
		Reply:    lipgloss.NewStyle().Foreground(t.Foreground),
		Notice:   lipgloss.NewStyle().Foreground(t.Warning),
		Help:     lipgloss.NewStyle().Foreground(t.ForegroundDim),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
	}
}
