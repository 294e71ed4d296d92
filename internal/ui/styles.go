package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the interactive views
type Styles struct {
	Title       lipgloss.Style
	SearchBox   lipgloss.Style
	Selected    lipgloss.Style
	Result      lipgloss.Style
	Score       lipgloss.Style
	Preview     lipgloss.Style
	Dim         lipgloss.Style
	Help        lipgloss.Style
	Match       lipgloss.Style
	Speaker     lipgloss.Style
	SpeakerAI   lipgloss.Style
	Timestamp   lipgloss.Style
	Separator   lipgloss.Style
	CodeBlock   lipgloss.Style
	Footer      lipgloss.Style
	StatusError lipgloss.Style
	StatusOK    lipgloss.Style
	Spinner     lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		SearchBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.Color("241")),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")),
		Result:      lipgloss.NewStyle(),
		Score:       lipgloss.NewStyle().Foreground(lipgloss.Color("78")), // green
		Preview:     lipgloss.NewStyle().Faint(true).PaddingLeft(4),
		Dim:         lipgloss.NewStyle().Faint(true),
		Help:        lipgloss.NewStyle().Faint(true),
		Match:       lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Speaker:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),  // blue
		SpeakerAI:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")), // yellow
		Timestamp:   lipgloss.NewStyle().Faint(true).Italic(true),
		Separator:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		CodeBlock:   lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")),
		Footer:      lipgloss.NewStyle().Faint(true),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusOK:    lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		Spinner:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
	}
}
