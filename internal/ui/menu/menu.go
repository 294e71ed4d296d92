// Package menu implements the start screen: recent sessions, bulk export
// choices and the entry into interactive search.
package menu

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chatgrep/internal/domain"
)

// Choice is what the user picked from the menu.
type Choice int

const (
	ChoiceNone Choice = iota
	ChoiceExtractAll
	ChoiceExtractRecent
	ChoiceSearch
	ChoiceQuit
)

const (
	maxListedSessions = 20
	recentCount       = 5
)

// Sessions supplies the transcripts the menu lists. The corpus store is the
// production implementation.
type Sessions interface {
	All() []domain.Transcript
	Len() int
}

type tickMsg time.Time

// Model is the bubbletea model for the start menu.
type Model struct {
	sessions Sessions
	progress func() domain.ScanProgress

	spinner spinner.Model
	cursor  int
	choice  Choice

	titleStyle    lipgloss.Style
	dimStyle      lipgloss.Style
	selectedStyle lipgloss.Style
	helpStyle     lipgloss.Style
}

// New creates the menu model. progress may be nil when no scan runs.
func New(sessions Sessions, progress func() domain.ScanProgress) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	if progress == nil {
		progress = func() domain.ScanProgress { return domain.ScanProgress{} }
	}

	return Model{
		sessions:      sessions,
		progress:      progress,
		spinner:       sp,
		titleStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		dimStyle:      lipgloss.NewStyle().Faint(true),
		selectedStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226")),
		helpStyle:     lipgloss.NewStyle().Faint(true),
	}
}

// Choice returns what the user selected when the program ended.
func (m Model) Choice() Choice {
	return m.choice
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

var options = []struct {
	label  string
	choice Choice
}{
	{"Extract all conversations", ChoiceExtractAll},
	{fmt.Sprintf("Extract %d most recent", recentCount), ChoiceExtractRecent},
	{"Search conversations", ChoiceSearch},
	{"Quit", ChoiceQuit},
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// Re-render to pick up transcripts the scanner found meanwhile.
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.choice = ChoiceQuit
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(options)-1 {
				m.cursor++
			}
		case "enter":
			m.choice = options[m.cursor].choice
			return m, tea.Quit
		case "a":
			m.choice = ChoiceExtractAll
			return m, tea.Quit
		case "r":
			m.choice = ChoiceExtractRecent
			return m, tea.Quit
		case "s":
			m.choice = ChoiceSearch
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render("chatgrep"))
	b.WriteString("  ")
	b.WriteString(m.dimStyle.Render("extract and search your chat transcripts"))
	b.WriteString("\n\n")

	prog := m.progress()
	if prog.IsScanning {
		b.WriteString(m.spinner.View())
		b.WriteString(m.dimStyle.Render(fmt.Sprintf(" scanning... %d conversations found", prog.Found)))
		b.WriteString("\n\n")
	}

	sessions := m.sessions.All()
	total := len(sessions)
	if total > maxListedSessions {
		sessions = sessions[:maxListedSessions]
	}

	if total == 0 && !prog.IsScanning {
		b.WriteString(m.dimStyle.Render("no conversations found"))
		b.WriteString("\n")
	}
	for _, s := range sessions {
		b.WriteString(m.dimStyle.Render(sessionLine(s)))
		b.WriteString("\n")
	}
	if total > maxListedSessions {
		b.WriteString(m.dimStyle.Render(fmt.Sprintf("  ... %d more", total-maxListedSessions)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, opt := range options {
		if i == m.cursor {
			b.WriteString(m.selectedStyle.Render("▸ " + opt.label))
		} else {
			b.WriteString("  " + opt.label)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.helpStyle.Render("↑/↓ move · enter select · a/r/s shortcuts · q quit"))
	return b.String()
}

func sessionLine(s domain.Transcript) string {
	date := "unknown"
	if !s.Modified.IsZero() {
		date = s.Modified.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("  %s  %-24s %6.1f KB", date, s.Project, float64(s.SizeBytes)/1024)
}
