package ui

import (
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/noborus/ov/oviewer"
	"go.uber.org/zap"

	"chatgrep/internal/domain"
	"chatgrep/internal/export"
	"chatgrep/internal/term"
)

type actionEvent int

const (
	actionStay actionEvent = iota
	actionBackViewer
	actionBackSearch
	actionQuit
)

// actionMenu offers operations on the currently viewed conversation.
type actionMenu struct {
	styles     *Styles
	transcript domain.Transcript
	outputDir  string
	suspend    func(func() error) error
	logger     *zap.Logger
	status     string
	statusErr  bool
}

func newActionMenu(t domain.Transcript, outputDir string, suspend func(func() error) error, styles *Styles, logger *zap.Logger) *actionMenu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &actionMenu{
		styles:     styles,
		transcript: t,
		outputDir:  outputDir,
		suspend:    suspend,
		logger:     logger,
	}
}

func (m *actionMenu) handleKey(key term.Key) actionEvent {
	if key.Kind == term.KeyEsc {
		return actionBackViewer
	}
	if key.Kind != term.KeyRune {
		return actionStay
	}

	switch key.Rune {
	case '1':
		m.report("copied conversation text", m.copyRendered(export.FormatText))
	case '2':
		m.report("copied conversation markdown", m.copyRendered(export.FormatMarkdown))
	case '3':
		m.report("copied file path", clipboard.WriteAll(m.transcript.Path))
	case '4':
		m.report("editor closed", m.openEditor())
	case '5':
		m.exportToFile()
	case '6':
		m.report("pager closed", m.openPager())
	case 'b', 'B':
		return actionBackViewer
	case 's', 'S':
		return actionBackSearch
	case 'q', 'Q':
		return actionQuit
	}
	return actionStay
}

func (m *actionMenu) report(okMsg string, err error) {
	if err != nil {
		m.status = err.Error()
		m.statusErr = true
		m.logger.Warn("action failed", zap.String("path", m.transcript.Path), zap.Error(err))
		return
	}
	m.status = okMsg
	m.statusErr = false
}

func (m *actionMenu) copyRendered(format export.Format) error {
	content := export.RendererFor(format).Render(m.transcript)
	return clipboard.WriteAll(content)
}

func (m *actionMenu) openEditor() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	return m.suspend(func() error {
		cmd := exec.Command(editor, m.transcript.Path)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	})
}

func (m *actionMenu) exportToFile() {
	extractor := export.NewExtractor(m.outputDir, export.RendererFor(export.FormatMarkdown), m.logger)
	path, err := extractor.Extract(m.transcript)
	m.report("exported to "+path, err)
}

// openPager shows the conversation in ov with writeback disabled so the
// session frame is not disturbed on exit.
func (m *actionMenu) openPager() error {
	content := export.RendererFor(export.FormatText).Render(m.transcript)
	return m.suspend(func() error {
		root, err := oviewer.NewRoot(strings.NewReader(content))
		if err != nil {
			return err
		}
		config := oviewer.NewConfig()
		config.IsWriteOnExit = false
		config.IsWriteOriginal = false
		root.SetConfig(config)
		return root.Run()
	})
}

func (m *actionMenu) render(width int) string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Actions"))
	b.WriteString("\n")
	b.WriteString(m.styles.Dim.Render(clipLine(m.transcript.Path, width-2)))
	b.WriteString("\n\n")

	items := []string{
		"1  Copy conversation text",
		"2  Copy as markdown",
		"3  Copy file path",
		"4  Open in editor",
		"5  Export to file",
		"6  View in pager",
	}
	for _, item := range items {
		b.WriteString("  " + item + "\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		style := m.styles.StatusOK
		if m.statusErr {
			style = m.styles.StatusError
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render("b viewer · s search · q quit"))
	return b.String()
}
