package ui

import (
	"fmt"
	"strings"

	"chatgrep/internal/domain"
	"chatgrep/internal/term"
)

type viewerEvent int

const (
	viewerStay viewerEvent = iota
	viewerBack
	viewerActions
)

// viewer renders one conversation with scrolling and in-conversation search.
type viewer struct {
	styles     *Styles
	transcript domain.Transcript

	lines []string // styled, wrapped lines
	plain []string // same lines without styling, for matching

	offset int
	width  int

	searchTerm string
	matches    []int
	matchIdx   int

	inputting bool
	input     []rune
}

func newViewer(t domain.Transcript, styles *Styles, width int) *viewer {
	v := &viewer{styles: styles, transcript: t, width: width}
	v.buildLines()
	return v
}

// buildLines renders every message once: a speaker header, a separator and
// the word-wrapped body, with fenced code blocks styled distinctly.
func (v *viewer) buildLines() {
	wrapWidth := v.width - 2
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	v.lines = v.lines[:0]
	v.plain = v.plain[:0]
	separator := strings.Repeat("─", wrapWidth)

	for i, msg := range v.transcript.Messages {
		if i > 0 {
			v.appendLine("", "")
		}
		v.appendLine(v.headerLine(msg), v.plainHeader(msg))
		v.appendLine(v.styles.Separator.Render(separator), separator)

		inCode := false
		for _, raw := range strings.Split(msg.Text, "\n") {
			if strings.HasPrefix(strings.TrimSpace(raw), "```") {
				inCode = !inCode
				v.appendLine(v.styles.CodeBlock.Render(raw), raw)
				continue
			}
			if inCode {
				v.appendLine(v.styles.CodeBlock.Render(raw), raw)
				continue
			}
			for _, wrapped := range wrapText(raw, wrapWidth) {
				v.appendLine(wrapped, wrapped)
			}
		}
	}
}

func (v *viewer) appendLine(styled, plain string) {
	v.lines = append(v.lines, styled)
	v.plain = append(v.plain, plain)
}

func (v *viewer) headerLine(msg domain.Message) string {
	style := v.styles.Speaker
	icon := "👤"
	if msg.Speaker == domain.SpeakerAssistant {
		style = v.styles.SpeakerAI
		icon = "🤖"
	}
	header := style.Render(icon + " " + speakerName(msg.Speaker))
	if msg.Timestamp != nil {
		header += " " + v.styles.Timestamp.Render(msg.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return header
}

func (v *viewer) plainHeader(msg domain.Message) string {
	s := speakerName(msg.Speaker)
	if msg.Timestamp != nil {
		s += " " + msg.Timestamp.Format("2006-01-02 15:04:05")
	}
	return s
}

func speakerName(s domain.Speaker) string {
	if s == domain.SpeakerAssistant {
		return "Assistant"
	}
	return "Human"
}

// searchFor highlights term matches and jumps to the first one.
func (v *viewer) searchFor(termStr string) {
	v.searchTerm = termStr
	v.matches = v.matches[:0]
	v.matchIdx = 0
	if termStr == "" {
		return
	}

	needle := strings.ToLower(termStr)
	for i, line := range v.plain {
		if strings.Contains(strings.ToLower(line), needle) {
			v.matches = append(v.matches, i)
		}
	}
	if len(v.matches) > 0 {
		v.offset = v.matches[0]
	}
}

func (v *viewer) jumpMatch(delta int) {
	if len(v.matches) == 0 {
		return
	}
	v.matchIdx = (v.matchIdx + delta + len(v.matches)) % len(v.matches)
	v.offset = v.matches[v.matchIdx]
}

func (v *viewer) handleKey(key term.Key) viewerEvent {
	if v.inputting {
		v.handleInputKey(key)
		return viewerStay
	}

	switch key.Kind {
	case term.KeyEsc:
		return viewerBack
	case term.KeyUp:
		v.scroll(-1)
	case term.KeyDown:
		v.scroll(1)
	case term.KeyRune:
		switch key.Rune {
		case 'q':
			return viewerBack
		case 'a':
			return viewerActions
		case 'j':
			v.scroll(1)
		case 'k':
			v.scroll(-1)
		case 'g':
			v.offset = 0
		case 'G':
			v.offset = len(v.lines) // clamped at render
		case ' ':
			v.scroll(v.pageSize())
		case 'b':
			v.scroll(-v.pageSize())
		case '/':
			v.inputting = true
			v.input = v.input[:0]
		case 'n':
			v.jumpMatch(1)
		case 'N':
			v.jumpMatch(-1)
		}
	}
	return viewerStay
}

func (v *viewer) handleInputKey(key term.Key) {
	switch key.Kind {
	case term.KeyEnter:
		v.inputting = false
		v.searchFor(string(v.input))
	case term.KeyEsc:
		v.inputting = false
	case term.KeyBackspace:
		if len(v.input) > 0 {
			v.input = v.input[:len(v.input)-1]
		}
	case term.KeyRune:
		v.input = append(v.input, key.Rune)
	}
}

func (v *viewer) pageSize() int {
	return 10
}

func (v *viewer) scroll(delta int) {
	v.offset += delta
}

func (v *viewer) render(width, height int) string {
	if width != v.width {
		v.width = width
		v.buildLines()
	}

	viewHeight := height - 3
	if viewHeight < 1 {
		viewHeight = 1
	}

	maxOffset := len(v.lines) - viewHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.offset > maxOffset {
		v.offset = maxOffset
	}
	if v.offset < 0 {
		v.offset = 0
	}

	end := v.offset + viewHeight
	if end > len(v.lines) {
		end = len(v.lines)
	}

	var b strings.Builder
	for i := v.offset; i < end; i++ {
		b.WriteString(v.highlightLine(i))
		b.WriteString("\n")
	}
	for i := end - v.offset; i < viewHeight; i++ {
		b.WriteString("\n")
	}

	b.WriteString(v.footer(maxOffset))
	return b.String()
}

// highlightLine applies match styling to plain body lines. Already styled
// lines (headers, separators, code) pass through untouched when a term
// would not match them anyway.
func (v *viewer) highlightLine(i int) string {
	line := v.lines[i]
	if v.searchTerm == "" || v.plain[i] != line {
		return line
	}

	lower := strings.ToLower(line)
	needle := strings.ToLower(v.searchTerm)
	idx := strings.Index(lower, needle)
	if idx < 0 {
		return line
	}
	return line[:idx] + v.styles.Match.Render(line[idx:idx+len(v.searchTerm)]) + line[idx+len(v.searchTerm):]
}

func (v *viewer) footer(maxOffset int) string {
	if v.inputting {
		return v.styles.SearchBox.Render("/" + string(v.input))
	}

	percent := 100
	if maxOffset > 0 {
		percent = v.offset * 100 / maxOffset
	}
	info := fmt.Sprintf("%d%%", percent)
	if len(v.matches) > 0 {
		info += fmt.Sprintf(" · match %d/%d", v.matchIdx+1, len(v.matches))
	}
	return v.styles.Footer.Render(info + " · j/k scroll · g/G top/bottom · / search · a actions · q back")
}

// wrapText word-wraps one paragraph line to the given width. Empty input
// yields one empty line so vertical spacing is preserved.
func wrapText(s string, width int) []string {
	if strings.TrimSpace(s) == "" {
		return []string{""}
	}

	words := strings.Fields(s)
	var lines []string
	var current strings.Builder

	for _, word := range words {
		if current.Len() > 0 && current.Len()+1+len(word) > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
