package term

import (
	"fmt"
	"io"
	"os"
	"strings"

	xterm "golang.org/x/term"
)

// Screen issues the small set of ANSI control sequences the interactive
// views need. All writes go to a single writer so output stays ordered with
// the view rendering.
type Screen struct {
	out io.Writer
}

// NewScreen returns a Screen writing to stdout.
func NewScreen() *Screen {
	return &Screen{out: os.Stdout}
}

// NewScreenWriter returns a Screen writing to w. Used in tests.
func NewScreenWriter(w io.Writer) *Screen {
	return &Screen{out: w}
}

// Clear erases the display and homes the cursor.
func (s *Screen) Clear() {
	fmt.Fprint(s.out, "\x1b[2J\x1b[H")
}

// MoveTo positions the cursor at the given 1-based row and column.
func (s *Screen) MoveTo(row, col int) {
	fmt.Fprintf(s.out, "\x1b[%d;%dH", row, col)
}

// ClearLine erases the current line.
func (s *Screen) ClearLine() {
	fmt.Fprint(s.out, "\x1b[2K\r")
}

// HideCursor makes the cursor invisible until ShowCursor is called.
func (s *Screen) HideCursor() {
	fmt.Fprint(s.out, "\x1b[?25l")
}

// ShowCursor restores cursor visibility.
func (s *Screen) ShowCursor() {
	fmt.Fprint(s.out, "\x1b[?25h")
}

// Print writes the frame content. Lines must already be joined; in raw mode
// each newline needs a carriage return, so normalize here.
func (s *Screen) Print(frame string) {
	fmt.Fprint(s.out, strings.ReplaceAll(frame, "\n", "\r\n"))
}

// Size reports the terminal dimensions, falling back to 80x24 when the
// size cannot be determined (pipes, dumb terminals).
func (s *Screen) Size() (width, height int) {
	w, h, err := xterm.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
