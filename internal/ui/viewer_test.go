package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatgrep/internal/domain"
	"chatgrep/internal/term"
)

func testTranscript() domain.Transcript {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var long strings.Builder
	for i := 0; i < 40; i++ {
		long.WriteString("line content here\n")
	}
	return domain.Transcript{
		Path: "/logs/p/conv.jsonl",
		Messages: []domain.Message{
			{Speaker: domain.SpeakerHuman, Text: "how do decorators work?", Timestamp: &ts},
			{Speaker: domain.SpeakerAssistant, Text: "```python\n@wraps(f)\n```\n" + long.String()},
		},
	}
}

func rune_(r rune) term.Key { return term.Key{Kind: term.KeyRune, Rune: r} }

func TestViewerRendersHeadersAndBody(t *testing.T) {
	t.Parallel()
	v := newViewer(testTranscript(), NewStyles(), 80)
	out := v.render(80, 24)

	assert.Contains(t, out, "Human")
	assert.Contains(t, out, "2026-03-01 12:00:00")
	assert.Contains(t, out, "how do decorators work?")
}

func TestViewerScrollClamps(t *testing.T) {
	t.Parallel()
	v := newViewer(testTranscript(), NewStyles(), 80)
	v.render(80, 10)

	v.handleKey(rune_('k'))
	v.render(80, 10)
	assert.Equal(t, 0, v.offset, "cannot scroll above the top")

	v.handleKey(rune_('G'))
	v.render(80, 10)
	bottom := v.offset
	assert.Positive(t, bottom)

	v.handleKey(rune_('j'))
	v.render(80, 10)
	assert.Equal(t, bottom, v.offset, "cannot scroll past the bottom")

	v.handleKey(rune_('g'))
	v.render(80, 10)
	assert.Equal(t, 0, v.offset)
}

func TestViewerPageKeys(t *testing.T) {
	t.Parallel()
	v := newViewer(testTranscript(), NewStyles(), 80)
	v.render(80, 10)

	v.handleKey(rune_(' '))
	v.render(80, 10)
	after := v.offset
	assert.Positive(t, after)

	v.handleKey(rune_('b'))
	v.render(80, 10)
	assert.Equal(t, 0, v.offset)
}

func TestViewerBackAndActions(t *testing.T) {
	t.Parallel()
	v := newViewer(testTranscript(), NewStyles(), 80)

	assert.Equal(t, viewerBack, v.handleKey(rune_('q')))
	assert.Equal(t, viewerBack, v.handleKey(term.Key{Kind: term.KeyEsc}))
	assert.Equal(t, viewerActions, v.handleKey(rune_('a')))
	assert.Equal(t, viewerStay, v.handleKey(rune_('j')))
}

func TestViewerSearchWithin(t *testing.T) {
	t.Parallel()
	v := newViewer(testTranscript(), NewStyles(), 80)

	v.searchFor("decorators")
	require.NotEmpty(t, v.matches)
	assert.Equal(t, v.matches[0], v.offset, "jumps to the first match")

	v.searchFor("no such needle anywhere")
	assert.Empty(t, v.matches)
}

func TestViewerSearchInput(t *testing.T) {
	t.Parallel()
	v := newViewer(testTranscript(), NewStyles(), 80)

	v.handleKey(rune_('/'))
	require.True(t, v.inputting)
	for _, r := range "line" {
		v.handleKey(rune_(r))
	}
	v.handleKey(term.Key{Kind: term.KeyEnter})

	assert.False(t, v.inputting)
	assert.Equal(t, "line", v.searchTerm)
	assert.NotEmpty(t, v.matches)

	// n/N cycle through matches.
	first := v.offset
	v.handleKey(rune_('n'))
	assert.NotEqual(t, first, v.offset)
	v.handleKey(rune_('N'))
	assert.Equal(t, first, v.offset)
}

func TestViewerSearchInputEscCancels(t *testing.T) {
	t.Parallel()
	v := newViewer(testTranscript(), NewStyles(), 80)

	v.handleKey(rune_('/'))
	v.handleKey(rune_('x'))
	v.handleKey(term.Key{Kind: term.KeyEsc})

	assert.False(t, v.inputting)
	assert.Empty(t, v.searchTerm)
}

func TestWrapText(t *testing.T) {
	t.Parallel()
	lines := wrapText("one two three four five", 10)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 10)
	}
	assert.Equal(t, "one two three four five", strings.Join(lines, " "))

	assert.Equal(t, []string{""}, wrapText("", 10), "blank lines survive wrapping")
}
