package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatgrep/internal/domain"
)

func sampleTranscript() domain.Transcript {
	ts := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	return domain.Transcript{
		Path:           "/logs/myproject/abc123.jsonl",
		ConversationID: "abc123",
		Project:        "myproject",
		Modified:       ts,
		Messages: []domain.Message{
			{Speaker: domain.SpeakerHuman, Text: "How do decorators work?", Timestamp: &ts},
			{Speaker: domain.SpeakerAssistant, Text: "They wrap functions."},
		},
	}
}

func TestMarkdownRender(t *testing.T) {
	t.Parallel()
	out := RendererFor(FormatMarkdown).Render(sampleTranscript())

	assert.True(t, strings.HasPrefix(out, "# Claude Conversation\n"))
	assert.Contains(t, out, "**File:** /logs/myproject/abc123.jsonl")
	assert.Contains(t, out, "**Project:** myproject")
	assert.Contains(t, out, "**Messages:** 2")
	assert.Contains(t, out, "### Human *[2026-02-14 09:30:00]*")
	assert.Contains(t, out, "### Assistant\n", "messages without timestamps get a bare header")
	assert.Contains(t, out, "\n---\n", "messages are separated by horizontal rules")
}

func TestTextRender(t *testing.T) {
	t.Parallel()
	out := RendererFor(FormatText).Render(sampleTranscript())

	assert.Contains(t, out, strings.Repeat("=", 60))
	assert.Contains(t, out, "Human [2026-02-14 09:30:00]:")
	assert.Contains(t, out, "Assistant:")
	assert.Contains(t, out, "They wrap functions.")
}

func TestExtractorWritesFile(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "out")

	extractor := NewExtractor(dir, RendererFor(FormatMarkdown), nil)
	path, err := extractor.Extract(sampleTranscript())
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".md"))
	assert.Contains(t, filepath.Base(path), "myproject")
	assert.Contains(t, filepath.Base(path), "2026-02-14")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Claude Conversation")
}

func TestExtractorRejectsEmptyTranscript(t *testing.T) {
	t.Parallel()
	extractor := NewExtractor(t.TempDir(), RendererFor(FormatText), nil)
	_, err := extractor.Extract(domain.Transcript{Path: "/logs/empty.jsonl"})
	require.Error(t, err)
}

func TestExtractAllSkipsFailures(t *testing.T) {
	t.Parallel()
	extractor := NewExtractor(t.TempDir(), RendererFor(FormatText), nil)

	paths := extractor.ExtractAll([]domain.Transcript{
		sampleTranscript(),
		{Path: "/logs/empty.jsonl"}, // no messages
	})
	assert.Len(t, paths, 1)
}
