package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatgrep/internal/domain"
)

func writeTranscript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFileFlatContent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeTranscript(t, dir, "5f4dcc3b-aaaa-bbbb-cccc-000000000001.jsonl",
		`{"type":"user","content":"how do decorators work?","timestamp":"2026-02-01T10:00:00Z"}
{"type":"assistant","content":"they wrap functions"}
`)

	transcript, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "5f4dcc3b-aaaa-bbbb-cccc-000000000001", transcript.ConversationID)
	assert.Equal(t, filepath.Base(dir), transcript.Project)
	require.Len(t, transcript.Messages, 2)

	first := transcript.Messages[0]
	assert.Equal(t, domain.SpeakerHuman, first.Speaker)
	assert.Equal(t, "how do decorators work?", first.Text)
	require.NotNil(t, first.Timestamp)
	assert.Equal(t, 2026, first.Timestamp.Year())

	second := transcript.Messages[1]
	assert.Equal(t, domain.SpeakerAssistant, second.Speaker)
	assert.Nil(t, second.Timestamp)
}

func TestParseFileNestedMessageShape(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeTranscript(t, dir, "chat.jsonl",
		`{"message":{"role":"assistant","content":[{"type":"text","text":"first block"},{"type":"tool_use","text":"ignored"},{"type":"text","text":"second block"}]}}
`)

	transcript, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, transcript.Messages, 1)
	assert.Equal(t, "first block\nsecond block", transcript.Messages[0].Text)
}

func TestParseFileSkipsMalformedLines(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeTranscript(t, dir, "mixed.jsonl",
		`not json at all
{"type":"summary","content":"not a turn"}
{"type":"user","content":"the only real turn"}
{"type":"user","content":""}

`)

	transcript, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, transcript.Messages, 1, "malformed, empty-bodied and non-turn lines are skipped")
	assert.Equal(t, "the only real turn", transcript.Messages[0].Text)
}

func TestParseFileMissing(t *testing.T) {
	t.Parallel()
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.Error(t, err)
}

func TestConversationID(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "5f4dcc3b-aaaa-bbbb-cccc-000000000001",
		ConversationID("/logs/p/5f4dcc3b-aaaa-bbbb-cccc-000000000001.jsonl"))
	assert.Equal(t, "notes", ConversationID("/logs/p/notes.jsonl"))

	// Stable across calls for the same path.
	assert.Equal(t, ConversationID("/x/.jsonl"), ConversationID("/x/.jsonl"))
}
