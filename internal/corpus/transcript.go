package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatgrep/internal/domain"
)

// maxLineBytes bounds a single transcript line. Assistant turns with large
// code blocks routinely exceed bufio's default 64K.
const maxLineBytes = 4 * 1024 * 1024

// rawLine is one JSON object of a transcript file.
type rawLine struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Content   json.RawMessage `json:"content"`
	Message   *rawMessage     `json:"message"`
}

type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type rawBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ParseFile reads a transcript file into messages. Malformed lines are
// skipped individually; only a failure to open or read the file is an error.
func ParseFile(path string) (domain.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("failed to stat transcript: %w", err)
	}

	t := domain.Transcript{
		Path:           path,
		ConversationID: ConversationID(path),
		Project:        filepath.Base(filepath.Dir(path)),
		Modified:       info.ModTime(),
		SizeBytes:      info.Size(),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msg, ok := parseLine([]byte(line))
		if !ok {
			continue
		}
		t.Messages = append(t.Messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return t, fmt.Errorf("failed to read transcript: %w", err)
	}
	return t, nil
}

// parseLine converts one JSON line into a message. It reports false for
// anything that is not a user/assistant turn with textual content.
func parseLine(data []byte) (domain.Message, bool) {
	var raw rawLine
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Message{}, false
	}

	role := raw.Type
	if role == "" && raw.Message != nil {
		role = raw.Message.Role
	}

	var speaker domain.Speaker
	switch role {
	case "user", "human":
		speaker = domain.SpeakerHuman
	case "assistant":
		speaker = domain.SpeakerAssistant
	default:
		return domain.Message{}, false
	}

	text := extractText(raw.Content)
	if text == "" && raw.Message != nil {
		text = extractText(raw.Message.Content)
	}
	if text == "" {
		return domain.Message{}, false
	}

	msg := domain.Message{Speaker: speaker, Text: text}
	if raw.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, raw.Timestamp); err == nil {
			msg.Timestamp = &ts
		}
	}
	return msg, true
}

// extractText handles the two content shapes found in the logs: a flat
// string, or a list of typed blocks where text blocks carry the prose.
func extractText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}

	var items []json.RawMessage
	if err := json.Unmarshal(content, &items); err != nil {
		return ""
	}

	var parts []string
	for _, item := range items {
		var block rawBlock
		if err := json.Unmarshal(item, &block); err == nil && block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
			continue
		}
		var str string
		if err := json.Unmarshal(item, &str); err == nil && str != "" {
			parts = append(parts, str)
		}
	}
	return strings.Join(parts, "\n")
}

// ConversationID derives a stable identifier from the file identity. Log
// files are named by session UUID; anything else gets a deterministic UUID
// from its path.
func ConversationID(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if _, err := uuid.Parse(base); err == nil {
		return base
	}
	if base != "" {
		return base
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}
