package export

import (
	"fmt"
	"strings"

	"chatgrep/internal/domain"
)

type textRenderer struct{}

func (textRenderer) Extension() string { return ".txt" }

// Render produces a plain-text document with banner separators between
// messages, suitable for grep and pagers.
func (textRenderer) Render(t domain.Transcript) string {
	separator := strings.Repeat("=", 60)

	var b strings.Builder
	b.WriteString(separator)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Conversation: %s\n", t.Path)
	if t.Project != "" {
		fmt.Fprintf(&b, "Project: %s\n", t.Project)
	}
	fmt.Fprintf(&b, "Messages: %d\n", len(t.Messages))
	b.WriteString(separator)
	b.WriteString("\n\n")

	for _, msg := range t.Messages {
		if msg.Timestamp != nil {
			fmt.Fprintf(&b, "%s [%s]:\n", speakerLabel(msg.Speaker), msg.Timestamp.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Fprintf(&b, "%s:\n", speakerLabel(msg.Speaker))
		}
		b.WriteString(msg.Text)
		b.WriteString("\n\n")
		b.WriteString(separator)
		b.WriteString("\n\n")
	}

	return b.String()
}
