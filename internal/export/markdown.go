package export

import (
	"fmt"
	"strings"

	"chatgrep/internal/domain"
)

type markdownRenderer struct{}

func (markdownRenderer) Extension() string { return ".md" }

// Render produces a markdown document with a metadata header and one
// "### Speaker" section per message, separated by horizontal rules.
func (markdownRenderer) Render(t domain.Transcript) string {
	var b strings.Builder

	b.WriteString("# Claude Conversation\n\n")
	fmt.Fprintf(&b, "**File:** %s\n", t.Path)
	if t.Project != "" {
		fmt.Fprintf(&b, "**Project:** %s\n", t.Project)
	}
	fmt.Fprintf(&b, "**Messages:** %d\n\n", len(t.Messages))
	b.WriteString("---\n\n")

	for i, msg := range t.Messages {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		if msg.Timestamp != nil {
			fmt.Fprintf(&b, "### %s *[%s]*\n\n", speakerLabel(msg.Speaker), msg.Timestamp.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Fprintf(&b, "### %s\n\n", speakerLabel(msg.Speaker))
		}
		b.WriteString(msg.Text)
		b.WriteString("\n")
	}

	return b.String()
}
