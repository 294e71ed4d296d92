package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"chatgrep/internal/search"
)

// maxVisibleResults bounds how many results one search frame shows.
const maxVisibleResults = 10

// renderSearch draws the incremental search frame from one state snapshot.
func renderSearch(snap search.Snapshot, showPreview bool, styles *Styles, width int) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Search Conversations"))
	b.WriteString("\n\n")

	b.WriteString(styles.SearchBox.Render("Search: " + queryWithCursor(snap.Query, snap.CursorPos)))
	b.WriteString("\n")

	if snap.Searching {
		b.WriteString(styles.Spinner.Render("searching..."))
	} else if snap.Query != "" {
		b.WriteString(styles.Dim.Render(fmt.Sprintf("%d results", len(snap.Results))))
	}
	b.WriteString("\n\n")

	visible := snap.Results
	if len(visible) > maxVisibleResults {
		visible = visible[:maxVisibleResults]
	}

	for i, result := range visible {
		line := resultLine(result)
		if i == snap.Selected {
			b.WriteString(styles.Selected.Render("▸ " + line))
			b.WriteString("\n")
			if showPreview && result.Context != "" {
				b.WriteString(styles.Preview.Render(clipLine(result.Context, width-6)))
				b.WriteString("\n")
			}
		} else {
			b.WriteString(styles.Result.Render("  " + line))
			b.WriteString("\n")
		}
	}

	if len(snap.Results) > maxVisibleResults {
		b.WriteString(styles.Dim.Render(fmt.Sprintf("  ... %d more", len(snap.Results)-maxVisibleResults)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Help.Render("↑/↓ select · enter open · tab preview · esc quit"))
	return b.String()
}

// queryWithCursor marks the edit position with a block cursor.
func queryWithCursor(query string, cursorPos int) string {
	runes := []rune(query)
	if cursorPos < 0 {
		cursorPos = 0
	}
	if cursorPos > len(runes) {
		cursorPos = len(runes)
	}
	return string(runes[:cursorPos]) + "▌" + string(runes[cursorPos:])
}

// resultLine formats one result as "date | project | NN% match".
func resultLine(result search.Result) string {
	date := "unknown date"
	if result.Timestamp != nil {
		date = result.Timestamp.Format("2006-01-02")
	}
	project := filepath.Base(filepath.Dir(result.Path))
	return fmt.Sprintf("%s | %s | %d%% match", date, project, int(result.Score*100))
}

func clipLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(runes) <= width {
		return string(runes)
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
