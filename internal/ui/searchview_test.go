package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chatgrep/internal/search"
)

func TestRenderSearchShowsQueryAndResults(t *testing.T) {
	t.Parallel()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := search.Snapshot{
		Query:     "decorators",
		CursorPos: 10,
		Results: []search.Result{
			{Path: "/logs/proj-a/x.jsonl", Score: 1.0, Timestamp: &ts, Context: "previous turn text"},
			{Path: "/logs/proj-b/y.jsonl", Score: 0.5},
		},
		Selected: 0,
	}

	out := renderSearch(snap, true, NewStyles(), 80)

	assert.Contains(t, out, "Search: decorators")
	assert.Contains(t, out, "2026-03-01 | proj-a | 100% match")
	assert.Contains(t, out, "unknown date | proj-b | 50% match")
	assert.Contains(t, out, "▸ ", "the selected row carries the indicator")
	assert.Contains(t, out, "previous turn text", "preview shows the selected result's context")
}

func TestRenderSearchPreviewToggle(t *testing.T) {
	t.Parallel()
	snap := search.Snapshot{
		Query:   "q",
		Results: []search.Result{{Path: "/logs/p/x.jsonl", Score: 1, Context: "hidden context"}},
	}

	out := renderSearch(snap, false, NewStyles(), 80)
	assert.NotContains(t, out, "hidden context")
}

func TestRenderSearchCapsVisibleResults(t *testing.T) {
	t.Parallel()
	results := make([]search.Result, 14)
	for i := range results {
		results[i] = search.Result{Path: "/logs/p/x.jsonl", Score: 1}
	}
	out := renderSearch(search.Snapshot{Query: "q", Results: results}, false, NewStyles(), 80)

	assert.Equal(t, maxVisibleResults, strings.Count(out, "% match"))
	assert.Contains(t, out, "... 4 more")
}

func TestRenderSearchSearchingIndicator(t *testing.T) {
	t.Parallel()
	out := renderSearch(search.Snapshot{Query: "q", Searching: true}, false, NewStyles(), 80)
	assert.Contains(t, out, "searching...")
}

func TestQueryWithCursor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ab▌cd", queryWithCursor("abcd", 2))
	assert.Equal(t, "▌abcd", queryWithCursor("abcd", 0))
	assert.Equal(t, "abcd▌", queryWithCursor("abcd", 9), "cursor clamps to the end")
}
