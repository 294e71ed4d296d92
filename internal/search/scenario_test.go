package search_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatgrep/internal/corpus"
	"chatgrep/internal/domain"
	"chatgrep/internal/search"
)

// TestIncrementalSearchScenario walks the full path a user takes: transcripts
// on disk, a store over them, and a debounced worker answering keystrokes.
func TestIncrementalSearchScenario(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "webapp"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scripts"), 0o755))

	writeFile(t, filepath.Join(root, "webapp", "a.jsonl"),
		`{"type":"user","content":"how do python decorators work?","timestamp":"2026-03-01T10:00:00Z"}
{"type":"assistant","content":"decorators wrap a function in another function","timestamp":"2026-03-01T10:00:05Z"}
`)
	writeFile(t, filepath.Join(root, "scripts", "b.jsonl"),
		`{"type":"user","content":"write a shell loop","timestamp":"2026-02-01T09:00:00Z"}
{"type":"assistant","content":"for f in *; do echo $f; done","timestamp":"2026-02-01T09:00:03Z"}
`)

	store := corpus.NewStore(nil)
	for _, rel := range []string{"webapp/a.jsonl", "scripts/b.jsonl"} {
		path := filepath.Join(root, rel)
		info, err := os.Stat(path)
		require.NoError(t, err)
		store.Add(domain.Transcript{Path: path, Modified: info.ModTime(), SizeBytes: info.Size()})
	}

	ranker := search.NewRanker(nil, nil)
	composer := search.NewComposer(ranker, nil, nil)
	compose := func(ctx context.Context, query string) ([]search.Result, error) {
		return composer.Compose(ctx, query, store, search.Options{})
	}

	cache := search.NewCache()
	state := search.NewState(cache)
	worker := search.NewWorker(state, cache, compose, search.WorkerOptions{
		Poll: 2 * time.Millisecond, Debounce: 15 * time.Millisecond,
	}, nil)
	worker.Start()
	defer worker.Stop(time.Second)

	// The user types "decorators" quickly.
	for _, r := range "decorators" {
		state.InsertRune(r)
	}

	require.Eventually(t, func() bool {
		snap := state.Snapshot()
		return !snap.Searching && len(snap.Results) == 2
	}, 2*time.Second, 5*time.Millisecond, "typing should settle into two matches")

	snap := state.Snapshot()

	// Both decorator turns match verbatim; the newer message ranks first
	// and the shell conversation does not appear.
	assert.Equal(t, "decorators wrap a function in another function", snap.Results[0].MatchedContent)
	assert.Equal(t, "how do python decorators work?", snap.Results[1].MatchedContent)
	for _, res := range snap.Results {
		assert.Equal(t, filepath.Join(root, "webapp", "a.jsonl"), res.Path)
		assert.Equal(t, 1.0, res.Score)
	}

	// The answer's context preview is the question that preceded it.
	assert.Equal(t, "how do python decorators work?", snap.Results[0].Context)

	// Selecting and reading the full conversation round-trips through the
	// store.
	selected, ok := state.Selected()
	require.True(t, ok)
	full, err := store.Get(selected.Path)
	require.NoError(t, err)
	assert.Len(t, full.Messages, 2)

	// Backspacing to a warm prefix serves cached results.
	state.Backspace() // "decorator"
	require.Eventually(t, func() bool {
		snap := state.Snapshot()
		return !snap.Searching && len(snap.Results) == 2
	}, 2*time.Second, 5*time.Millisecond, "the shorter query still matches")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
