package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fastOptions keeps worker tests quick while preserving the poll/debounce
// relationship.
var fastOptions = WorkerOptions{Poll: 2 * time.Millisecond, Debounce: 20 * time.Millisecond}

// recordingCompose counts invocations and replays canned results.
type recordingCompose struct {
	mu      sync.Mutex
	queries []string
	results map[string][]Result
	err     error
}

func (rc *recordingCompose) fn(ctx context.Context, query string) ([]Result, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.queries = append(rc.queries, query)
	if rc.err != nil {
		return nil, rc.err
	}
	return rc.results[query], nil
}

func (rc *recordingCompose) seen() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]string, len(rc.queries))
	copy(out, rc.queries)
	return out
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestWorkerDebounceCoalescesKeystrokes(t *testing.T) {
	t.Parallel()
	cache := NewCache()
	state := NewState(cache)
	compose := &recordingCompose{results: map[string][]Result{
		"dec": {{Path: "/a.jsonl", MatchedContent: "decorators", Score: 1}},
	}}

	worker := NewWorker(state, cache, compose.fn, fastOptions, nil)
	worker.Start()
	defer worker.Stop(time.Second)

	// Three keystrokes inside one debounce window.
	state.InsertRune('d')
	state.InsertRune('e')
	state.InsertRune('c')

	waitFor(t, func() bool {
		snap := state.Snapshot()
		return len(snap.Results) == 1 && !snap.Searching
	}, "worker never published results")

	assert.Equal(t, []string{"dec"}, compose.seen(), "rapid keystrokes coalesce into one search for the final query")
}

func TestWorkerEmptyQueryClearsImmediately(t *testing.T) {
	t.Parallel()
	cache := NewCache()
	state := NewState(cache)
	compose := &recordingCompose{results: map[string][]Result{
		"a": {{MatchedContent: "hit"}},
	}}

	worker := NewWorker(state, cache, compose.fn, fastOptions, nil)
	worker.Start()
	defer worker.Stop(time.Second)

	state.InsertRune('a')
	waitFor(t, func() bool { return len(state.Snapshot().Results) == 1 }, "first search never completed")

	state.Backspace()
	waitFor(t, func() bool {
		snap := state.Snapshot()
		return len(snap.Results) == 0 && !snap.Searching
	}, "empty query should clear results")

	assert.Equal(t, []string{"a"}, compose.seen(), "the empty query never reaches compose")
}

func TestWorkerComposeErrorAbsorbed(t *testing.T) {
	t.Parallel()
	cache := NewCache()
	state := NewState(cache)
	compose := &recordingCompose{err: errors.New("boom")}

	worker := NewWorker(state, cache, compose.fn, fastOptions, nil)
	worker.Start()
	defer worker.Stop(time.Second)

	state.InsertRune('b')
	waitFor(t, func() bool { return len(compose.seen()) > 0 && !state.Snapshot().Searching }, "worker never processed the failing search")

	snap := state.Snapshot()
	assert.Empty(t, snap.Results, "a failing search shows no results")

	// The session keeps working after the failure.
	compose.mu.Lock()
	compose.err = nil
	compose.results = map[string][]Result{"bx": {{MatchedContent: "recovered"}}}
	compose.mu.Unlock()

	state.InsertRune('x')
	waitFor(t, func() bool { return len(state.Snapshot().Results) == 1 }, "worker did not recover after an error")
}

func TestWorkerUsesCache(t *testing.T) {
	t.Parallel()
	cache := NewCache()
	state := NewState(cache)
	compose := &recordingCompose{results: map[string][]Result{
		"ab":  {{MatchedContent: "ab hit"}},
		"abc": {{MatchedContent: "abc hit"}},
	}}

	worker := NewWorker(state, cache, compose.fn, fastOptions, nil)
	worker.Start()
	defer worker.Stop(time.Second)

	state.InsertRune('a')
	state.InsertRune('b')
	waitFor(t, func() bool { return len(compose.seen()) == 1 }, "first search never ran")

	state.InsertRune('c')
	waitFor(t, func() bool { return len(compose.seen()) == 2 }, "second search never ran")

	// Backspacing to "ab" hits the still-warm cache entry; compose is not
	// called a third time.
	state.Backspace()
	waitFor(t, func() bool {
		snap := state.Snapshot()
		return len(snap.Results) == 1 && snap.Results[0].MatchedContent == "ab hit" && !snap.Searching
	}, "cached results never reappeared")

	assert.Equal(t, []string{"ab", "abc"}, compose.seen())
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	t.Parallel()
	worker := NewWorker(NewState(nil), nil, func(ctx context.Context, q string) ([]Result, error) {
		return nil, nil
	}, fastOptions, nil)
	worker.Start()

	assert.True(t, worker.Stop(time.Second))
	assert.True(t, worker.Stop(time.Second), "stopping twice is safe")
}
