package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ComposeFunc produces the final result list for a query. The composer's
// Compose, curried over the corpus, is the production implementation.
type ComposeFunc func(ctx context.Context, query string) ([]Result, error)

// Worker is the debounced background search task. It watches the shared
// state, waits for typing to settle, consults the cache, runs the composer,
// and publishes the outcome back into the state. The query is snapshotted
// at the moment a cycle starts, so a burst of edits inside one debounce
// window results in exactly one search for the final text.
type Worker struct {
	state    *State
	cache    *Cache
	compose  ComposeFunc
	poll     time.Duration
	debounce time.Duration
	logger   *zap.Logger

	startOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// WorkerOptions tunes the polling loop. Zero values get defaults.
type WorkerOptions struct {
	Poll     time.Duration // tick interval, default 50ms
	Debounce time.Duration // settle window, default 300ms
}

// NewWorker creates a search worker. It does not start until Start.
func NewWorker(state *State, cache *Cache, compose ComposeFunc, opts WorkerOptions, logger *zap.Logger) *Worker {
	if opts.Poll <= 0 {
		opts.Poll = 50 * time.Millisecond
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Worker{
		state:    state,
		cache:    cache,
		compose:  compose,
		poll:     opts.Poll,
		debounce: opts.Debounce,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop in its own goroutine.
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		go w.run()
	})
}

// Stop signals the loop and waits for it to exit, up to the given bound.
// It reports whether the worker finished in time.
func (w *Worker) Stop(wait time.Duration) bool {
	select {
	case <-w.stop:
		// already stopped
	default:
		close(w.stop)
	}
	select {
	case <-w.done:
		return true
	case <-time.After(wait):
		return false
	}
}

func (w *Worker) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.processPending(context.Background())
		}
	}
}

// processPending runs at most one search cycle. It reports whether a cycle
// ran. Any failure inside a strategy is absorbed here: the state ends up
// with empty results and the worker goes back to idle.
func (w *Worker) processPending(ctx context.Context) bool {
	w.state.mu.Lock()
	if !w.state.searching || time.Since(w.state.lastUpdate) < w.debounce {
		w.state.mu.Unlock()
		return false
	}
	// Snapshot the query now; edits arriving mid-search simply re-arm the
	// flag and the next idle tick starts a fresh cycle for the newer text.
	query := w.state.query
	w.state.searching = false
	w.state.mu.Unlock()

	if query == "" {
		w.state.setResults(nil)
		return true
	}

	if cached, ok := w.cache.Get(query); ok {
		w.state.setResults(cached)
		return true
	}

	results, err := w.compose(ctx, query)
	if err != nil {
		w.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		w.state.setResults(nil)
		return true
	}

	w.cache.Put(query, results)
	w.state.setResults(results)
	return true
}
