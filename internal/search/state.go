package search

import (
	"sync"
	"time"
)

// visibleCap is how many results the UI shows and lets the user select.
const visibleCap = 10

// State is the single record shared between the session controller and the
// debounced worker. Every multi-field access happens under its lock so
// neither side observes a half-updated result set.
type State struct {
	mu    sync.Mutex
	cache *Cache // pruned on every query mutation; may be nil

	query      string
	cursorPos  int
	results    []Result
	selected   int
	lastUpdate time.Time
	searching  bool // pending-search flag, cleared when the worker picks it up
}

// Snapshot is a consistent copy of the state for rendering.
type Snapshot struct {
	Query     string
	CursorPos int
	Results   []Result
	Selected  int
	Searching bool
}

// NewState creates session state bound to a cache. cache may be nil.
func NewState(cache *Cache) *State {
	return &State{cache: cache}
}

// Snapshot returns a consistent view for one rendered frame.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]Result, len(s.results))
	copy(results, s.results)
	return Snapshot{
		Query:     s.query,
		CursorPos: s.cursorPos,
		Results:   results,
		Selected:  s.selected,
		Searching: s.searching,
	}
}

// Query returns the current query string.
func (s *State) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// InsertRune inserts a character at the cursor and re-arms the debounce.
func (s *State) InsertRune(r rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runes := []rune(s.query)
	runes = append(runes[:s.cursorPos], append([]rune{r}, runes[s.cursorPos:]...)...)
	s.query = string(runes)
	s.cursorPos++
	s.touchLocked()
}

// Backspace deletes the character before the cursor and re-arms the
// debounce. No-op at position zero.
func (s *State) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursorPos == 0 {
		return
	}
	runes := []rune(s.query)
	runes = append(runes[:s.cursorPos-1], runes[s.cursorPos:]...)
	s.query = string(runes)
	s.cursorPos--
	s.touchLocked()
}

// CursorLeft moves the edit cursor one rune left.
func (s *State) CursorLeft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursorPos > 0 {
		s.cursorPos--
	}
}

// CursorRight moves the edit cursor one rune right.
func (s *State) CursorRight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursorPos < len([]rune(s.query)) {
		s.cursorPos++
	}
}

// MoveSelection shifts the selected result, clamped to the visible window.
func (s *State) MoveSelection(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected += delta
	s.clampSelectionLocked()
}

// Selected returns the currently selected result.
func (s *State) Selected() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 || s.selected < 0 || s.selected >= len(s.results) {
		return Result{}, false
	}
	return s.results[s.selected], true
}

// setResults publishes a completed search outcome. Worker-only.
func (s *State) setResults(results []Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.selected = 0
}

// touchLocked re-arms the debounce window and prunes the cache. Callers
// hold s.mu.
func (s *State) touchLocked() {
	s.lastUpdate = time.Now()
	s.searching = true
	if s.cache != nil {
		s.cache.Invalidate(s.query)
	}
}

func (s *State) clampSelectionLocked() {
	max := len(s.results) - 1
	if max > visibleCap-1 {
		max = visibleCap - 1
	}
	if s.selected > max {
		s.selected = max
	}
	if s.selected < 0 {
		s.selected = 0
	}
}
