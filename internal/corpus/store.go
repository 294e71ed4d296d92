package corpus

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"chatgrep/internal/domain"
	"chatgrep/internal/eventbus"
)

// Store is the in-memory registry of discovered transcripts. It is fed by
// bus events and parses message bodies lazily, memoizing them per file
// modification time.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry // keyed by path
	logger  *zap.Logger
}

type entry struct {
	meta     domain.Transcript
	parsed   bool
	parsedAt time.Time // Modified at parse time; re-parse when it moves
}

// NewStore creates a transcript store
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Attach subscribes the store to discovery events. It returns an
// unsubscribe function.
func (s *Store) Attach(bus eventbus.EventBus) func() {
	unsubDiscovered := bus.Subscribe(eventbus.EventTranscriptDiscovered, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.TranscriptDiscoveredEvent); ok {
			s.Add(event.Transcript)
		}
	})
	unsubChanged := bus.Subscribe(eventbus.EventTranscriptChanged, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.TranscriptChangedEvent); ok {
			s.Invalidate(event.Path)
		}
	})
	return func() {
		unsubDiscovered()
		unsubChanged()
	}
}

// Add registers or refreshes a transcript's metadata.
func (s *Store) Add(t domain.Transcript) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[t.Path]; ok {
		if !existing.meta.Modified.Equal(t.Modified) {
			existing.meta.Modified = t.Modified
			existing.meta.SizeBytes = t.SizeBytes
			existing.parsed = false
		}
		return
	}
	s.entries[t.Path] = &entry{meta: t}
}

// Invalidate drops the parsed messages for a path so the next read
// re-parses the file.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[path]; ok {
		e.parsed = false
	}
}

// Len returns the number of known transcripts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// All returns transcript metadata sorted most recently modified first.
// Message bodies are not loaded.
func (s *Store) All() []domain.Transcript {
	s.mu.RLock()
	out := make([]domain.Transcript, 0, len(s.entries))
	for _, e := range s.entries {
		meta := e.meta
		meta.Messages = nil
		out = append(out, meta)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Modified.Equal(out[j].Modified) {
			return out[i].Modified.After(out[j].Modified)
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Conversations returns every transcript with messages loaded. A file that
// cannot be read is skipped, never fatal. Implements search.Corpus.
func (s *Store) Conversations(ctx context.Context) ([]domain.Transcript, error) {
	metas := s.All()

	out := make([]domain.Transcript, 0, len(metas))
	for _, meta := range metas {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t, err := s.load(meta.Path)
		if err != nil {
			s.logger.Warn("skipping unreadable transcript",
				zap.String("path", meta.Path), zap.Error(err))
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Get returns a single transcript with messages loaded.
func (s *Store) Get(path string) (domain.Transcript, error) {
	return s.load(path)
}

func (s *Store) load(path string) (domain.Transcript, error) {
	s.mu.RLock()
	e, ok := s.entries[path]
	if ok && e.parsed && e.parsedAt.Equal(e.meta.Modified) {
		t := e.meta
		s.mu.RUnlock()
		return t, nil
	}
	s.mu.RUnlock()

	t, err := ParseFile(path)
	if err != nil {
		return domain.Transcript{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[path]; ok {
		e.meta = t
		e.parsed = true
		e.parsedAt = t.Modified
	} else {
		s.entries[path] = &entry{meta: t, parsed: true, parsedAt: t.Modified}
	}
	return t, nil
}
