// Package search implements the incremental ranked search core: per-strategy
// ranking, the composing "smart" search, the per-query result cache, and the
// debounced background worker that ties them to the interactive session.
package search

import (
	"context"
	"sort"
	"time"

	"chatgrep/internal/domain"
)

// Mode selects a matching strategy.
type Mode string

const (
	ModeExact    Mode = "exact"
	ModeRegex    Mode = "regex"
	ModeSmart    Mode = "smart"
	ModeSemantic Mode = "semantic"
)

// Result is one match. Immutable once produced.
type Result struct {
	Path           string
	ConversationID string
	Speaker        domain.Speaker
	MatchedContent string
	Context        string  // preceding turn, truncated for preview
	Score          float64 // in [0,1], comparable across strategies
	Timestamp      *time.Time
}

// Options restrict and shape a search.
type Options struct {
	Mode          Mode
	MaxResults    int // 0 means DefaultMaxResults
	CaseSensitive bool
	Speaker       domain.Speaker // "" matches any speaker
	DateFrom      *time.Time
	DateTo        *time.Time
}

// DefaultMaxResults bounds a composed result list unless overridden.
const DefaultMaxResults = 20

// Corpus supplies the transcripts to search. The store in internal/corpus is
// the production implementation.
type Corpus interface {
	Conversations(ctx context.Context) ([]domain.Transcript, error)
}

// Semantic is the optional similarity capability. A nil Semantic disables
// the semantic strategy; implementations must treat unknown text as a zero
// score, not an error.
type Semantic interface {
	Similarity(ctx context.Context, query, text string) (float64, error)
}

// sortResults orders results score descending, then timestamp descending
// with absent timestamps last, then insertion order.
func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		ti, tj := results[i].Timestamp, results[j].Timestamp
		switch {
		case ti == nil && tj == nil:
			return false
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
}
