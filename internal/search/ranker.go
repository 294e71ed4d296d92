package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"chatgrep/internal/domain"
)

// contextPreviewLen caps the stored preceding-turn preview. Truncation is
// display-only and never affects scoring.
const contextPreviewLen = 200

// semanticFloor is the minimum similarity a semantic hit must reach.
const semanticFloor = 0.3

// Ranker scores a corpus against a query with a single strategy.
type Ranker struct {
	semantic Semantic // may be nil
	logger   *zap.Logger
}

// NewRanker creates a ranking engine. semantic may be nil, in which case the
// semantic mode transparently degrades to the smart strategy.
func NewRanker(semantic Semantic, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{semantic: semantic, logger: logger}
}

// Rank returns scored, ordered results for one strategy. An empty query
// yields an empty set. A bad regex is an error with no results.
func (r *Ranker) Rank(ctx context.Context, query string, corpus Corpus, opts Options) ([]Result, error) {
	if query == "" {
		return nil, nil
	}

	var re *regexp.Regexp
	if opts.Mode == ModeRegex {
		pattern := query
		if !opts.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", query, err)
		}
	}

	transcripts, err := corpus.Conversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	var results []Result
	for _, t := range transcripts {
		for i, msg := range t.Messages {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			if !matchesFilters(msg, opts) {
				continue
			}

			score, ok := r.score(ctx, query, msg.Text, re, opts)
			if !ok {
				continue
			}

			results = append(results, Result{
				Path:           t.Path,
				ConversationID: t.ConversationID,
				Speaker:        msg.Speaker,
				MatchedContent: msg.Text,
				Context:        precedingContext(t.Messages, i),
				Score:          score,
				Timestamp:      msg.Timestamp,
			})
		}
	}

	// Output invariant: nothing past this point may violate a filter.
	results = enforceFilters(results, opts)
	sortResults(results)
	return results, nil
}

// score rates one message for the configured mode. ok is false when the
// message does not match at all.
func (r *Ranker) score(ctx context.Context, query, text string, re *regexp.Regexp, opts Options) (float64, bool) {
	switch opts.Mode {
	case ModeExact:
		return exactScore(query, text, opts.CaseSensitive)

	case ModeRegex:
		match := re.FindString(text)
		if match == "" {
			return 0, false
		}
		return coverageScore(len(match), len(text)), true

	case ModeSemantic:
		if r.semantic == nil {
			return smartScore(query, text)
		}
		score, err := r.semantic.Similarity(ctx, query, text)
		if err != nil {
			// Narrower matches, never an error surfaced to the caller.
			r.logger.Debug("semantic similarity failed", zap.Error(err))
			return 0, false
		}
		if score < semanticFloor {
			return 0, false
		}
		return clamp01(score), true

	default: // ModeSmart and anything unrecognized
		return smartScore(query, text)
	}
}

// exactScore is 1.0 for a substring hit, scaled down when the match is a
// tiny fraction of a long message. Always above 0.5 for any hit.
func exactScore(query, text string, caseSensitive bool) (float64, bool) {
	q, t := query, text
	if !caseSensitive {
		q, t = strings.ToLower(query), strings.ToLower(text)
	}
	if !strings.Contains(t, q) {
		return 0, false
	}
	return coverageScore(len(q), len(text)), true
}

func coverageScore(matchLen, textLen int) float64 {
	if textLen == 0 {
		return 0
	}
	return clamp01(0.5 + 10*float64(matchLen)/float64(textLen))
}

// smartScore is 1.0 for a verbatim (case-folded) substring, otherwise the
// ratio of shared tokens to query tokens. Zero overlap is no match.
func smartScore(query, text string) (float64, bool) {
	lq, lt := strings.ToLower(query), strings.ToLower(text)
	if strings.Contains(lt, lq) {
		return 1.0, true
	}

	queryTokens := tokenize(lq)
	if len(queryTokens) == 0 {
		return 0, false
	}
	textTokens := tokenize(lt)

	shared := 0
	for tok := range queryTokens {
		if _, ok := textTokens[tok]; ok {
			shared++
		}
	}
	if shared == 0 {
		return 0, false
	}
	return float64(shared) / float64(len(queryTokens)), true
}

func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

// matchesFilters applies the speaker and date filters. Messages without a
// timestamp fail any date restriction.
func matchesFilters(msg domain.Message, opts Options) bool {
	if opts.Speaker != "" && msg.Speaker != opts.Speaker {
		return false
	}
	if opts.DateFrom != nil || opts.DateTo != nil {
		if msg.Timestamp == nil {
			return false
		}
		if opts.DateFrom != nil && msg.Timestamp.Before(*opts.DateFrom) {
			return false
		}
		if opts.DateTo != nil && msg.Timestamp.After(*opts.DateTo) {
			return false
		}
	}
	return true
}

func enforceFilters(results []Result, opts Options) []Result {
	out := results[:0]
	for _, res := range results {
		if matchesFilters(domain.Message{Speaker: res.Speaker, Timestamp: res.Timestamp}, opts) {
			out = append(out, res)
		}
	}
	return out
}

// precedingContext returns the previous turn's text, truncated for preview.
func precedingContext(messages []domain.Message, i int) string {
	if i == 0 {
		return ""
	}
	return truncate(messages[i-1].Text, contextPreviewLen)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
