package search

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Composer runs the strategies a query calls for and merges their output
// into one ranked, deduplicated list.
type Composer struct {
	ranker   *Ranker
	semantic Semantic // may be nil
	logger   *zap.Logger
}

// NewComposer creates a strategy composer around a ranking engine.
func NewComposer(ranker *Ranker, semantic Semantic, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{ranker: ranker, semantic: semantic, logger: logger}
}

// Compose runs the token-overlap baseline, adds the regex strategy when the
// query looks like a pattern and the semantic strategy when one is
// configured, then merges, dedupes on (path, matched content), orders, and
// truncates. Composing the same query against an unchanged corpus twice
// yields the same list.
func (c *Composer) Compose(ctx context.Context, query string, corpus Corpus, opts Options) ([]Result, error) {
	if query == "" {
		return nil, nil
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	modes := []Mode{ModeSmart}
	if LooksLikeRegex(query) {
		modes = append(modes, ModeRegex)
	}
	if c.semantic != nil {
		modes = append(modes, ModeSemantic)
	}

	type dedupeKey struct {
		path    string
		content string
	}
	merged := make(map[dedupeKey]int) // key -> index into ordered
	var ordered []Result

	for _, mode := range modes {
		modeOpts := opts
		modeOpts.Mode = mode
		results, err := c.ranker.Rank(ctx, query, corpus, modeOpts)
		if err != nil {
			// A failing strategy narrows the result set, nothing more.
			c.logger.Debug("strategy failed",
				zap.String("mode", string(mode)), zap.String("query", query), zap.Error(err))
			continue
		}
		for _, res := range results {
			key := dedupeKey{path: res.Path, content: res.MatchedContent}
			if i, ok := merged[key]; ok {
				if res.Score > ordered[i].Score {
					ordered[i].Score = res.Score
				}
				continue
			}
			merged[key] = len(ordered)
			ordered = append(ordered, res)
		}
	}

	sortResults(ordered)
	if len(ordered) > maxResults {
		ordered = ordered[:maxResults]
	}
	return ordered, nil
}

// LooksLikeRegex reports whether a query contains regex metacharacters
// worth a pattern pass. A lone period does not count; "file.txt" is almost
// always a literal.
func LooksLikeRegex(query string) bool {
	if strings.Contains(query, ".*") {
		return true
	}
	return strings.ContainsAny(query, `*+?|[]()^$\{}`)
}
