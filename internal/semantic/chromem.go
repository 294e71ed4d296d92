// Package semantic provides the optional similarity capability behind the
// search core's Semantic interface, backed by an embedded chromem-go
// collection. When it is not configured the composer never runs the
// semantic strategy at all.
package semantic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"chatgrep/internal/domain"
)

const collectionName = "chatgrep"

// Provider indexes corpus messages into an in-memory vector collection and
// answers per-message similarity queries. One collection query per distinct
// query string; per-message lookups after that are map reads.
type Provider struct {
	db     *chromem.DB
	col    *chromem.Collection
	logger *zap.Logger

	mu         sync.Mutex
	docCount   int
	lastQuery  string
	lastScores map[string]float64 // doc ID -> similarity for lastQuery
}

// NewProvider creates a provider around an embedding function, typically
// chromem.NewEmbeddingFuncOpenAI.
func NewProvider(embed chromem.EmbeddingFunc, logger *zap.Logger) (*Provider, error) {
	if embed == nil {
		return nil, fmt.Errorf("embedding function is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db := chromem.NewDB()
	col, err := db.CreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return &Provider{db: db, col: col, logger: logger}, nil
}

// Index embeds every message of the given transcripts. Safe to call again
// as the corpus grows; documents are keyed by content hash.
func (p *Provider) Index(ctx context.Context, transcripts []domain.Transcript) error {
	var docs []chromem.Document
	for _, t := range transcripts {
		for _, msg := range t.Messages {
			if msg.Text == "" {
				continue
			}
			docs = append(docs, chromem.Document{
				ID:      docID(msg.Text),
				Content: msg.Text,
				Metadata: map[string]string{
					"path":    t.Path,
					"speaker": string(msg.Speaker),
				},
			})
		}
	}
	if len(docs) == 0 {
		return nil
	}

	if err := p.col.AddDocuments(ctx, docs, 4); err != nil {
		return fmt.Errorf("failed to index messages: %w", err)
	}

	p.mu.Lock()
	p.docCount = p.col.Count()
	p.lastQuery = "" // force a fresh collection query next time
	p.mu.Unlock()

	p.logger.Info("semantic index built", zap.Int("documents", len(docs)))
	return nil
}

// Similarity implements search.Semantic. Text that was never indexed scores
// zero; only an embedding failure for the query itself is an error.
func (p *Provider) Similarity(ctx context.Context, query, text string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.docCount == 0 {
		return 0, nil
	}

	if query != p.lastQuery {
		results, err := p.col.Query(ctx, query, p.docCount, nil, nil)
		if err != nil {
			return 0, fmt.Errorf("semantic query failed: %w", err)
		}
		scores := make(map[string]float64, len(results))
		for _, res := range results {
			scores[res.ID] = float64(res.Similarity)
		}
		p.lastQuery = query
		p.lastScores = scores
	}

	return p.lastScores[docID(text)], nil
}

func docID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16])
}
