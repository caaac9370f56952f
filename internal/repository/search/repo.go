// Package search adapts the vector index into the chunk retrieval contract:
// embed the query, run KNN, map hash fields onto retrieved chunks.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/planagent/internal/db"
	"github.com/kailas-cloud/planagent/internal/domain"
)

// Defaults for the chunk index layout.
const (
	DefaultIndexName = "planagent:chunks:idx"
	DefaultKeyPrefix = "planagent:chunk:"
)

// Hash fields of an indexed chunk.
var returnFields = []string{"__vector_score", "text", "source", "page", "section"}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Embedder vectorizes a query string.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config locates the chunk index.
type Config struct {
	IndexName string
	KeyPrefix string
}

func (c Config) withDefaults() Config {
	if c.IndexName == "" {
		c.IndexName = DefaultIndexName
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	return c
}

// Repo implements usecase/retrieve.Searcher.
type Repo struct {
	store    store
	embedder Embedder
	cfg      Config
}

// New creates a chunk search repository.
func New(s store, e Embedder, cfg Config) *Repo {
	return &Repo{store: s, embedder: e, cfg: cfg.withDefaults()}
}

// Search embeds the query and runs a KNN search over the chunk index.
func (r *Repo) Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.IndexName,
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.cfg.IndexName, err)
	}

	return r.parseResult(sr), nil
}

func (r *Repo) parseResult(sr *db.SearchResult) []domain.RetrievedChunk {
	if sr == nil || len(sr.Entries) == 0 {
		return []domain.RetrievedChunk{}
	}

	chunks := make([]domain.RetrievedChunk, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		chunk := domain.RetrievedChunk{
			ID:      strings.TrimPrefix(entry.Key, r.cfg.KeyPrefix),
			Text:    entry.Fields["text"],
			Source:  entry.Fields["source"],
			Page:    entry.Fields["page"],
			Section: entry.Fields["section"],
		}
		if entry.HasDistance {
			d := entry.Distance
			chunk.Distance = &d
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
