// Package db defines the storage contracts for the chunk vector index.
package db

import (
	"context"
	"time"
)

// Store is the vector-index facade. Consumers use the narrow sub-interfaces.
type Store interface {
	Pinger
	Searcher
	IndexChecker
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks index connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker probes FT index existence.
type IndexChecker interface {
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs vector similarity search over an FT index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit. Distance is the raw vector distance
// (lower is closer); HasDistance is false when the server returned no score.
type SearchEntry struct {
	Key         string
	Distance    float64
	HasDistance bool
	Fields      map[string]string
}
