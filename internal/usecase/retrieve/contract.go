package retrieve

import (
	"context"

	"github.com/kailas-cloud/planagent/internal/domain"
)

// Searcher is the external similarity-search capability. Implementations
// must be safe for concurrent use and must return an empty slice, not an
// error, when the index simply has no results.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
}
