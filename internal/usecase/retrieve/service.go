// Package retrieve runs similarity search against the persistent index and
// post-processes the hits: distance cutoff, per-page cap, deterministic
// ordering.
package retrieve

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/planagent/internal/domain"
	"github.com/kailas-cloud/planagent/internal/logger"
)

// Defaults for retrieval post-processing.
const (
	DefaultTopK       = 5
	DefaultMaxPerPage = 2
)

// Options tune retrieval post-processing.
type Options struct {
	TopK int
	// MaxDistance drops chunks with a larger distance. Nil disables the
	// cutoff; with a finite cutoff, chunks without a distance are dropped
	// (missing distance counts as infinite).
	MaxDistance *float64
	MaxPerPage  int
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MaxPerPage <= 0 {
		o.MaxPerPage = DefaultMaxPerPage
	}
	return o
}

// Service retrieves and post-processes document chunks.
type Service struct {
	searcher Searcher
	opts     Options
}

// New creates a retrieval service.
func New(searcher Searcher, opts Options) *Service {
	return &Service{searcher: searcher, opts: opts.withDefaults()}
}

// Retrieve searches the index and applies post-processing. A dependency
// failure is reported as ErrRetrievalFailed, never as an empty result set.
func (s *Service) Retrieve(ctx context.Context, question string) ([]domain.RetrievedChunk, error) {
	raw, err := s.searcher.Search(ctx, question, s.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}

	chunks := Postprocess(raw, s.opts.MaxDistance, s.opts.MaxPerPage)

	logger.FromContext(ctx).Debug("retrieval complete",
		zap.Int("requested_k", s.opts.TopK),
		zap.Int("raw_chunks", len(raw)),
		zap.Int("after_postprocess", len(chunks)),
	)
	return chunks, nil
}

// Postprocess filters by the optional distance cutoff, keeps at most
// maxPerPage chunks per (source, page) pair (best by distance), then sorts
// ascending by distance with a stable tie-break on retrieval order.
func Postprocess(chunks []domain.RetrievedChunk, maxDistance *float64, maxPerPage int) []domain.RetrievedChunk {
	if len(chunks) == 0 {
		return []domain.RetrievedChunk{}
	}
	if maxPerPage <= 0 {
		maxPerPage = DefaultMaxPerPage
	}

	type indexed struct {
		chunk domain.RetrievedChunk
		order int
	}

	filtered := make([]indexed, 0, len(chunks))
	for i, c := range chunks {
		if maxDistance != nil && c.DistanceOrInf() > *maxDistance {
			continue
		}
		filtered = append(filtered, indexed{chunk: c, order: i})
	}

	// Cap per (source, page), keeping the lowest-distance chunks.
	type pageKey struct{ source, page string }
	byPage := make(map[pageKey][]indexed)
	for _, ic := range filtered {
		source := ic.chunk.Source
		if source == "" {
			source = "unknown"
		}
		key := pageKey{source: source, page: ic.chunk.Page}
		byPage[key] = append(byPage[key], ic)
	}

	capped := make([]indexed, 0, len(filtered))
	for _, group := range byPage {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].chunk.DistanceOrInf() < group[j].chunk.DistanceOrInf()
		})
		if len(group) > maxPerPage {
			group = group[:maxPerPage]
		}
		capped = append(capped, group...)
	}

	sort.SliceStable(capped, func(i, j int) bool {
		di, dj := capped[i].chunk.DistanceOrInf(), capped[j].chunk.DistanceOrInf()
		if di != dj {
			return di < dj
		}
		return capped[i].order < capped[j].order
	})

	out := make([]domain.RetrievedChunk, len(capped))
	for i, ic := range capped {
		out[i] = ic.chunk
	}
	return out
}
