package answer

import (
	"context"

	"github.com/kailas-cloud/planagent/internal/domain"
)

// Retriever supplies post-processed document chunks for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]domain.RetrievedChunk, error)
}

// Generator produces answer text from a system and user prompt.
type Generator interface {
	// Complete returns the full answer in one call.
	Complete(ctx context.Context, system, user string) (string, error)

	// Stream delivers answer fragments through emit as they arrive and
	// returns the provider's view of the complete answer. Fragments
	// concatenate, in order, to the returned text. A non-nil error from
	// emit aborts the stream.
	Stream(ctx context.Context, system, user string, emit func(fragment string) error) (string, error)
}
