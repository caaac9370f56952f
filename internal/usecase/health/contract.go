package health

import "context"

// IndexPinger checks vector-index availability.
type IndexPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an external provider (embeddings, LLM) availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
