package health

import "context"

// StoreChecker reports index availability and size.
type StoreChecker interface {
	HealthCheck(ctx context.Context) bool
	Count(ctx context.Context) (int, error)
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
