// Package embedding turns text into fixed-dimension vectors.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations must be
// safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// HealthChecker is implemented by embedders that can probe their backing
// model. A failed probe at startup means the process cannot serve traffic.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
