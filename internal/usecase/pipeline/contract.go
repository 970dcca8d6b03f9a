package pipeline

import (
	"context"

	"github.com/componentry/compodex/internal/store/sqlite"
)

// Store is the vector store consumed by the pipeline.
type Store interface {
	Add(ctx context.Context, t sqlite.Tuple) error
	Update(ctx context.Context, t sqlite.Tuple) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (sqlite.Tuple, error)
	GetAll(ctx context.Context) ([]sqlite.Tuple, error)
	Search(ctx context.Context, queryEmbedding []float32, limit int, filters map[string]string) ([]sqlite.Hit, error)
	Count(ctx context.Context) (int, error)
}

// Embedder turns document and query text into vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
