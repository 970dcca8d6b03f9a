package scan

import (
	"context"

	"github.com/componentry/compodex/internal/domain/component"
)

// Extractor turns a raw source file into a draft component record. The
// heuristic in internal/extract is the reference implementation; a real
// parser can be injected without changing scanner or pipeline code.
type Extractor interface {
	Extract(filePath, storyPath string) (component.Component, error)
}

// Indexer is the slice of the retrieval pipeline the scanner consumes.
type Indexer interface {
	AddComponent(ctx context.Context, c *component.Component) error
	UpdateComponent(ctx context.Context, c *component.Component) error
}
