// Package pipeline orchestrates the schema codec, embedding generator,
// and vector store for component add/update/delete/search.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/componentry/compodex/internal/domain"
	"github.com/componentry/compodex/internal/domain/component"
	"github.com/componentry/compodex/internal/domain/search"
	"github.com/componentry/compodex/internal/store/sqlite"
)

// suggestPrefix steers suggestion queries toward UI intent. A deliberately
// simple heuristic, replaceable without touching the store contract.
const suggestPrefix = "UI component for: "

// Service is the retrieval pipeline.
type Service struct {
	store        Store
	embedder     Embedder
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

// New creates a pipeline service.
func New(store Store, embedder Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:        store,
		embedder:     embedder,
		defaultLimit: 10,
		maxLimit:     50,
		logger:       logger,
	}
}

// WithLimits configures search limit bounds.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// AddComponent derives document, metadata, and embedding for the record
// and inserts the tuple. If embedding fails, nothing is written.
func (s *Service) AddComponent(ctx context.Context, c *component.Component) error {
	tuple, err := s.derive(ctx, c)
	if err != nil {
		return err
	}

	if err := s.store.Add(ctx, tuple); err != nil {
		return fmt.Errorf("add component %s: %w", c.ID, err)
	}

	s.logger.Info("component added",
		zap.String("id", c.ID),
		zap.String("name", c.Name),
	)
	return nil
}

// UpdateComponent re-derives all artifacts and replaces the stored tuple.
// Updating a non-existent id fails with domain.ErrNotFound; there is no
// upsert.
func (s *Service) UpdateComponent(ctx context.Context, c *component.Component) error {
	tuple, err := s.derive(ctx, c)
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, tuple); err != nil {
		return fmt.Errorf("update component %s: %w", c.ID, err)
	}

	s.logger.Info("component updated",
		zap.String("id", c.ID),
		zap.String("name", c.Name),
	)
	return nil
}

// DeleteComponent removes the tuple and all derived artifacts.
func (s *Service) DeleteComponent(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("component id is required: %w", domain.ErrValidation)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete component %s: %w", id, err)
	}

	s.logger.Info("component deleted", zap.String("id", id))
	return nil
}

// SearchComponents embeds the query and returns nearest neighbors with
// similarity scores, most similar first.
func (s *Service) SearchComponents(
	ctx context.Context, query string, limit int, filters map[string]string,
) ([]search.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty: %w", domain.ErrValidation)
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits, err := s.store.Search(ctx, queryEmbedding, limit, filters)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]search.Result, len(hits))
	for i, h := range hits {
		results[i] = search.FromDistance(h.ID, h.Metadata, h.Document, h.Distance)
	}
	return results, nil
}

// SuggestForUI searches with the description reframed as a UI intent.
func (s *Service) SuggestForUI(
	ctx context.Context, description string, limit int,
) ([]search.Result, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("description must not be empty: %w", domain.ErrValidation)
	}
	return s.SearchComponents(ctx, suggestPrefix+description, limit, nil)
}

// FindByName searches using a synthesized "Component: <name>" query. An
// approximation over the vector index, not an exact-match lookup.
func (s *Service) FindByName(ctx context.Context, name string, limit int) ([]search.Result, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name must not be empty: %w", domain.ErrValidation)
	}
	return s.SearchComponents(ctx, "Component: "+name, limit, nil)
}

// GetComponent returns the stored tuple for an id.
func (s *Service) GetComponent(ctx context.Context, id string) (sqlite.Tuple, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return sqlite.Tuple{}, fmt.Errorf("get component: %w", err)
	}
	return t, nil
}

// GetAllComponents returns every stored tuple.
func (s *Service) GetAllComponents(ctx context.Context) ([]sqlite.Tuple, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	return all, nil
}

// Count returns the number of indexed components.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count components: %w", err)
	}
	return n, nil
}

// derive computes the three artifacts for a record. Embedding happens
// last so an encoding failure leaves the store untouched.
func (s *Service) derive(ctx context.Context, c *component.Component) (sqlite.Tuple, error) {
	if err := c.Validate(); err != nil {
		return sqlite.Tuple{}, err
	}

	document := c.Document()
	metadata := c.Metadata()

	embedding, err := s.embedder.Embed(ctx, document)
	if err != nil {
		return sqlite.Tuple{}, fmt.Errorf("vectorize document for %s: %w", c.ID, err)
	}

	return sqlite.Tuple{
		ID:        c.ID,
		Document:  document,
		Embedding: embedding,
		Metadata:  metadata,
	}, nil
}
