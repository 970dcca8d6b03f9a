package compodex

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/componentry/compodex/internal/domain/search"
	"github.com/componentry/compodex/internal/embedding"
	openaiEmb "github.com/componentry/compodex/internal/embedding/openai"
	"github.com/componentry/compodex/internal/extract"
	"github.com/componentry/compodex/internal/store/sqlite"
	healthuc "github.com/componentry/compodex/internal/usecase/health"
	pipelineuc "github.com/componentry/compodex/internal/usecase/pipeline"
	scanuc "github.com/componentry/compodex/internal/usecase/scan"
)

// Client is the compodex SDK entry point. It runs the full retrieval
// pipeline in-process against a directory-backed index.
type Client struct {
	store    *sqlite.Store
	pipeline *pipelineuc.Service
	scanner  *scanuc.Service
	health   *healthuc.Service
}

// New creates a Client and opens the index.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dataDir:    "./data",
		collection: "components",
		model:      "mock",
		dimensions: 384,
		workers:    4,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := sqlite.NewStore(cfg.dataDir, cfg.collection, logger)
	if err != nil {
		return nil, err
	}

	var base embedding.Embedder
	if cfg.openAIKey != "" {
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.openAIKey,
			BaseURL:    cfg.openAIBaseURL,
			Model:      cfg.model,
			Dimensions: cfg.dimensions,
			Logger:     logger,
		})
	} else {
		base = embedding.NewMock(cfg.dimensions)
	}
	embedder := embedding.NewPool(base, cfg.workers)

	pipe := pipelineuc.New(store, embedder, logger)
	if cfg.defaultLimit > 0 || cfg.maxLimit > 0 {
		pipe = pipe.WithLimits(cfg.defaultLimit, cfg.maxLimit)
	}

	var checker healthuc.EmbeddingChecker
	if cfg.openAIKey != "" {
		checker = embedder
	}

	return &Client{
		store:    store,
		pipeline: pipe,
		scanner:  scanuc.New(extract.New(), pipe, logger),
		health:   healthuc.New(store, checker, cfg.model),
	}, nil
}

// Close releases the index.
func (c *Client) Close() error {
	return c.store.Close()
}

// Add indexes a component and returns its id. When the record carries no
// id, one is assigned.
func (c *Client) Add(ctx context.Context, comp Component) (string, error) {
	if comp.ID == "" {
		comp.ID = uuid.New().String()
	}
	dc := toDomain(comp)
	if err := c.pipeline.AddComponent(ctx, &dc); err != nil {
		return "", err
	}
	return comp.ID, nil
}

// Update replaces the stored record and all derived artifacts.
func (c *Client) Update(ctx context.Context, comp Component) error {
	dc := toDomain(comp)
	return c.pipeline.UpdateComponent(ctx, &dc)
}

// Delete removes a component from the index.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.pipeline.DeleteComponent(ctx, id)
}

// Get returns the stored view of a component.
func (c *Client) Get(ctx context.Context, id string) (IndexedComponent, error) {
	t, err := c.pipeline.GetComponent(ctx, id)
	if err != nil {
		return IndexedComponent{}, err
	}
	return fromTuple(t), nil
}

// List returns every indexed component ordered by id.
func (c *Client) List(ctx context.Context) ([]IndexedComponent, error) {
	tuples, err := c.pipeline.GetAllComponents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]IndexedComponent, len(tuples))
	for i, t := range tuples {
		out[i] = fromTuple(t)
	}
	return out, nil
}

// Count returns the number of indexed components.
func (c *Client) Count(ctx context.Context) (int, error) {
	return c.pipeline.Count(ctx)
}

// Search returns the components most similar to the query. Filters match
// metadata fields exactly; unsupported keys are ignored. limit 0 means
// the configured default.
func (c *Client) Search(
	ctx context.Context, query string, limit int, filters map[string]string,
) ([]Result, error) {
	results, err := c.pipeline.SearchComponents(ctx, query, limit, filters)
	if err != nil {
		return nil, err
	}
	return convertResults(results), nil
}

// Suggest recommends components for a UI being built, described in prose.
func (c *Client) Suggest(ctx context.Context, description string, limit int) ([]Result, error) {
	results, err := c.pipeline.SuggestForUI(ctx, description, limit)
	if err != nil {
		return nil, err
	}
	return convertResults(results), nil
}

// FindByName searches by component name. An approximation over the
// vector index, not an exact-match lookup.
func (c *Client) FindByName(ctx context.Context, name string, limit int) ([]Result, error) {
	results, err := c.pipeline.FindByName(ctx, name, limit)
	if err != nil {
		return nil, err
	}
	return convertResults(results), nil
}

// Scan walks a component library folder and indexes everything it finds.
func (c *Client) Scan(ctx context.Context, req ScanRequest) (ScanReport, error) {
	report, err := c.scanner.Scan(ctx, scanuc.Request{
		Folder:            req.Folder,
		IncludeStorybooks: req.IncludeStorybooks,
		IncludeTests:      req.IncludeTests,
		Recursive:         req.Recursive,
	})
	if err != nil {
		return ScanReport{}, err
	}
	return fromReport(report), nil
}

// Rescan re-extracts a single file and replaces its index entry.
func (c *Client) Rescan(ctx context.Context, filePath string) (Component, error) {
	comp, err := c.scanner.Rescan(ctx, filePath)
	if err != nil {
		return Component{}, err
	}
	return fromDomain(comp), nil
}

// Health checks the index and the embedding provider.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:         string(report.Status),
		Checks:         checks,
		EmbeddingModel: report.EmbeddingModel,
		ComponentCount: report.ComponentCount,
	}
}

func convertResults(results []search.Result) []Result {
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = fromResult(r)
	}
	return out
}
