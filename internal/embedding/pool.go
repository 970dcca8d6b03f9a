package embedding

import "context"

// Pool bounds the number of concurrent embedding calls against the
// wrapped embedder. Embedding is computationally heavy on the provider
// side; the bound keeps bulk scans from monopolizing it and gives the
// request path natural backpressure.
type Pool struct {
	inner Embedder
	slots chan struct{}
}

// NewPool wraps an embedder with a concurrency bound of size workers.
func NewPool(inner Embedder, workers int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	return &Pool{
		inner: inner,
		slots: make(chan struct{}, workers),
	}
}

// Embed acquires a slot, embeds, and releases. Honors ctx cancellation
// while waiting for a slot.
func (p *Pool) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.acquire(ctx); err != nil {
		return nil, err
	}
	defer p.release()
	return p.inner.Embed(ctx, text)
}

// EmbedBatch acquires a single slot for the whole batch.
func (p *Pool) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.acquire(ctx); err != nil {
		return nil, err
	}
	defer p.release()
	return p.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped embedder's dimension.
func (p *Pool) Dimensions() int {
	return p.inner.Dimensions()
}

// HealthCheck delegates when the wrapped embedder supports probing.
func (p *Pool) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (p *Pool) acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) release() {
	<-p.slots
}
