package remote

import (
	"context"
	"errors"
	"sync"

	"elements/internal/ai"
)

// Embedder adapts the provider client to the per-text embedder
// contract. No preparation phase is needed; the dimension is learned
// from the first vector returned. Embed is safe for concurrent use,
// which the reasoning pipeline relies on for its fan-out.
type Embedder struct {
	client ai.Client

	mu        sync.Mutex
	dimension int
}

func New(client ai.Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Name() string { return "remote" }

// Prepare is a no-op for remote embedding.
func (e *Embedder) Prepare(ctx context.Context, corpus []string) error { return nil }

// Dimension returns the dimensionality observed so far (0 before the
// first successful Embed).
func (e *Embedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimension
}

// Embed requests one vector from the provider. Provider failures and
// throttling surface unchanged for the caller to handle.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := e.client.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, errors.New("no embedding returned")
	}
	e.mu.Lock()
	if e.dimension == 0 {
		e.dimension = len(vecs[0])
	}
	e.mu.Unlock()
	return vecs[0], nil
}
