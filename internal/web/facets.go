package web

import (
	"context"
	"sync"

	"github.com/sloppy/pastyears/internal/api"
)

// facetCache keeps the filter facets after the first successful fetch.
// Fetches run outside the lock so a slow or failing API does not serialize
// list requests; failures are not cached.
type facetCache struct {
	mu sync.Mutex
	md *api.Metadata
}

func (c *facetCache) get(ctx context.Context, backend Backend) (api.Metadata, error) {
	c.mu.Lock()
	cached := c.md
	c.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	md, err := backend.Metadata(ctx)
	if err != nil {
		return api.Metadata{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.md == nil {
		c.md = &md
	}
	return *c.md, nil
}
