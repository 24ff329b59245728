package catalog

import (
	"context"
	"sync"
	"time"

	"travel-workers/internal/models"
)

// CachedSource serves a remote catalog from memory for ttl. When a refresh
// fails the previous list is served until a refresh succeeds.
type CachedSource struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	products  []models.Product
	fetchedAt time.Time
}

func NewCachedSource(src Source, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, ttl: ttl, now: time.Now}
}

func (c *CachedSource) Products(ctx context.Context) ([]models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.products != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.products, nil
	}

	fresh, err := c.src.Products(ctx)
	if err != nil {
		if c.products != nil {
			return c.products, nil
		}
		return nil, err
	}
	if fresh == nil {
		fresh = []models.Product{}
	}
	c.products = fresh
	c.fetchedAt = c.now()
	return c.products, nil
}
