// Package catalog supplies the read-only product list the search interpreter
// derives its location vocabulary and suggestion counts from.
package catalog

import (
	"context"

	"travel-workers/internal/models"
)

// Source returns the current product catalog in a stable order.
type Source interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) ([]models.Product, error)

func (f SourceFunc) Products(ctx context.Context) ([]models.Product, error) {
	return f(ctx)
}
