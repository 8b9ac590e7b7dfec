package ports

import (
	"context"

	"github.com/edforge/coursepay/internal/domain"
)

// CatalogRepository exposes the narrow catalog lookups the payment core
// needs.
type CatalogRepository interface {
	// ProductClassBySlug returns the product class with the given slug, or
	// (nil, nil) when the class is not configured in the catalog. A missing
	// class is not an error; minimal deployments may not register it.
	ProductClassBySlug(ctx context.Context, slug string) (*domain.ProductClass, error)
}
