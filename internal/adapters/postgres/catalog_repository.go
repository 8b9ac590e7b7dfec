package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edforge/coursepay/internal/domain"
)

// CatalogRepository implements ports.CatalogRepository on PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ProductClassBySlug returns the product class with the given slug, or
// (nil, nil) when the class is not registered.
func (r *CatalogRepository) ProductClassBySlug(ctx context.Context, slug string) (*domain.ProductClass, error) {
	query := `SELECT slug, name FROM product_classes WHERE slug = $1`

	var class domain.ProductClass
	err := r.pool.QueryRow(ctx, query, slug).Scan(&class.Slug, &class.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapError(domain.ErrorCodeLedgerError, "get product class by slug", err)
	}
	return &class, nil
}
