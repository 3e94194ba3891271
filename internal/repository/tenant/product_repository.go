package tenant

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	tenantModels "github.com/Yespecom/server-updated-sub001/internal/models/tenant"
)

// ProductStore reads the tenant's catalog.
type ProductStore interface {
	List(ctx context.Context) ([]tenantModels.Product, error)
}

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) List(ctx context.Context) ([]tenantModels.Product, error) {
	query := `
		SELECT id, name, description, price, sku, stock, active, created_at, updated_at
		FROM products
		WHERE active = true
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []tenantModels.Product{}
	for rows.Next() {
		var p tenantModels.Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.SKU,
			&p.Stock,
			&p.Active,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return products, nil
}
