package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/niksmo/candle-shop/internal/core/domain"
	"github.com/niksmo/candle-shop/internal/core/port"
)

var _ port.ProductReader = (*ProductsRepository)(nil)

// A ProductsRepository reads catalog products managed by the admin panel.
type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

func (r ProductsRepository) ReadProduct(
	ctx context.Context, productID string,
) (domain.Product, error) {
	const op = "ProductsRepository.ReadProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT product_id, name, slug, price, stock_quantity
		FROM products
		WHERE product_id = $1 AND is_active;`

	var v domain.Product
	err := r.sqldb.QueryRowContext(ctx, query, productID).Scan(
		&v.ID, &v.Name, &v.Slug, &v.Price, &v.StockQuantity,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf(
				"%s: %w: %w", op, ErrNotFound, domain.ErrProductNotFound,
			)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}
