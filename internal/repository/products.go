package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/models"
)

const productColumns = `
	id, sku, name, COALESCE(description, ''), COALESCE(category, ''), price, cost,
	stock_quantity, min_stock_level, max_stock_level, COALESCE(supplier, ''),
	created_at, updated_at
`

type PostgresProductRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logging.Logger) *PostgresProductRepository {
	return &PostgresProductRepository{db: db, logger: logger}
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch product", logging.Fields{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}
	return product, nil
}

func (r *PostgresProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE sku = $1", sku)
	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	return product, err
}

// List filters by exact category and a case-insensitive name/SKU search.
func (r *PostgresProductRepository) List(ctx context.Context, filter *models.ProductListFilter) ([]*models.Product, error) {
	var conds []string
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args)))
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY sku LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.Price, &p.Cost,
		&p.StockQuantity, &p.MinStockLevel, &p.MaxStockLevel, &p.Supplier,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
