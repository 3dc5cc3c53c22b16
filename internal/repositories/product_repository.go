package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, filter models.ProductFilter, page, size int) ([]*models.Product, int, error)
	ListRelated(ctx context.Context, product *models.Product, limit int) ([]*models.Product, error)
	SearchProducts(ctx context.Context, term string, limit int) ([]*models.Product, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `p.id, p.category_id, p.name, p.description, p.price, p.stock, p.is_active,
		p.created_at, p.updated_at, c.id, c.name, c.slug`

var productOrderBy = map[models.SortKey]string{
	models.SortNewest:    "p.created_at DESC, p.id DESC",
	models.SortPriceAsc:  "p.price ASC, p.id ASC",
	models.SortPriceDesc: "p.price DESC, p.id ASC",
	models.SortNameAsc:   "p.name ASC, p.id ASC",
	models.SortNameDesc:  "p.name DESC, p.id ASC",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}

	var (
		categoryID   sql.NullInt64
		joinedID     sql.NullInt64
		categoryName sql.NullString
		categorySlug sql.NullString
	)

	err := row.Scan(&product.ID, &categoryID, &product.Name, &product.Description, &product.Price, &product.Stock, &product.IsActive,
		&product.CreatedAt, &product.UpdatedAt, &joinedID, &categoryName, &categorySlug)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		id := categoryID.Int64
		product.CategoryID = &id
	}

	if joinedID.Valid {
		product.Category = &models.Category{ID: joinedID.Int64, Name: categoryName.String, Slug: categorySlug.String}
	}

	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `INSERT INTO products (category_id, name, description, price, stock, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, product.CategoryID, product.Name, product.Description, product.Price, product.Stock, product.IsActive).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}

// UpdateProduct writes only the fields present in the patch. Absent fields bind as NULL and keep their
// stored value, so a price edit never rewrites a stock figure a concurrent checkout has just decremented.
func (r *productRepository) UpdateProduct(ctx context.Context, id int64, patch *models.UpdateProductRequest) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		WITH p AS (
			UPDATE products SET
				category_id = COALESCE($1, category_id),
				name = COALESCE($2, name),
				description = COALESCE($3, description),
				price = COALESCE($4, price),
				stock = COALESCE($5, stock),
				is_active = COALESCE($6, is_active),
				updated_at = NOW()
			WHERE id = $7
			RETURNING *
		)
		SELECT ` + productColumns + `
		FROM p
		LEFT JOIN categories c ON p.category_id = c.id
	`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query,
		patch.CategoryID, patch.Name, patch.Description, patch.Price, patch.Stock, patch.IsActive, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating product: %w", err)
	}

	return product, nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// escapeLike makes user input literal inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func buildProductFilter(filter models.ProductFilter) (string, []any) {
	conditions := []string{"p.is_active = TRUE"}
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if term := strings.TrimSpace(filter.Search); term != "" {
		placeholder := next("%" + escapeLike(term) + "%")
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE %[1]s OR p.description ILIKE %[1]s)", placeholder))
	}

	if filter.CategoryID != nil {
		conditions = append(conditions, "p.category_id = "+next(*filter.CategoryID))
	}

	if filter.CategorySlug != "" {
		conditions = append(conditions, "c.slug = "+next(filter.CategorySlug))
	}

	if filter.MinPrice != nil {
		conditions = append(conditions, "p.price >= "+next(*filter.MinPrice))
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, "p.price <= "+next(*filter.MaxPrice))
	}

	if filter.InStockOnly {
		conditions = append(conditions, "p.stock > 0")
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *productRepository) ListProducts(ctx context.Context, filter models.ProductFilter, page, size int) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	where, args := buildProductFilter(filter)

	var total int

	countQuery := `SELECT COUNT(*) FROM products p LEFT JOIN categories c ON p.category_id = c.id` + where

	if err := r.DB.QueryRowContext(dbCtx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	orderBy, ok := productOrderBy[filter.Sort]
	if !ok {
		orderBy = productOrderBy[models.SortNewest]
	}

	// Offset
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, productColumns, where, orderBy, len(args)+1, len(args)+2)

	products, err := r.queryProducts(dbCtx, query, append(args, size, offset)...)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) ListRelated(ctx context.Context, product *models.Product, limit int) ([]*models.Product, error) {
	if product.CategoryID == nil {
		return []*models.Product{}, nil
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.category_id = $1 AND p.id <> $2 AND p.is_active = TRUE
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3`

	return r.queryProducts(dbCtx, query, *product.CategoryID, product.ID, limit)
}

func (r *productRepository) SearchProducts(ctx context.Context, term string, limit int) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.is_active = TRUE AND (p.name ILIKE $1 OR p.description ILIKE $1)
		ORDER BY p.name ASC, p.id ASC
		LIMIT $2`

	return r.queryProducts(dbCtx, query, "%"+escapeLike(term)+"%", limit)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}

	defer rows.Close()

	products := []*models.Product{}

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
