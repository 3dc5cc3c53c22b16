package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{"id", "category_id", "name", "description", "price", "stock", "is_active", "created_at", "updated_at", "c_id", "c_name", "c_slug"}

func TestProductRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("GetProductByID_Success", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`FROM products p\s+LEFT JOIN categories c ON p.category_id = c.id\s+WHERE p.id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(7, 2, "Desk Lamp", "Warm light", "24.50", 3, false, now, now, 2, "Lighting", "lighting"))

		// Act
		product, err := repo.GetProductByID(ctx, 7)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(7), product.ID)
		assert.True(t, decimal.RequireFromString("24.50").Equal(product.Price))
		assert.False(t, product.IsActive)
		require.NotNil(t, product.Category)
		assert.Equal(t, "lighting", product.Category.Slug)
		require.NotNil(t, product.CategoryID)
		assert.Equal(t, int64(2), *product.CategoryID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetProductByID_NoCategory", func(t *testing.T) {
		mock.ExpectQuery(`WHERE p.id = \$1`).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(8, nil, "Orphan", "", "5.00", 1, true, now, now, nil, nil, nil))

		product, err := repo.GetProductByID(ctx, 8)

		require.NoError(t, err)
		assert.Nil(t, product.CategoryID)
		assert.Nil(t, product.Category)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetProductByID_NotFound", func(t *testing.T) {
		mock.ExpectQuery(`WHERE p.id = \$1`).WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

		product, err := repo.GetProductByID(ctx, 99)

		assert.Nil(t, product)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListProducts_DefaultFilterOnlyActive", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products p LEFT JOIN categories c ON p.category_id = c.id WHERE p.is_active = TRUE$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`WHERE p.is_active = TRUE\s+ORDER BY p.created_at DESC, p.id DESC\s+LIMIT \$1 OFFSET \$2`).
			WithArgs(12, 12).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(1, nil, "Mug", "", "8.00", 10, true, now, now, nil, nil, nil))

		// Act
		products, total, err := repo.ListProducts(ctx, models.ProductFilter{}, 2, 12)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, products, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListProducts_AllFiltersCombine", func(t *testing.T) {
		// Arrange
		categoryID := int64(3)
		minPrice := decimal.NewFromInt(10)
		maxPrice := decimal.NewFromInt(50)
		filter := models.ProductFilter{
			Search:       "50%_off",
			CategoryID:   &categoryID,
			CategorySlug: "kitchen",
			MinPrice:     &minPrice,
			MaxPrice:     &maxPrice,
			InStockOnly:  true,
			Sort:         models.SortPriceAsc,
		}
		where := `WHERE p.is_active = TRUE AND \(p.name ILIKE \$1 OR p.description ILIKE \$1\) AND p.category_id = \$2 AND c.slug = \$3 AND p.price >= \$4 AND p.price <= \$5 AND p.stock > 0`

		mock.ExpectQuery(`SELECT COUNT\(\*\).*` + where).
			WithArgs(`%50\%\_off%`, categoryID, "kitchen", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(where + `\s+ORDER BY p.price ASC, p.id ASC\s+LIMIT \$6 OFFSET \$7`).
			WithArgs(`%50\%\_off%`, categoryID, "kitchen", sqlmock.AnyArg(), sqlmock.AnyArg(), 12, 0).
			WillReturnRows(sqlmock.NewRows(productCols))

		// Act
		products, total, err := repo.ListProducts(ctx, filter, 1, 12)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListRelated_SameCategoryExcludingSelf", func(t *testing.T) {
		categoryID := int64(2)
		product := &models.Product{ID: 7, CategoryID: &categoryID}

		mock.ExpectQuery(`WHERE p.category_id = \$1 AND p.id <> \$2 AND p.is_active = TRUE`).
			WithArgs(categoryID, int64(7), 3).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(9, 2, "Floor Lamp", "", "80.00", 1, true, now, now, 2, "Lighting", "lighting"))

		related, err := repo.ListRelated(ctx, product, 3)

		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, int64(9), related[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListRelated_NoCategorySkipsQuery", func(t *testing.T) {
		related, err := repo.ListRelated(ctx, &models.Product{ID: 7}, 3)

		require.NoError(t, err)
		assert.Empty(t, related)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateProduct_PriceOnlyBindsNullStock", func(t *testing.T) {
		// Arrange
		price := decimal.RequireFromString("12.50")

		mock.ExpectQuery(`(?s)UPDATE products SET.+stock = COALESCE\(\$5, stock\).+WHERE id = \$7`).
			WithArgs(nil, nil, nil, sqlmock.AnyArg(), nil, nil, int64(7)).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(7, 2, "Desk Lamp", "Warm light", "12.50", 1, true, now, now, 2, "Lighting", "lighting"))

		// Act
		product, err := repo.UpdateProduct(ctx, 7, &models.UpdateProductRequest{Price: &price})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, product.Stock)
		assert.True(t, price.Equal(product.Price))
		assert.Equal(t, "lighting", product.Category.Slug)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateProduct_NotFound", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE products SET`).WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateProduct(ctx, 5, &models.UpdateProductRequest{})

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DeleteProduct", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).WithArgs(int64(6)).WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, repo.DeleteProduct(ctx, 5))
		assert.ErrorIs(t, repo.DeleteProduct(ctx, 6), repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCategoryRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewCategoryRepo(db)
	ctx := context.Background()

	t.Run("ListCategories", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, name, slug, description, created_at FROM categories ORDER BY name ASC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "description", "created_at"}).
				AddRow(1, "Books", "books", "", time.Now()).
				AddRow(2, "Lighting", "lighting", "", time.Now()))

		categories, err := repo.ListCategories(ctx)

		require.NoError(t, err)
		assert.Len(t, categories, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateCategory_Success", func(t *testing.T) {
		category := &models.Category{Name: "Garden", Slug: "garden"}

		mock.ExpectQuery(`INSERT INTO categories`).
			WithArgs("Garden", "garden", "").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(4, time.Now()))

		require.NoError(t, repo.CreateCategory(ctx, category))
		assert.Equal(t, int64(4), category.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DeleteCategory_NotFound", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM categories WHERE id = \$1`).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.DeleteCategory(ctx, 9), repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
