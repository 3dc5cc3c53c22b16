package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
)

const (
	DefaultPageSize     = 12
	MaxPageSize         = 100
	relatedProductLimit = 3
	suggestionLimit     = 10
	minSuggestionLength = 2
)

type CatalogService interface {
	ListProducts(ctx context.Context, filter models.ProductFilter, page, pageSize int) ([]*models.Product, int, error)
	GetProduct(ctx context.Context, id int64) (*models.ProductDetail, error)
	SearchSuggestions(ctx context.Context, query string) ([]models.SearchSuggestion, error)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	cache      cache.Cache
	cacheCfg   config.CacheConfig
}

func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository, c cache.Cache, cacheCfg config.CacheConfig) CatalogService {
	return &catalogService{products: products, categories: categories, cache: c, cacheCfg: cacheCfg}
}

// NormalizePage applies the catalog paging defaults.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}

	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	return page, pageSize
}

func (s *catalogService) ListProducts(ctx context.Context, filter models.ProductFilter, page, pageSize int) ([]*models.Product, int, error) {
	page, pageSize = NormalizePage(page, pageSize)

	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Sort == "" {
		filter.Sort = models.SortNewest
	}

	products, total, err := s.products.ListProducts(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*models.ProductDetail, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	related := []*models.Product{}
	if product.CategoryID != nil {
		list, err := s.products.ListRelated(ctx, product, relatedProductLimit)
		if err != nil {
			// the product page still renders without its neighbours
			middleware.LoggerFromContext(ctx).Warn("Failed to load related products", slog.Int64("productId", id), slog.Any("error", err))
		} else {
			related = list
		}
	}

	return &models.ProductDetail{Product: product, RelatedProducts: related}, nil
}

func (s *catalogService) SearchSuggestions(ctx context.Context, query string) ([]models.SearchSuggestion, error) {
	query = strings.TrimSpace(query)

	suggestions := []models.SearchSuggestion{}
	if len([]rune(query)) < minSuggestionLength {
		return suggestions, nil
	}

	products, err := s.products.SearchProducts(ctx, query, suggestionLimit)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to search products").WithError(err)
	}

	for _, p := range products {
		suggestions = append(suggestions, models.NewSearchSuggestion(p))
	}

	return suggestions, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if !req.Price.IsPositive() {
		return nil, appErrors.ValidationError("Price must be greater than zero")
	}

	if req.Stock < 0 {
		return nil, appErrors.ValidationError("Stock cannot be negative")
	}

	product := &models.Product{
		CategoryID:  req.CategoryID,
		Name:        utils.SanitizeText(req.Name),
		Description: utils.SanitizeText(req.Description),
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    true,
	}

	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if product.Name == "" {
		return nil, appErrors.ValidationError("Product name is required")
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {
	patch := *req

	if patch.Name != nil {
		name := utils.SanitizeText(*patch.Name)
		patch.Name = &name
	}

	if patch.Description != nil {
		description := utils.SanitizeText(*patch.Description)
		patch.Description = &description
	}

	if patch.Price != nil && !patch.Price.IsPositive() {
		return nil, appErrors.ValidationError("Price must be greater than zero")
	}

	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, appErrors.ValidationError("Stock cannot be negative")
	}

	product, err := s.products.UpdateProduct(ctx, id, &patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.NotFoundError("Product not found").WithError(err)
		}
		return appErrors.DatabaseError("Failed to delete product").WithError(err)
	}

	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	logger := middleware.LoggerFromContext(ctx)

	categories, err := cache.Remember(ctx, s.cache, logger, cache.CategoryListKey, s.cacheCfg.DefaultTTL, s.categories.ListCategories)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch categories").WithError(err)
	}

	return categories, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	name := utils.SanitizeText(req.Name)
	if name == "" {
		return nil, appErrors.ValidationError("Category name is required")
	}

	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(name)
	}

	if slug == "" {
		return nil, appErrors.ValidationError("Category slug could not be derived from the name")
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: utils.SanitizeText(req.Description),
	}

	if err := s.categories.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, appErrors.DuplicateEntryError("Category already exists").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to create category").WithError(err)
	}

	s.invalidateCategories(ctx)

	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.NotFoundError("Category not found").WithError(err)
		}
		return appErrors.DatabaseError("Failed to delete category").WithError(err)
	}

	s.invalidateCategories(ctx)

	return nil
}

func (s *catalogService) invalidateCategories(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.CategoryListKey); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to invalidate category cache", slog.Any("error", err))
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
}
