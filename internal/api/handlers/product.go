package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalogService service.CatalogService
	validator      *validator.Validate
}

func NewProductHandler(catalogService service.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService, validator: validator.New()}
}

// parsePrice ignores malformed and negative bounds.
func parsePrice(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil
	}

	return &d
}

// ParseProductFilter reads the catalog query string. Values that do not parse are dropped.
func ParseProductFilter(q url.Values) models.ProductFilter {
	filter := models.ProductFilter{
		Search:       q.Get("q"),
		CategorySlug: q.Get("category_slug"),
		MinPrice:     parsePrice(q.Get("min_price")),
		MaxPrice:     parsePrice(q.Get("max_price")),
		Sort:         models.ParseSortKey(q.Get("sort")),
	}

	if filter.Search == "" {
		filter.Search = q.Get("search")
	}

	if raw := q.Get("category"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filter.CategoryID = &id
		}
	}

	if inStock, err := strconv.ParseBool(q.Get("in_stock")); err == nil {
		filter.InStockOnly = inStock
	}

	return filter
}

// ListProducts godoc
//
//	@Summary		List active products
//	@Description	Search, filter, sort and paginate the catalog. Malformed filter values are ignored.
//	@Tags			Products
//	@Produce		json
//	@Param			q				query		string											false	"Case-insensitive search on name and description"
//	@Param			category		query		int												false	"Category ID"
//	@Param			category_slug	query		string											false	"Category slug"
//	@Param			min_price		query		number											false	"Minimum price"
//	@Param			max_price		query		number											false	"Maximum price"
//	@Param			in_stock		query		bool											false	"Only products with stock"
//	@Param			sort			query		string											false	"newest, price_asc, price_desc, name_asc, name_desc"
//	@Param			page			query		int												false	"Page number (default: 1)"				minimum(1)
//	@Param			pageSize		query		int												false	"Items per page (default: 12, max: 100)"	minimum(1)	maximum(100)
//	@Success		200				{object}	models.PaginatedResponse{Data=[]models.Product}	"Products"
//	@Failure		500				{object}	response.ErrorResponse							"Internal server error"
//	@Router			/products [get]
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		filter := ParseProductFilter(r.URL.Query())
		page, pageSize := service.NormalizePage(utils.QueryInt(r, "page", 1), utils.QueryInt(r, "pageSize", service.DefaultPageSize))

		products, total, err := h.catalogService.ListProducts(r.Context(), filter, page, pageSize)
		if err != nil {
			logger.Error("Failed to list products", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewPaginatedResponse(products, total, page, pageSize))
	}
}

// GetProduct godoc
//
//	@Summary		Get a product
//	@Description	Returns the product with up to three related products from its category.
//	@Tags			Products
//	@Produce		json
//	@Param			id	path		int						true	"Product ID"
//	@Success		200	{object}	models.ProductDetail	"Product"
//	@Failure		400	{object}	response.ErrorResponse	"Invalid product ID"
//	@Failure		404	{object}	response.ErrorResponse	"Product not found"
//	@Router			/products/{id} [get]
func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseInt64Param(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		detail, err := h.catalogService.GetProduct(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to get product", slog.Int64("productId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, detail)
	}
}

// SearchSuggestions godoc
//
//	@Summary		Search suggestions
//	@Description	Up to ten products for type-ahead. Queries shorter than two characters return an empty list.
//	@Tags			Products
//	@Produce		json
//	@Param			q	query	string	true	"Search term"
//	@Success		200	{array}	models.SearchSuggestion
//	@Router			/products/search [get]
func (h *ProductHandler) SearchSuggestions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		suggestions, err := h.catalogService.SearchSuggestions(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Search suggestions failed", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		// bare list, the type-ahead widget reads it directly
		if err := response.WriteJson(w, http.StatusOK, suggestions); err != nil {
			slog.Error("Failed to write response", slog.Any("error", err))
		}
	}
}

// CreateProduct godoc
//
//	@Summary	Create a product (Admin)
//	@Tags		Products
//	@Accept		json
//	@Produce	json
//	@Param		product	body		models.CreateProductRequest	true	"Product"
//	@Success	201		{object}	models.Product
//	@Failure	400		{object}	response.ErrorResponse	"Validation error"
//	@Failure	403		{object}	response.ErrorResponse	"Admin access required"
//	@Security	BearerAuth
//	@Router		/products [post]
func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create product input")
			return
		}

		product, err := h.catalogService.CreateProduct(r.Context(), &req)
		if err != nil {
			logger.Error("Error during product creation", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product created successfully", slog.Int64("productId", product.ID))
		response.Success(w, http.StatusCreated, product)
	}
}

// UpdateProduct godoc
//
//	@Summary		Update a product (Admin)
//	@Description	Partial update. Omitted fields are left unchanged.
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Product ID"
//	@Param			product	body		models.UpdateProductRequest	true	"Fields to change"
//	@Success		200		{object}	models.Product
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		404		{object}	response.ErrorResponse	"Product not found"
//	@Security		BearerAuth
//	@Router			/products/{id} [put]
func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseInt64Param(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		logger = logger.With(slog.Int64("productId", id))

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update product input")
			return
		}

		product, err := h.catalogService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			logger.Error("Failed to update product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product updated")
		response.Success(w, http.StatusOK, product)
	}
}

// DeleteProduct godoc
//
//	@Summary	Delete a product (Admin)
//	@Tags		Products
//	@Param		id	path	int	true	"Product ID"
//	@Success	204
//	@Failure	404	{object}	response.ErrorResponse	"Product not found"
//	@Security	BearerAuth
//	@Router		/products/{id} [delete]
func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseInt64Param(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
			logger.Error("Failed to delete product", slog.Int64("productId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product deleted", slog.Int64("productId", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
