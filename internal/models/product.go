package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID          int64           `json:"id"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Category    *Category       `json:"category,omitempty"`
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}

// ProductDetail is the product page: the product plus a few neighbours from its category.
type ProductDetail struct {
	Product         *Product   `json:"product"`
	RelatedProducts []*Product `json:"related_products"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Slug        string `json:"slug,omitempty" validate:"omitempty,max=100"`
	Description string `json:"description,omitempty"`
}

type CreateProductRequest struct {
	CategoryID  *int64          `json:"category_id,omitempty"`
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

type UpdateProductRequest struct {
	CategoryID  *int64           `json:"category_id,omitempty"`
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// SortKey is one of the enumerated catalog orderings.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
)

var sortAliases = map[string]SortKey{
	"newest":      SortNewest,
	"-created_at": SortNewest,
	"price_asc":   SortPriceAsc,
	"price":       SortPriceAsc,
	"price_low":   SortPriceAsc,
	"price_desc":  SortPriceDesc,
	"-price":      SortPriceDesc,
	"price_high":  SortPriceDesc,
	"name_asc":    SortNameAsc,
	"name":        SortNameAsc,
	"name_desc":   SortNameDesc,
	"-name":       SortNameDesc,
}

// ParseSortKey never fails: anything unrecognised sorts newest first.
func ParseSortKey(raw string) SortKey {
	if key, ok := sortAliases[raw]; ok {
		return key
	}

	return SortNewest
}

// ProductFilter narrows the catalog listing. Zero values impose no constraint.
type ProductFilter struct {
	Search       string
	CategoryID   *int64
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	InStockOnly  bool
	Sort         SortKey
}

type SearchSuggestion struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	URL   string          `json:"url"`
}

func NewSearchSuggestion(p *Product) SearchSuggestion {
	return SearchSuggestion{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		URL:   fmt.Sprintf("/products/%d", p.ID),
	}
}
