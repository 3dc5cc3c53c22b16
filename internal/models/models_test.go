package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"":            SortNewest,
		"newest":      SortNewest,
		"-created_at": SortNewest,
		"price":       SortPriceAsc,
		"price_low":   SortPriceAsc,
		"-price":      SortPriceDesc,
		"price_high":  SortPriceDesc,
		"name":        SortNameAsc,
		"-name":       SortNameDesc,
		"popularity":  SortNewest,
		"price; DROP": SortNewest,
	}

	for raw, want := range tests {
		assert.Equal(t, want, ParseSortKey(raw), "raw=%q", raw)
	}
}

func TestLineTotals(t *testing.T) {
	item := &CartItem{Quantity: 3, Product: &Product{Price: decimal.RequireFromString("2.50")}}
	assert.True(t, decimal.RequireFromString("7.50").Equal(item.LineTotal()))

	orphan := &CartItem{Quantity: 3}
	assert.True(t, orphan.LineTotal().IsZero())

	orderItem := &OrderItem{ProductPrice: decimal.RequireFromString("10.00"), Quantity: 2}
	assert.True(t, decimal.RequireFromString("20").Equal(orderItem.LineTotal()))
}

func TestOrderHelpers(t *testing.T) {
	order := &Order{Items: []OrderItem{{Quantity: 2}, {Quantity: 1}}}
	assert.Equal(t, 3, order.TotalItems())

	assert.True(t, OrderStatusShipped.Valid())
	assert.False(t, OrderStatus("lost").Valid())
}

func TestNewSearchSuggestion(t *testing.T) {
	s := NewSearchSuggestion(&Product{ID: 42, Name: "Lamp", Price: decimal.RequireFromString("19.99")})

	assert.Equal(t, "/products/42", s.URL)
	assert.Equal(t, "Lamp", s.Name)
}

func TestNewPaginatedResponse(t *testing.T) {
	page := NewPaginatedResponse([]int{1, 2}, 25, 2, 12)
	assert.Equal(t, 3, page.TotalPages)

	empty := NewPaginatedResponse(nil, 0, 1, 12)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestUserNewClaims(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &User{ID: uuid.New(), Email: "admin@example.com", IsAdmin: true}

	claims := user.NewClaims(now, 2*time.Hour)

	assert.Equal(t, user.ID, claims.UserID)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, now.Add(2*time.Hour), claims.ExpiresAt.Time)
	assert.Equal(t, now, claims.IssuedAt.Time)
}
