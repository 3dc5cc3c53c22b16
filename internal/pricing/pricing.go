// Package pricing derives cart and order totals from line prices.
package pricing

import (
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
)

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Calculator struct {
	TaxRate     decimal.Decimal
	ShippingFee decimal.Decimal
}

func NewCalculator(taxRate, shippingFee decimal.Decimal) Calculator {
	return Calculator{TaxRate: taxRate, ShippingFee: shippingFee}
}

// Totals rounds tax half-up to cents. Shipping is only charged on a non-empty subtotal.
func (c Calculator) Totals(lines []Line) models.Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	tax := subtotal.Mul(c.TaxRate).Round(2)

	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = c.ShippingFee
	}

	return models.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

func (c Calculator) ForCart(items []*models.CartItem) models.Totals {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		lines = append(lines, Line{UnitPrice: item.Product.Price, Quantity: item.Quantity})
	}

	return c.Totals(lines)
}
