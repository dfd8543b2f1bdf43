package services

import (
	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// Totals is the priced breakdown of an order. Total is always
// Subtotal + Tax + ShippingFee exactly.
type Totals struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
}

// PricingEngine computes order totals from line items and store rules.
// It is pure: no I/O, deterministic for the same inputs, so a priced
// order can be reproduced for refunds or audits.
type PricingEngine struct {
	taxRate               decimal.Decimal
	freeShippingThreshold decimal.Decimal
	shippingFee           decimal.Decimal
}

// NewPricingEngine creates a PricingEngine with the given store rules.
func NewPricingEngine(taxRate, freeShippingThreshold, shippingFee decimal.Decimal) *PricingEngine {
	return &PricingEngine{
		taxRate:               taxRate,
		freeShippingThreshold: freeShippingThreshold,
		shippingFee:           shippingFee,
	}
}

// ComputeTotals prices a list of line items: subtotal is the sum of
// price*quantity, tax applies the configured rate, and shipping is waived
// once the subtotal reaches the free-shipping threshold. All arithmetic is
// decimal, never binary float.
func (e *PricingEngine) ComputeTotals(items []models.OrderItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	tax := subtotal.Mul(e.taxRate).Round(2)

	shippingFee := e.shippingFee
	if subtotal.GreaterThanOrEqual(e.freeShippingThreshold) {
		shippingFee = decimal.Zero
	}

	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		ShippingFee: shippingFee,
		Total:       subtotal.Add(tax).Add(shippingFee),
	}
}
