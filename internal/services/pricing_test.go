package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"storefront/internal/models"
	"storefront/internal/services"
)

func defaultPricing() *services.PricingEngine {
	return services.NewPricingEngine(
		decimal.RequireFromString("0.10"),
		decimal.NewFromInt(100),
		decimal.NewFromInt(10),
	)
}

func item(price string, qty int) models.OrderItem {
	return models.OrderItem{
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
}

func TestComputeTotals_FreeShippingThreshold(t *testing.T) {
	// 2 x 50 reaches the free-shipping threshold exactly.
	totals := defaultPricing().ComputeTotals([]models.OrderItem{item("50", 2)})

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(100)), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(decimal.NewFromInt(10)), "tax = %s", totals.Tax)
	assert.True(t, totals.ShippingFee.IsZero(), "shipping = %s", totals.ShippingFee)
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(110)), "total = %s", totals.Total)
}

func TestComputeTotals_BelowFreeShippingThreshold(t *testing.T) {
	totals := defaultPricing().ComputeTotals([]models.OrderItem{item("20", 1)})

	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(20)), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(decimal.NewFromInt(2)), "tax = %s", totals.Tax)
	assert.True(t, totals.ShippingFee.Equal(decimal.NewFromInt(10)), "shipping = %s", totals.ShippingFee)
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(32)), "total = %s", totals.Total)
}

func TestComputeTotals_TotalIdentity(t *testing.T) {
	// total == subtotal + tax + shipping_fee must hold exactly, including
	// for prices that do not round-trip through binary floats.
	carts := [][]models.OrderItem{
		{item("0.10", 3), item("19.99", 1)},
		{item("33.33", 3)},
		{item("0.01", 1)},
		{},
	}
	engine := defaultPricing()
	for _, cart := range carts {
		totals := engine.ComputeTotals(cart)
		assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Tax).Add(totals.ShippingFee)),
			"identity broken for %v: %s != %s + %s + %s",
			cart, totals.Total, totals.Subtotal, totals.Tax, totals.ShippingFee)
	}
}

func TestComputeTotals_Deterministic(t *testing.T) {
	cart := []models.OrderItem{item("19.99", 2), item("5.25", 3)}
	engine := defaultPricing()

	first := engine.ComputeTotals(cart)
	second := engine.ComputeTotals(cart)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestPointsForTotal(t *testing.T) {
	cases := []struct {
		total  string
		points int
	}{
		{"105", 10}, // floor(105/10)
		{"110", 11},
		{"9.99", 0},
		{"10", 1},
		{"0", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.points, services.PointsForTotal(decimal.RequireFromString(c.total)),
			"total %s", c.total)
	}
}
