package handlers

import (
	"math"

	"qusar-backend/internal/models"
)

// orderTotals is the price breakdown stored on an order at creation time.
type orderTotals struct {
	Subtotal float64
	Shipping float64
	Tax      float64
	Total    float64
}

func computeShipping(subtotal float64, s models.PaymentSettings) float64 {
	if s.FreeShippingAbove > 0 && subtotal >= s.FreeShippingAbove {
		return 0
	}
	return s.ShippingCharges
}

func computeTax(subtotal float64, s models.PaymentSettings) float64 {
	if s.TaxPercentage <= 0 {
		return 0
	}
	return roundMoney(subtotal * s.TaxPercentage / 100)
}

// computeOrderTotals prices a set of cart lines using the captured item
// prices, not the products' current prices.
func computeOrderTotals(items []models.CartItem, s models.PaymentSettings) orderTotals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	subtotal = roundMoney(subtotal)

	shipping := computeShipping(subtotal, s)
	tax := computeTax(subtotal, s)

	return orderTotals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    roundMoney(subtotal + shipping + tax),
	}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// codAllowed reports whether cash on delivery may be used for the given
// order total.
func codAllowed(total float64, s models.PaymentSettings) bool {
	if !s.CODEnabled {
		return false
	}
	if total < s.CODMinAmount {
		return false
	}
	if s.CODMaxAmount > 0 && total > s.CODMaxAmount {
		return false
	}
	return true
}
