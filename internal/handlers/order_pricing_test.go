package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"qusar-backend/internal/models"
)

func pricingSettings() models.PaymentSettings {
	s := models.DefaultPaymentSettings()
	s.ShippingCharges = 40
	s.FreeShippingAbove = 500
	s.TaxPercentage = 18
	s.CODMaxAmount = 50000
	return s
}

func TestComputeShippingBelowThreshold(t *testing.T) {
	got := computeShipping(499.99, pricingSettings())
	if got != 40 {
		t.Fatalf("expected shipping 40, got %v", got)
	}
}

func TestComputeShippingWaivedAtThreshold(t *testing.T) {
	got := computeShipping(500, pricingSettings())
	if got != 0 {
		t.Fatalf("expected free shipping at threshold, got %v", got)
	}
}

func TestComputeShippingNoThresholdConfigured(t *testing.T) {
	s := pricingSettings()
	s.FreeShippingAbove = 0
	if got := computeShipping(10000, s); got != 40 {
		t.Fatalf("expected flat charge when threshold disabled, got %v", got)
	}
}

func TestComputeTax(t *testing.T) {
	if got := computeTax(200, pricingSettings()); got != 36 {
		t.Fatalf("expected tax 36, got %v", got)
	}
	s := pricingSettings()
	s.TaxPercentage = 0
	if got := computeTax(200, s); got != 0 {
		t.Fatalf("expected zero tax, got %v", got)
	}
}

func TestComputeOrderTotalsUsesCapturedPrices(t *testing.T) {
	items := []models.CartItem{
		{ID: primitive.NewObjectID(), Product: primitive.NewObjectID(), Quantity: 2, Price: 150},
		{ID: primitive.NewObjectID(), Product: primitive.NewObjectID(), Quantity: 1, Price: 100},
	}

	totals := computeOrderTotals(items, pricingSettings())
	if totals.Subtotal != 400 {
		t.Fatalf("expected subtotal 400, got %v", totals.Subtotal)
	}
	if totals.Shipping != 40 {
		t.Fatalf("expected shipping 40, got %v", totals.Shipping)
	}
	if totals.Tax != 72 {
		t.Fatalf("expected tax 72, got %v", totals.Tax)
	}
	if totals.Total != 512 {
		t.Fatalf("expected total 512, got %v", totals.Total)
	}
}

func TestComputeOrderTotalsFreeShipping(t *testing.T) {
	items := []models.CartItem{
		{ID: primitive.NewObjectID(), Product: primitive.NewObjectID(), Quantity: 1, Price: 600},
	}

	totals := computeOrderTotals(items, pricingSettings())
	if totals.Shipping != 0 {
		t.Fatalf("expected free shipping, got %v", totals.Shipping)
	}
	if totals.Total != 708 {
		t.Fatalf("expected total 708, got %v", totals.Total)
	}
}

func TestCodAllowed(t *testing.T) {
	s := pricingSettings()

	if !codAllowed(1000, s) {
		t.Fatal("expected COD allowed for normal total")
	}
	if codAllowed(50001, s) {
		t.Fatal("expected COD rejected above max amount")
	}

	s.CODEnabled = false
	if codAllowed(1000, s) {
		t.Fatal("expected COD rejected when disabled")
	}

	s = pricingSettings()
	s.CODMinAmount = 100
	if codAllowed(50, s) {
		t.Fatal("expected COD rejected below min amount")
	}
}
