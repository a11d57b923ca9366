package settings

import (
	"testing"

	"qusar-backend/internal/models"
)

func TestProviderDefaultsBeforeLoad(t *testing.T) {
	p := NewProvider(nil)

	got := p.Get()
	want := models.DefaultPaymentSettings()
	if got.Currency != want.Currency || got.ShippingCharges != want.ShippingCharges {
		t.Fatalf("expected default settings before load, got %+v", got)
	}
	if !got.CODEnabled {
		t.Fatal("expected COD enabled by default")
	}
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	p := NewProvider(nil)

	updated := models.DefaultPaymentSettings()
	updated.TaxPercentage = 12
	updated.RazorpayEnabled = true
	p.Refresh(updated)

	got := p.Get()
	if got.TaxPercentage != 12 || !got.RazorpayEnabled {
		t.Fatalf("expected refreshed snapshot, got %+v", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	p := NewProvider(nil)

	snapshot := p.Get()
	snapshot.TaxPercentage = 99

	if p.Get().TaxPercentage == 99 {
		t.Fatal("mutating a snapshot must not affect the provider")
	}
}
