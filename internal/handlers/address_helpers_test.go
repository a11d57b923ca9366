package handlers

import (
	"testing"

	"qusar-backend/internal/models"
)

func countDefaults(addresses []models.Address) int {
	n := 0
	for _, a := range addresses {
		if a.IsDefault {
			n++
		}
	}
	return n
}

func TestNormalizeDefaultAddressSingleDefault(t *testing.T) {
	addresses := []models.Address{
		{ID: "a", IsDefault: true},
		{ID: "b", IsDefault: true},
		{ID: "c"},
	}

	addresses = normalizeDefaultAddress(addresses, "c")

	if countDefaults(addresses) != 1 {
		t.Fatalf("expected exactly one default, got %d", countDefaults(addresses))
	}
	if !addresses[2].IsDefault {
		t.Fatal("expected address c to be the default")
	}
}

func TestNormalizeDefaultAddressUnknownIDKeepsOneDefault(t *testing.T) {
	addresses := []models.Address{
		{ID: "a"},
		{ID: "b"},
	}

	addresses = normalizeDefaultAddress(addresses, "missing")

	if countDefaults(addresses) != 1 {
		t.Fatalf("expected exactly one default, got %d", countDefaults(addresses))
	}
	if !addresses[0].IsDefault {
		t.Fatal("expected first address to become default")
	}
}

func TestNormalizeDefaultAddressEmptyList(t *testing.T) {
	if got := normalizeDefaultAddress(nil, "x"); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
