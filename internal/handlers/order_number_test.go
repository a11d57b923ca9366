package handlers

import (
	"strings"
	"testing"
)

func TestNewOrderNumberFormat(t *testing.T) {
	n := newOrderNumber()
	if !strings.HasPrefix(n, "ORD") {
		t.Fatalf("expected ORD prefix, got %q", n)
	}
	digits := strings.TrimPrefix(n, "ORD")
	if len(digits) < 13 {
		t.Fatalf("expected millisecond timestamp plus suffix, got %q", n)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			t.Fatalf("expected digits only after prefix, got %q", n)
		}
	}
}

func TestNewOrderNumberNotConstant(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		seen[newOrderNumber()] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected order numbers to vary")
	}
}
