package handlers

import (
	"testing"

	"qusar-backend/internal/models"
)

func TestMatchesGatewayOrder(t *testing.T) {
	order := &models.Order{
		PaymentDetails: &models.PaymentDetails{GatewayOrderID: "order_abc123"},
	}
	if !matchesGatewayOrder(order, "order_abc123") {
		t.Fatal("expected stored gateway order id to match")
	}
	if matchesGatewayOrder(order, "order_xyz999") {
		t.Fatal("a different gateway order id must not match")
	}
}

func TestMatchesGatewayOrderWithoutGatewayOrder(t *testing.T) {
	// Orders that never went through the gateway, e.g. COD orders, have no
	// stored id and must never match a callback.
	if matchesGatewayOrder(&models.Order{}, "order_abc123") {
		t.Fatal("order without payment details must not match")
	}
	order := &models.Order{PaymentDetails: &models.PaymentDetails{}}
	if matchesGatewayOrder(order, "") {
		t.Fatal("empty stored id must not match an empty callback id")
	}
}
