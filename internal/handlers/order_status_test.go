package handlers

import (
	"testing"

	"qusar-backend/internal/models"
)

func TestStatusFlowHappyPath(t *testing.T) {
	steps := []string{models.OrderPending, models.OrderProcessing, models.OrderShipped, models.OrderDelivered}
	for i := 0; i < len(steps)-1; i++ {
		if !canTransition(steps[i], steps[i+1]) {
			t.Fatalf("expected %s -> %s to be allowed", steps[i], steps[i+1])
		}
	}
}

func TestStatusFlowNoSkipping(t *testing.T) {
	if canTransition(models.OrderPending, models.OrderShipped) {
		t.Fatal("pending must not jump straight to shipped")
	}
	if canTransition(models.OrderPending, models.OrderDelivered) {
		t.Fatal("pending must not jump straight to delivered")
	}
	if canTransition(models.OrderProcessing, models.OrderDelivered) {
		t.Fatal("processing must not jump straight to delivered")
	}
}

func TestStatusFlowNoBackwardMoves(t *testing.T) {
	if canTransition(models.OrderShipped, models.OrderProcessing) {
		t.Fatal("shipped must not move back to processing")
	}
	if canTransition(models.OrderDelivered, models.OrderShipped) {
		t.Fatal("delivered must not move back to shipped")
	}
}

func TestTerminalStatusesAreFrozen(t *testing.T) {
	for _, status := range []string{models.OrderDelivered, models.OrderCancelled, models.OrderRejected} {
		if !isTerminal(status) {
			t.Fatalf("expected %s to be terminal", status)
		}
		for _, target := range []string{models.OrderPending, models.OrderProcessing, models.OrderShipped, models.OrderDelivered} {
			if canTransition(status, target) {
				t.Fatalf("%s must not transition to %s", status, target)
			}
		}
	}
}

func TestCanCancel(t *testing.T) {
	if !canCancel(models.OrderPending) || !canCancel(models.OrderProcessing) {
		t.Fatal("expected cancel allowed before shipping")
	}
	for _, status := range []string{models.OrderShipped, models.OrderDelivered, models.OrderCancelled, models.OrderRejected} {
		if canCancel(status) {
			t.Fatalf("expected cancel rejected for %s", status)
		}
	}
}

func TestAdminMaySetAnyStatus(t *testing.T) {
	for _, status := range []string{
		models.OrderPending, models.OrderProcessing, models.OrderShipped,
		models.OrderDelivered, models.OrderCancelled, models.OrderRejected,
	} {
		if !canAdminSetStatus(status) {
			t.Fatalf("expected admin to be able to set %s", status)
		}
	}
	if canAdminSetStatus("Lost") {
		t.Fatal("unknown status must be refused")
	}
}

func TestAdminOverrideIgnoresFlow(t *testing.T) {
	// A COD order can be marked Delivered while still Pending or Processing,
	// even though the buyer/seller flow forbids those jumps.
	for _, from := range []string{models.OrderPending, models.OrderProcessing} {
		if canTransition(from, models.OrderDelivered) {
			t.Fatalf("flow unexpectedly allows %s -> Delivered", from)
		}
	}
	if !canAdminSetStatus(models.OrderDelivered) {
		t.Fatal("admin must be able to force Delivered")
	}
}

func TestCanSellerReject(t *testing.T) {
	order := &models.Order{OrderStatus: models.OrderPending}
	if !canSellerReject(order) {
		t.Fatal("expected reject allowed for unconfirmed pending order")
	}

	order.SellerConfirmed = true
	if canSellerReject(order) {
		t.Fatal("expected reject refused after confirmation")
	}

	order = &models.Order{OrderStatus: models.OrderProcessing}
	if canSellerReject(order) {
		t.Fatal("expected reject refused once processing")
	}
}
