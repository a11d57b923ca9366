package handlers

import (
	"qusar-backend/internal/models"
)

// statusFlow lists the statuses an order may move to from each status.
// Cancelled and Rejected are handled by dedicated endpoints with their own
// rules, so they only appear as targets here.
var statusFlow = map[string][]string{
	models.OrderPending:    {models.OrderProcessing, models.OrderCancelled, models.OrderRejected},
	models.OrderProcessing: {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped:    {models.OrderDelivered},
	models.OrderDelivered:  {},
	models.OrderCancelled:  {},
	models.OrderRejected:   {},
}

func canTransition(from, to string) bool {
	for _, next := range statusFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}

// canCancel reports whether the buyer may still cancel. Once the parcel is
// shipped the order can only complete or be handled offline.
func canCancel(status string) bool {
	return status == models.OrderPending || status == models.OrderProcessing
}

// canSellerReject reports whether the seller may still reject the order.
// Rejection is only possible before the seller has confirmed it.
func canSellerReject(order *models.Order) bool {
	return order.OrderStatus == models.OrderPending && !order.SellerConfirmed
}

// isTerminal reports whether the order can no longer change status.
func isTerminal(status string) bool {
	return len(statusFlow[status]) == 0
}

// canAdminSetStatus reports whether an admin may force the order into the
// given status. Admin updates are not bound to the buyer/seller flow; any
// known status may be applied directly, e.g. marking a COD order Delivered
// while it is still Pending.
func canAdminSetStatus(to string) bool {
	return models.ValidOrderStatus(to)
}
