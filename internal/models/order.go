package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status state machine:
// Pending -> Processing -> Shipped -> Delivered (terminal).
// Side exits: Cancelled (user, before Shipped) and Rejected (seller, before
// confirmation). Both are terminal.
const (
	OrderPending    = "Pending"
	OrderProcessing = "Processing"
	OrderShipped    = "Shipped"
	OrderDelivered  = "Delivered"
	OrderCancelled  = "Cancelled"
	OrderRejected   = "Rejected"
)

// Payment methods.
const (
	PaymentCOD        = "COD"
	PaymentCard       = "Card"
	PaymentUPI        = "UPI"
	PaymentNetBanking = "NetBanking"
)

// Payment statuses.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// OrderItem is a snapshot of a product at order time. Copied fields keep
// historical orders stable when the product is later edited.
type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Name     string             `bson:"name" json:"name"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

// ShippingAddress is the address snapshot taken at order creation.
type ShippingAddress struct {
	Name         string `bson:"name" json:"name"`
	Phone        string `bson:"phone" json:"phone"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	Pincode      string `bson:"pincode" json:"pincode"`
}

// PaymentDetails records the gateway identifiers once an online payment is
// verified.
type PaymentDetails struct {
	Method            string     `bson:"method,omitempty" json:"method,omitempty"`
	GatewayOrderID    string     `bson:"gatewayOrderId,omitempty" json:"gatewayOrderId,omitempty"`
	GatewayPaymentID  string     `bson:"gatewayPaymentId,omitempty" json:"gatewayPaymentId,omitempty"`
	GatewaySignature  string     `bson:"gatewaySignature,omitempty" json:"gatewaySignature,omitempty"`
	PaidAt            *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}

// GeoPoint is a lat/lng pair used by tracking.
type GeoPoint struct {
	Lat     float64 `bson:"lat" json:"lat"`
	Lng     float64 `bson:"lng" json:"lng"`
	Address string  `bson:"address,omitempty" json:"address,omitempty"`
}

// TrackingInfo is the shipment tracking sub-document.
type TrackingInfo struct {
	SellerLocation    *GeoPoint  `bson:"sellerLocation,omitempty" json:"sellerLocation,omitempty"`
	CurrentLocation   *GeoPoint  `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
	EstimatedDelivery *time.Time `bson:"estimatedDelivery,omitempty" json:"estimatedDelivery,omitempty"`
	Distance          float64    `bson:"distance,omitempty" json:"distance,omitempty"`
}

// Order is immutable once placed except for its status fields. The totals
// invariant TotalPrice = ItemsPrice + ShippingPrice + TaxPrice holds from
// creation and is never recomputed.
//
// Seller is resolved from the first cart item's product owner; an order
// mixing products of several sellers is attributed to that one seller only.
type Order struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderNumber          string              `bson:"orderNumber" json:"orderNumber"`
	User                 primitive.ObjectID  `bson:"user" json:"user"`
	Seller               *primitive.ObjectID `bson:"seller,omitempty" json:"seller,omitempty"`
	Items                []OrderItem         `bson:"items" json:"items"`
	ShippingAddress      ShippingAddress     `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod        string              `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus        string              `bson:"paymentStatus" json:"paymentStatus"`
	PaymentDetails       *PaymentDetails     `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	ItemsPrice           float64             `bson:"itemsPrice" json:"itemsPrice"`
	ShippingPrice        float64             `bson:"shippingPrice" json:"shippingPrice"`
	TaxPrice             float64             `bson:"taxPrice" json:"taxPrice"`
	TotalPrice           float64             `bson:"totalPrice" json:"totalPrice"`
	OrderStatus          string              `bson:"orderStatus" json:"orderStatus"`
	SellerConfirmed      bool                `bson:"sellerConfirmed" json:"sellerConfirmed"`
	SellerConfirmedAt    *time.Time          `bson:"sellerConfirmedAt,omitempty" json:"sellerConfirmedAt,omitempty"`
	RejectedBySeller     bool                `bson:"rejectedBySeller" json:"rejectedBySeller"`
	RejectionReason      string              `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	TrackingInfo         *TrackingInfo       `bson:"trackingInfo,omitempty" json:"trackingInfo,omitempty"`
	ExpectedDeliveryDate time.Time           `bson:"expectedDeliveryDate" json:"expectedDeliveryDate"`
	DeliveredAt          *time.Time          `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CancelledAt          *time.Time          `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderRejected:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCOD, PaymentCard, PaymentUPI, PaymentNetBanking:
		return true
	}
	return false
}

// OnlinePaymentMethod reports whether m settles through the gateway rather
// than at delivery.
func OnlinePaymentMethod(m string) bool {
	return ValidPaymentMethod(m) && m != PaymentCOD
}
