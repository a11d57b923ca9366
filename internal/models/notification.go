package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds.
const (
	NotificationOrderPlaced    = "order_placed"
	NotificationOrderConfirmed = "order_confirmed"
	NotificationOrderRejected  = "order_rejected"
	NotificationOrderCancelled = "order_cancelled"
	NotificationOrderStatus    = "order_status"
	NotificationSellerRequest  = "seller_request"
)

// Notification is a best-effort message to a user. Creation failures are
// logged and swallowed; they never fail the operation that produced them.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID  `bson:"user" json:"user"`
	Type      string              `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message" json:"message"`
	Order     *primitive.ObjectID `bson:"order,omitempty" json:"order,omitempty"`
	Read      bool                `bson:"read" json:"read"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
