package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Seller request statuses. pending and under_review count as active; at most
// one active request may exist per user.
const (
	SellerRequestPending     = "pending"
	SellerRequestApproved    = "approved"
	SellerRequestRejected    = "rejected"
	SellerRequestUnderReview = "under_review"
)

// ConversationMessage is one entry in the append-only admin/seller exchange.
type ConversationMessage struct {
	Sender    string    `bson:"sender" json:"sender"` // "admin" or "seller"
	Message   string    `bson:"message" json:"message"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// SellerRequest is an application to gain seller privileges, reviewed by an
// admin. Approval promotes the user's role and copies the business details
// into the user's embedded SellerInfo.
type SellerRequest struct {
	ID              primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	User            primitive.ObjectID    `bson:"user" json:"user"`
	BusinessName    string                `bson:"businessName" json:"businessName"`
	BusinessAddress string                `bson:"businessAddress" json:"businessAddress"`
	GSTNumber       string                `bson:"gstNumber,omitempty" json:"gstNumber,omitempty"`
	BankDetails     BankDetails           `bson:"bankDetails" json:"bankDetails"`
	Status          string                `bson:"status" json:"status"`
	Conversation    []ConversationMessage `bson:"conversation" json:"conversation"`
	AdminNotes      string                `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`
	ReviewedBy      *primitive.ObjectID   `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time            `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	RejectionReason string                `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time             `bson:"updatedAt" json:"updatedAt"`
}
