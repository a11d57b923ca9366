package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentSettings is a singleton document holding gateway credentials and
// store-wide commercial parameters. RazorpayKeySecret is stored encrypted as
// "iv_hex:ciphertext_hex" and must never be returned by a client-facing
// endpoint.
type PaymentSettings struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RazorpayKeyID     string              `bson:"razorpayKeyId" json:"razorpayKeyId"`
	RazorpayKeySecret string              `bson:"razorpayKeySecret" json:"-"`
	RazorpayEnabled   bool                `bson:"razorpayEnabled" json:"razorpayEnabled"`
	RazorpayTestMode  bool                `bson:"razorpayTestMode" json:"razorpayTestMode"`
	CODEnabled        bool                `bson:"codEnabled" json:"codEnabled"`
	CODMinAmount      float64             `bson:"codMinAmount" json:"codMinAmount"`
	CODMaxAmount      float64             `bson:"codMaxAmount" json:"codMaxAmount"`
	Currency          string              `bson:"currency" json:"currency"`
	ShippingCharges   float64             `bson:"shippingCharges" json:"shippingCharges"`
	FreeShippingAbove float64             `bson:"freeShippingAbove" json:"freeShippingAbove"`
	TaxPercentage     float64             `bson:"taxPercentage" json:"taxPercentage"`
	UpdatedBy         *primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// DefaultPaymentSettings returns the values used when no settings document
// exists yet.
func DefaultPaymentSettings() PaymentSettings {
	now := time.Now()
	return PaymentSettings{
		RazorpayEnabled:   false,
		RazorpayTestMode:  true,
		CODEnabled:        true,
		CODMinAmount:      0,
		CODMaxAmount:      50000,
		Currency:          "INR",
		ShippingCharges:   40,
		FreeShippingAbove: 500,
		TaxPercentage:     18,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
