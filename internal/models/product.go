package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories is the closed set of product categories.
var Categories = []string{
	"Electronics", "Fashion", "Home & Kitchen", "Books", "Sports",
	"Beauty", "Toys", "Grocery", "Mobile", "Computers",
}

// ValidCategory reports whether name is a known category.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Review is a single customer review embedded on a product.
type Review struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Name      string             `bson:"name" json:"name"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Ratings is the denormalized review aggregate.
type Ratings struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

// Product is the catalog document. Stock and Price must never go negative.
// Seller is nil for platform-added catalog items (seeded products).
type Product struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name"`
	Description    string              `bson:"description" json:"description"`
	Price          float64             `bson:"price" json:"price"`
	OriginalPrice  float64             `bson:"originalPrice" json:"originalPrice"`
	Discount       float64             `bson:"discount" json:"discount"`
	Category       string              `bson:"category" json:"category"`
	Subcategory    string              `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Brand          string              `bson:"brand" json:"brand"`
	Images         StringList          `bson:"images" json:"images"`
	Stock          int                 `bson:"stock" json:"stock"`
	Ratings        Ratings             `bson:"ratings" json:"ratings"`
	Reviews        []Review            `bson:"reviews" json:"reviews"`
	Specifications map[string]string   `bson:"specifications,omitempty" json:"specifications,omitempty"`
	Tags           StringList          `bson:"tags,omitempty" json:"tags,omitempty"`
	IsFeatured     bool                `bson:"isFeatured" json:"isFeatured"`
	IsActive       bool                `bson:"isActive" json:"isActive"`
	Seller         *primitive.ObjectID `bson:"seller,omitempty" json:"seller,omitempty"`
	Approved       bool                `bson:"approved" json:"approved"`
	ApprovedBy     *primitive.ObjectID `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}
