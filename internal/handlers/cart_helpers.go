package handlers

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"qusar-backend/internal/models"
)

// mergeCartItem adds quantity of the product into the line list, merging
// into an existing line when present. The captured price of an existing
// line is kept; new lines capture the current product price.
func mergeCartItem(items []models.CartItem, productID primitive.ObjectID, quantity int, price float64) []models.CartItem {
	for i := range items {
		if items[i].Product == productID {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, models.CartItem{
		ID:       primitive.NewObjectID(),
		Product:  productID,
		Quantity: quantity,
		Price:    price,
	})
}

// requestedQuantity returns the total quantity of the product the cart
// would hold after adding qty, used for the stock check on merge.
func requestedQuantity(items []models.CartItem, productID primitive.ObjectID, qty int) int {
	for _, item := range items {
		if item.Product == productID {
			return item.Quantity + qty
		}
	}
	return qty
}

// cartItemDetail is a cart line joined with current product display fields.
type cartItemDetail struct {
	models.CartItem `json:",inline"`
	Name            string  `json:"name"`
	Image           string  `json:"image,omitempty"`
	CurrentPrice    float64 `json:"currentPrice"`
	Stock           int     `json:"stock"`
}

// populateCartItems joins cart lines with their product documents for
// client display. Lines whose product has disappeared are kept with the
// captured snapshot only.
func populateCartItems(items []models.CartItem, products map[primitive.ObjectID]models.Product) []cartItemDetail {
	details := make([]cartItemDetail, 0, len(items))
	for _, item := range items {
		detail := cartItemDetail{CartItem: item}
		if p, ok := products[item.Product]; ok {
			detail.Name = p.Name
			if len(p.Images) > 0 {
				detail.Image = p.Images[0]
			}
			detail.CurrentPrice = p.Price
			detail.Stock = p.Stock
		}
		details = append(details, detail)
	}
	return details
}
