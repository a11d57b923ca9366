package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"qusar-backend/internal/models"
)

func TestMergeCartItemIncrementsExistingLine(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{
		{ID: primitive.NewObjectID(), Product: productID, Quantity: 2, Price: 100},
	}

	items = mergeCartItem(items, productID, 3, 120)

	if len(items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", items[0].Quantity)
	}
	if items[0].Price != 100 {
		t.Fatalf("captured price must not change on merge, got %v", items[0].Price)
	}
}

func TestMergeCartItemAppendsNewLine(t *testing.T) {
	existing := primitive.NewObjectID()
	items := []models.CartItem{
		{ID: primitive.NewObjectID(), Product: existing, Quantity: 1, Price: 50},
	}

	newProduct := primitive.NewObjectID()
	items = mergeCartItem(items, newProduct, 2, 75)

	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if items[1].Product != newProduct || items[1].Quantity != 2 || items[1].Price != 75 {
		t.Fatalf("unexpected new line: %+v", items[1])
	}
	if items[1].ID.IsZero() {
		t.Fatal("new line must get an id")
	}
}

func TestRequestedQuantityCountsExistingLine(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{
		{Product: productID, Quantity: 4},
	}

	if got := requestedQuantity(items, productID, 2); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
	if got := requestedQuantity(items, primitive.NewObjectID(), 2); got != 2 {
		t.Fatalf("expected 2 for new product, got %d", got)
	}
}

func TestCartTotal(t *testing.T) {
	cart := models.Cart{Items: []models.CartItem{
		{Quantity: 2, Price: 100},
		{Quantity: 1, Price: 49.5},
	}}

	if got := cart.Total(); got != 249.5 {
		t.Fatalf("expected 249.5, got %v", got)
	}
}

func TestPopulateCartItemsKeepsOrphanLines(t *testing.T) {
	known := primitive.NewObjectID()
	orphan := primitive.NewObjectID()
	items := []models.CartItem{
		{Product: known, Quantity: 1, Price: 10},
		{Product: orphan, Quantity: 2, Price: 20},
	}
	products := map[primitive.ObjectID]models.Product{
		known: {Name: "Widget", Price: 12, Stock: 3, Images: models.StringList{"w.jpg"}},
	}

	details := populateCartItems(items, products)

	if len(details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(details))
	}
	if details[0].Name != "Widget" || details[0].Image != "w.jpg" || details[0].Stock != 3 {
		t.Fatalf("unexpected populated line: %+v", details[0])
	}
	if details[1].Name != "" {
		t.Fatal("orphan line must keep snapshot only")
	}
}
