package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"qusar-backend/internal/middleware"
	"qusar-backend/internal/models"
)

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// The stock checks below re-read the product at call time with no
// reservation: two concurrent checkouts can both pass. Order creation is
// the only place where the decrement is made atomic.

func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/cart"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		err := db.Collection("carts").FindOne(ctx, bson.M{"user": user.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"cart":    gin.H{"items": []cartItemDetail{}, "totalAmount": 0},
			})
			return
		}
		if err != nil {
			log.Println("[CART] [ERROR] cart lookup failed:", err)
			respondError(c, http.StatusInternalServerError, route, "Error fetching cart")
			return
		}

		respondCart(c, ctx, db, &cart, "")
	}
}

func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		if req.Quantity <= 0 {
			req.Quantity = 1
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error adding to cart")
			return
		}

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"user": user.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			cart = models.Cart{
				User:      user.ID,
				Items:     []models.CartItem{},
				CreatedAt: time.Now(),
			}
		} else if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error adding to cart")
			return
		}

		if requestedQuantity(cart.Items, productID, req.Quantity) > product.Stock {
			respondError(c, http.StatusBadRequest, route, "Insufficient stock")
			return
		}

		cart.Items = mergeCartItem(cart.Items, productID, req.Quantity, product.Price)
		cart.TotalAmount = cart.Total()
		cart.UpdatedAt = time.Now()

		if err := upsertCart(ctx, db, &cart); err != nil {
			log.Println("[CART] [ERROR] cart save failed:", err)
			respondError(c, http.StatusInternalServerError, route, "Error adding to cart")
			return
		}

		respondCart(c, ctx, db, &cart, "Item added to cart")
	}
}

func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/cart/:itemId"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid item id")
			return
		}

		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		if req.Quantity < 1 {
			respondError(c, http.StatusBadRequest, route, "Quantity must be at least 1")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		if err := db.Collection("carts").FindOne(ctx, bson.M{"user": user.ID}).Decode(&cart); err != nil {
			respondError(c, http.StatusNotFound, route, "Cart not found")
			return
		}

		idx := -1
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			respondError(c, http.StatusNotFound, route, "Item not found in cart")
			return
		}

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": cart.Items[idx].Product}).Decode(&product); err != nil {
			respondError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if req.Quantity > product.Stock {
			respondError(c, http.StatusBadRequest, route, "Insufficient stock")
			return
		}

		cart.Items[idx].Quantity = req.Quantity
		cart.TotalAmount = cart.Total()
		cart.UpdatedAt = time.Now()

		if err := upsertCart(ctx, db, &cart); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error updating cart")
			return
		}

		respondCart(c, ctx, db, &cart, "Cart updated")
	}
}

func RemoveCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart/:itemId"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid item id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		if err := db.Collection("carts").FindOne(ctx, bson.M{"user": user.ID}).Decode(&cart); err != nil {
			respondError(c, http.StatusNotFound, route, "Cart not found")
			return
		}

		items := make([]models.CartItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			if item.ID != itemID {
				items = append(items, item)
			}
		}
		if len(items) == len(cart.Items) {
			respondError(c, http.StatusNotFound, route, "Item not found in cart")
			return
		}

		cart.Items = items
		cart.TotalAmount = cart.Total()
		cart.UpdatedAt = time.Now()

		if err := upsertCart(ctx, db, &cart); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error removing from cart")
			return
		}

		respondCart(c, ctx, db, &cart, "Item removed from cart")
	}
}

func ClearCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("carts").DeleteOne(ctx, bson.M{"user": user.ID}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error clearing cart")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared"})
	}
}

func upsertCart(ctx context.Context, db *mongo.Database, cart *models.Cart) error {
	if cart.ID.IsZero() {
		res, err := db.Collection("carts").InsertOne(ctx, cart)
		if err != nil {
			return err
		}
		cart.ID, _ = res.InsertedID.(primitive.ObjectID)
		return nil
	}

	_, err := db.Collection("carts").ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart)
	return err
}

// respondCart joins the cart with current product details and writes the
// standard cart response.
func respondCart(c *gin.Context, ctx context.Context, db *mongo.Database, cart *models.Cart, message string) {
	productIDs := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		productIDs = append(productIDs, item.Product)
	}

	products := make(map[primitive.ObjectID]models.Product, len(productIDs))
	if len(productIDs) > 0 {
		cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": productIDs}})
		if err == nil {
			var list []models.Product
			if err := cursor.All(ctx, &list); err == nil {
				for _, p := range list {
					products[p.ID] = p
				}
			}
			cursor.Close(ctx)
		} else {
			log.Println("[CART] [WARN] product join failed:", err)
		}
	}

	body := gin.H{
		"success": true,
		"cart": gin.H{
			"id":          cart.ID.Hex(),
			"items":       populateCartItems(cart.Items, products),
			"totalAmount": cart.TotalAmount,
		},
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(http.StatusOK, body)
}
