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
	"go.mongodb.org/mongo-driver/mongo/options"

	"qusar-backend/internal/middleware"
	"qusar-backend/internal/models"
	"qusar-backend/internal/notify"
)

type sellerApplyRequest struct {
	BusinessName    string             `json:"businessName" binding:"required"`
	BusinessAddress string             `json:"businessAddress" binding:"required"`
	GSTNumber       string             `json:"gstNumber"`
	BankDetails     models.BankDetails `json:"bankDetails" binding:"required"`
	Message         string             `json:"message"`
}

type sellerProductRequest struct {
	Name           string            `json:"name" binding:"required"`
	Description    string            `json:"description" binding:"required"`
	Price          float64           `json:"price" binding:"required,gt=0"`
	OriginalPrice  float64           `json:"originalPrice"`
	Category       string            `json:"category" binding:"required"`
	Subcategory    string            `json:"subcategory"`
	Brand          string            `json:"brand"`
	Images         []string          `json:"images"`
	Stock          int               `json:"stock" binding:"min=0"`
	Specifications map[string]string `json:"specifications"`
	Tags           []string          `json:"tags"`
}

// activeRequestFilter matches any seller request still under review.
func activeRequestFilter(userID primitive.ObjectID) bson.M {
	return bson.M{
		"user":   userID,
		"status": bson.M{"$in": []string{models.SellerRequestPending, models.SellerRequestUnderReview}},
	}
}

// ApplyForSeller opens a seller request. A user may hold at most one active
// request, and existing sellers cannot apply again.
func ApplyForSeller(db *mongo.Database, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/seller/request"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}
		if user.Role.AtLeast(models.RoleSeller) {
			respondError(c, http.StatusBadRequest, route, "You are already a seller")
			return
		}

		var req sellerApplyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("seller_requests").CountDocuments(ctx, activeRequestFilter(user.ID))
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error submitting request")
			return
		}
		if count > 0 {
			respondError(c, http.StatusBadRequest, route, "You already have a pending seller request")
			return
		}

		now := time.Now()
		request := models.SellerRequest{
			User:            user.ID,
			BusinessName:    req.BusinessName,
			BusinessAddress: req.BusinessAddress,
			GSTNumber:       req.GSTNumber,
			BankDetails:     req.BankDetails,
			Status:          models.SellerRequestPending,
			Conversation:    []models.ConversationMessage{},
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if req.Message != "" {
			request.Conversation = append(request.Conversation, models.ConversationMessage{
				Sender:    "seller",
				Message:   req.Message,
				Timestamp: now,
			})
		}

		res, err := db.Collection("seller_requests").InsertOne(ctx, request)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error submitting request")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			request.ID = id
		}

		log.Println("[SELLER] [INFO] seller request submitted by:", user.ID.Hex())
		dispatcher.Dispatch(user.ID, models.NotificationSellerRequest,
			"Application received", "Your seller application has been received and is under review.", nil)

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Seller request submitted",
			"request": request,
		})
	}
}

// MySellerRequest returns the caller's latest request, so applicants can
// follow the review and the conversation.
func MySellerRequest(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/seller/request"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		var request models.SellerRequest
		err := db.Collection("seller_requests").FindOne(ctx, bson.M{"user": user.ID}, opts).Decode(&request)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "No seller request found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching request")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "request": request})
	}
}

// ReplyToSellerRequest appends a seller-side message to the conversation of
// an active request.
func ReplyToSellerRequest(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/seller/request/message"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		var req struct {
			Message string `json:"message" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("seller_requests").UpdateOne(ctx, activeRequestFilter(user.ID), bson.M{
			"$push": bson.M{"conversation": models.ConversationMessage{
				Sender:    "seller",
				Message:   req.Message,
				Timestamp: time.Now(),
			}},
			"$set": bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error sending message")
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "No active seller request found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent"})
	}
}

// AddSellerProduct creates a product owned by the seller. New products need
// admin approval before customers can see them.
func AddSellerProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/seller/products"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		var req sellerProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		if !models.ValidCategory(req.Category) {
			respondError(c, http.StatusBadRequest, route, "Unknown category")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		product := models.Product{
			Name:           req.Name,
			Description:    req.Description,
			Price:          req.Price,
			OriginalPrice:  req.OriginalPrice,
			Category:       req.Category,
			Subcategory:    req.Subcategory,
			Brand:          req.Brand,
			Images:         req.Images,
			Stock:          req.Stock,
			Specifications: req.Specifications,
			Tags:           req.Tags,
			IsActive:       true,
			Seller:         &user.ID,
			Approved:       false,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if product.OriginalPrice > product.Price {
			product.Discount = roundMoney((product.OriginalPrice - product.Price) / product.OriginalPrice * 100)
		}

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error adding product")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			product.ID = id
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Product submitted for approval",
			"product": product,
		})
	}
}

// UpdateSellerProduct edits a product the seller owns. Any edit resets the
// approval flag so the change goes through moderation again.
func UpdateSellerProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/seller/products/:id"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid product id")
			return
		}

		var req sellerProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		if !models.ValidCategory(req.Category) {
			respondError(c, http.StatusBadRequest, route, "Unknown category")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		set := bson.M{
			"name":           req.Name,
			"description":    req.Description,
			"price":          req.Price,
			"originalPrice":  req.OriginalPrice,
			"category":       req.Category,
			"subcategory":    req.Subcategory,
			"brand":          req.Brand,
			"images":         req.Images,
			"stock":          req.Stock,
			"specifications": req.Specifications,
			"tags":           req.Tags,
			"approved":       false,
			"updatedAt":      time.Now(),
		}
		res, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"_id": productID, "seller": user.ID},
			bson.M{"$set": set, "$unset": bson.M{"approvedBy": "", "approvedAt": ""}},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error updating product")
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "Product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated and resubmitted for approval"})
	}
}

func DeleteSellerProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/seller/products/:id"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID, "seller": user.ID})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error deleting product")
			return
		}
		if res.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "Product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted"})
	}
}

func SellerProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/seller/products"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		page, limit, err := parsePaginationParams(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"seller": user.ID}
		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching products")
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit))
		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching products")
			return
		}
		defer cursor.Close(ctx)

		products := []models.Product{}
		if err := cursor.All(ctx, &products); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching products")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"products": products,
			"page":     page,
			"pages":    (total + int64(limit) - 1) / int64(limit),
			"total":    total,
		})
	}
}

// SellerDashboard aggregates the seller's headline numbers.
func SellerDashboard(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/seller/dashboard"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		productCount, err := db.Collection("products").CountDocuments(ctx, bson.M{"seller": user.ID})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error loading dashboard")
			return
		}
		pendingProducts, err := db.Collection("products").CountDocuments(ctx, bson.M{"seller": user.ID, "approved": false})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error loading dashboard")
			return
		}
		orderCount, err := db.Collection("orders").CountDocuments(ctx, bson.M{"seller": user.ID})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error loading dashboard")
			return
		}
		pendingOrders, err := db.Collection("orders").CountDocuments(ctx, bson.M{"seller": user.ID, "orderStatus": models.OrderPending})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error loading dashboard")
			return
		}

		// Revenue counts delivered orders only.
		cursor, err := db.Collection("orders").Aggregate(ctx, mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"seller": user.ID, "orderStatus": models.OrderDelivered}}},
			{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalPrice"}}}},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error loading dashboard")
			return
		}
		defer cursor.Close(ctx)

		revenue := 0.0
		var agg []struct {
			Total float64 `bson:"total"`
		}
		if err := cursor.All(ctx, &agg); err == nil && len(agg) > 0 {
			revenue = agg[0].Total
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"dashboard": gin.H{
				"totalProducts":   productCount,
				"pendingProducts": pendingProducts,
				"totalOrders":     orderCount,
				"pendingOrders":   pendingOrders,
				"totalRevenue":    revenue,
			},
		})
	}
}
