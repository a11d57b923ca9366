package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qusar-backend/internal/middleware"
	"qusar-backend/internal/models"
)

type addReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// publicProductFilter is the base filter for everything a customer can see.
func publicProductFilter() bson.M {
	return bson.M{"approved": true, "isActive": true}
}

func ListProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := publicProductFilter()
		if category := c.Query("category"); category != "" {
			if !models.ValidCategory(category) {
				respondError(c, http.StatusBadRequest, route, "Unknown category")
				return
			}
			filter["category"] = category
		}
		if search := c.Query("search"); search != "" {
			filter["$text"] = bson.M{"$search": search}
		}
		if c.Query("featured") == "true" {
			filter["isFeatured"] = true
		}

		priceFilter := bson.M{}
		if min, ok := parsePriceQuery(c.Query("minPrice")); ok {
			priceFilter["$gte"] = min
		}
		if max, ok := parsePriceQuery(c.Query("maxPrice")); ok {
			priceFilter["$lte"] = max
		}
		if len(priceFilter) > 0 {
			filter["price"] = priceFilter
		}

		sort := bson.D{{Key: "createdAt", Value: -1}}
		switch c.Query("sort") {
		case "price_asc":
			sort = bson.D{{Key: "price", Value: 1}}
		case "price_desc":
			sort = bson.D{{Key: "price", Value: -1}}
		case "rating":
			sort = bson.D{{Key: "ratings.average", Value: -1}}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching products")
			return
		}

		opts := options.Find().
			SetSort(sort).
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

func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := publicProductFilter()
		filter["_id"] = productID

		var product models.Product
		err = db.Collection("products").FindOne(ctx, filter).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching product")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
	}
}

func ListCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "categories": models.Categories})
	}
}

// AddReview appends a review and updates the denormalized rating aggregate.
// One review per user per product; a second submission replaces the first.
func AddReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products/:id/reviews"
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

		var req addReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := publicProductFilter()
		filter["_id"] = productID

		var product models.Product
		err = db.Collection("products").FindOne(ctx, filter).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error adding review")
			return
		}

		reviews := upsertReview(product.Reviews, models.Review{
			User:      user.ID,
			Name:      user.Name,
			Rating:    req.Rating,
			Comment:   req.Comment,
			CreatedAt: time.Now(),
		})
		ratings := aggregateRatings(reviews)

		_, err = db.Collection("products").UpdateOne(ctx, bson.M{"_id": productID}, bson.M{"$set": bson.M{
			"reviews":   reviews,
			"ratings":   ratings,
			"updatedAt": time.Now(),
		}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error adding review")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Review added", "ratings": ratings})
	}
}
