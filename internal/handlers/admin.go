package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"qusar-backend/internal/middleware"
	"qusar-backend/internal/models"
)

type createAdminRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func AdminListUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/users"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{}
		if role := c.Query("role"); role != "" {
			if !models.Role(role).Valid() {
				respondError(c, http.StatusBadRequest, route, "Unknown role")
				return
			}
			filter["role"] = role
		}
		if search := c.Query("search"); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"email": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("users").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching users")
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit))
		cursor, err := db.Collection("users").Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching users")
			return
		}
		defer cursor.Close(ctx)

		users := []models.User{}
		if err := cursor.All(ctx, &users); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching users")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"users":   users,
			"page":    page,
			"pages":   (total + int64(limit) - 1) / int64(limit),
			"total":   total,
		})
	}
}

// AdminListSellers returns both approved sellers and users with an
// unresolved legacy application.
func AdminListSellers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/sellers"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"$or": []bson.M{
			{"role": models.RoleSeller},
			{"sellerInfo.requestedAt": bson.M{"$ne": nil}},
		}}
		cursor, err := db.Collection("users").Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching sellers")
			return
		}
		defer cursor.Close(ctx)

		sellers := []models.User{}
		if err := cursor.All(ctx, &sellers); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching sellers")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "sellers": sellers})
	}
}

// AdminRemoveSeller demotes a seller back to a regular user. Their products
// are deactivated rather than deleted so existing orders keep resolving.
func AdminRemoveSeller(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/sellers/:userId"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid user id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID, "role": models.RoleSeller},
			bson.M{
				"$set":   bson.M{"role": models.RoleUser, "updatedAt": time.Now()},
				"$unset": bson.M{"sellerInfo": ""},
			},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error removing seller")
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "Seller not found")
			return
		}

		_, err = db.Collection("products").UpdateMany(ctx,
			bson.M{"seller": userID},
			bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
		)
		if err != nil {
			log.Println("[ADMIN] [WARN] product deactivation failed for seller:", userID.Hex(), err)
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Seller removed"})
	}
}

// createPrivilegedUser is shared by the admin and superadmin creation
// endpoints. Only a superadmin reaches either route.
func createPrivilegedUser(db *mongo.Database, role models.Role, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		var req createAdminRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		email := strings.ToLower(strings.TrimSpace(req.Email))
		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error creating account")
			return
		}
		if count > 0 {
			respondError(c, http.StatusConflict, route, "Email is already registered")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error creating account")
			return
		}

		now := time.Now()
		user := models.User{
			Name:         req.Name,
			Email:        email,
			PasswordHash: string(hash),
			Role:         role,
			Addresses:    []models.Address{},
			Wishlist:     []primitive.ObjectID{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error creating account")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			user.ID = id
		}

		log.Println("[ADMIN] [INFO] privileged account created:", email, "role:", role)
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Account created",
			"user":    publicUser(&user),
		})
	}
}

func AdminCreateAdmin(db *mongo.Database) gin.HandlerFunc {
	return createPrivilegedUser(db, models.RoleAdmin, "POST /api/admin/create-admin")
}

func AdminCreateSuperAdmin(db *mongo.Database) gin.HandlerFunc {
	return createPrivilegedUser(db, models.RoleSuperAdmin, "POST /api/admin/create-superadmin")
}

func AdminPendingProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/products/pending"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx,
			bson.M{"approved": false, "isActive": true},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
		)
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

		c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
	}
}

func AdminApproveProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/:id/approve"
		defer handlePanic(c, route)

		admin := middleware.CurrentUser(c)
		if admin == nil {
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

		now := time.Now()
		res, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"_id": productID, "approved": false},
			bson.M{"$set": bson.M{
				"approved":   true,
				"approvedBy": admin.ID,
				"approvedAt": now,
				"updatedAt":  now,
			}},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error approving product")
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "Product not found or already approved")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product approved"})
	}
}

// AdminRejectProduct removes a pending product outright. Approved products
// must be deactivated through the seller instead.
func AdminRejectProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/products/:id/reject"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID, "approved": false})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error rejecting product")
			return
		}
		if res.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "Product not found or already approved")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product rejected"})
	}
}

// AdminDashboard aggregates platform-wide headline numbers.
func AdminDashboard(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/dashboard"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		userCount, err := db.Collection("users").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error loading dashboard")
			return
		}
		sellerCount, err := db.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleSeller})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error loading dashboard")
			return
		}
		productCount, err := db.Collection("products").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error loading dashboard")
			return
		}
		pendingProducts, err := db.Collection("products").CountDocuments(ctx, bson.M{"approved": false, "isActive": true})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error loading dashboard")
			return
		}
		orderCount, err := db.Collection("orders").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error loading dashboard")
			return
		}
		pendingRequests, err := db.Collection("seller_requests").CountDocuments(ctx, bson.M{
			"status": bson.M{"$in": []string{models.SellerRequestPending, models.SellerRequestUnderReview}},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error loading dashboard")
			return
		}

		cursor, err := db.Collection("orders").Aggregate(ctx, mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"orderStatus": models.OrderDelivered}}},
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
				"totalUsers":            userCount,
				"totalSellers":          sellerCount,
				"totalProducts":         productCount,
				"pendingProducts":       pendingProducts,
				"totalOrders":           orderCount,
				"pendingSellerRequests": pendingRequests,
				"totalRevenue":          revenue,
			},
		})
	}
}
