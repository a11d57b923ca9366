package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"qusar-backend/internal/middleware"
	"qusar-backend/internal/models"
)

type updateProfileRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Avatar string `json:"avatar"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type addressRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	AddressLine1 string `json:"addressLine1" binding:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	Pincode      string `json:"pincode" binding:"required"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"isDefault"`
}

func GetProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/profile"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
	}
}

func UpdateProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/profile"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		update := bson.M{"updatedAt": time.Now()}
		if name := strings.TrimSpace(req.Name); name != "" {
			update["name"] = name
		}
		if phone := strings.TrimSpace(req.Phone); phone != "" {
			update["phone"] = phone
		}
		if avatar := strings.TrimSpace(req.Avatar); avatar != "" {
			update["avatar"] = avatar
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := db.Collection("users").FindOneAndUpdate(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": update},
			findOneAndUpdateAfter(),
		).Decode(user); err != nil {
			log.Println("[USER] [ERROR] profile update failed:", err)
			respondError(c, http.StatusInternalServerError, route, "Error updating profile")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Profile updated successfully",
			"user":    user,
		})
	}
}

func ChangePassword(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/password"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		if user.PasswordHash == "" {
			respondError(c, http.StatusBadRequest, route, "Password login is not enabled for this account")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			respondError(c, http.StatusUnauthorized, route, "Current password is incorrect")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[USER] [ERROR] password hash failed:", err)
			respondError(c, http.StatusInternalServerError, route, "Error changing password")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{"passwordHash": string(hash), "updatedAt": time.Now()},
		}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error changing password")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed successfully"})
	}
}

// UploadAvatar stores a profile picture on local disk under uploadDir and
// replaces the previous one when it was an uploaded file.
func UploadAvatar(db *mongo.Database, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/avatar"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		file, err := c.FormFile("avatar")
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "No file uploaded")
			return
		}

		if file.Size > 2*1024*1024 {
			respondError(c, http.StatusBadRequest, route, "File too large (max 2MB)")
			return
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".gif":
		default:
			respondError(c, http.StatusBadRequest, route, "Only image files are allowed")
			return
		}

		avatarDir := filepath.Join(uploadDir, "avatars")
		if err := os.MkdirAll(avatarDir, 0o755); err != nil {
			log.Println("[USER] [ERROR] avatar dir create failed:", err)
			respondError(c, http.StatusInternalServerError, route, "Error uploading avatar")
			return
		}

		filename := fmt.Sprintf("avatar-%d-%s%s", time.Now().UnixMilli(), randomSuffix(), ext)
		if err := c.SaveUploadedFile(file, filepath.Join(avatarDir, filename)); err != nil {
			log.Println("[USER] [ERROR] avatar save failed:", err)
			respondError(c, http.StatusInternalServerError, route, "Error uploading avatar")
			return
		}

		// Remove the previous uploaded avatar; external URLs are left alone.
		if strings.HasPrefix(user.Avatar, "/uploads/") {
			safeDeleteUpload(uploadDir, user.Avatar)
		}

		avatarPath := "/uploads/avatars/" + filename

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{"avatar": avatarPath, "updatedAt": time.Now()},
		}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error uploading avatar")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Avatar uploaded successfully",
			"avatar":  avatarPath,
		})
	}
}

func AddAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/addresses"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		address := models.Address{
			ID:           newAddressID(),
			Name:         strings.TrimSpace(req.Name),
			Phone:        strings.TrimSpace(req.Phone),
			AddressLine1: strings.TrimSpace(req.AddressLine1),
			AddressLine2: strings.TrimSpace(req.AddressLine2),
			City:         strings.TrimSpace(req.City),
			State:        strings.TrimSpace(req.State),
			Pincode:      strings.TrimSpace(req.Pincode),
			Country:      strings.TrimSpace(req.Country),
			IsDefault:    req.IsDefault,
		}

		addresses := append(append([]models.Address{}, user.Addresses...), address)
		addresses = normalizeDefaultAddress(addresses, address.ID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{"addresses": addresses, "updatedAt": time.Now()},
		}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error adding address")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Address added successfully",
			"addresses": addresses,
		})
	}
}

func UpdateAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/addresses/:addressId"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		addressID := c.Param("addressId")

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		addresses := append([]models.Address{}, user.Addresses...)
		found := false
		for i := range addresses {
			if addresses[i].ID != addressID {
				continue
			}
			addresses[i] = models.Address{
				ID:           addressID,
				Name:         strings.TrimSpace(req.Name),
				Phone:        strings.TrimSpace(req.Phone),
				AddressLine1: strings.TrimSpace(req.AddressLine1),
				AddressLine2: strings.TrimSpace(req.AddressLine2),
				City:         strings.TrimSpace(req.City),
				State:        strings.TrimSpace(req.State),
				Pincode:      strings.TrimSpace(req.Pincode),
				Country:      strings.TrimSpace(req.Country),
				IsDefault:    req.IsDefault,
			}
			found = true
			break
		}
		if !found {
			respondError(c, http.StatusNotFound, route, "Address not found")
			return
		}

		if req.IsDefault {
			addresses = normalizeDefaultAddress(addresses, addressID)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{"addresses": addresses, "updatedAt": time.Now()},
		}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error updating address")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Address updated successfully",
			"addresses": addresses,
		})
	}
}

func DeleteAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/users/addresses/:addressId"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		addressID := c.Param("addressId")

		addresses := make([]models.Address, 0, len(user.Addresses))
		for _, a := range user.Addresses {
			if a.ID != addressID {
				addresses = append(addresses, a)
			}
		}
		if len(addresses) == len(user.Addresses) {
			respondError(c, http.StatusNotFound, route, "Address not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{"addresses": addresses, "updatedAt": time.Now()},
		}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error deleting address")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Address deleted successfully",
			"addresses": addresses,
		})
	}
}

func AddToWishlist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/wishlist/:productId"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("products").CountDocuments(ctx, bson.M{"_id": productID})
		if err != nil || count == 0 {
			respondError(c, http.StatusNotFound, route, "Product not found")
			return
		}

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$addToSet": bson.M{"wishlist": productID},
			"$set":      bson.M{"updatedAt": time.Now()},
		}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error updating wishlist")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Added to wishlist"})
	}
}

func RemoveFromWishlist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/users/wishlist/:productId"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$pull": bson.M{"wishlist": productID},
			"$set":  bson.M{"updatedAt": time.Now()},
		}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error updating wishlist")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Removed from wishlist"})
	}
}

func GetWishlist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/wishlist"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		products := []models.Product{}
		if len(user.Wishlist) > 0 {
			cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": user.Wishlist}})
			if err != nil {
				respondError(c, http.StatusInternalServerError, route, "Error fetching wishlist")
				return
			}
			defer cursor.Close(ctx)

			if err := cursor.All(ctx, &products); err != nil {
				respondError(c, http.StatusInternalServerError, route, "Error fetching wishlist")
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "wishlist": products})
	}
}

func newAddressID() string {
	return "addr_" + randomSuffix()
}

func randomSuffix() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
