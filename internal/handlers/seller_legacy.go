package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"qusar-backend/internal/middleware"
	"qusar-backend/internal/models"
	"qusar-backend/internal/notify"
)

// The become-seller flow predates seller requests: the application is
// written straight onto the user document and approved by user id, with no
// review conversation. Older clients still use it, so both flows are kept.

type becomeSellerRequest struct {
	BusinessName    string             `json:"businessName" binding:"required"`
	BusinessAddress string             `json:"businessAddress" binding:"required"`
	GSTNumber       string             `json:"gstNumber"`
	BankDetails     models.BankDetails `json:"bankDetails" binding:"required"`
}

func BecomeSeller(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/become-seller"
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
		if user.SellerInfo != nil && user.SellerInfo.RequestedAt != nil && !user.SellerInfo.Approved && user.SellerInfo.RejectedAt == nil {
			respondError(c, http.StatusBadRequest, route, "Your seller application is already pending")
			return
		}

		var req becomeSellerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		info := models.SellerInfo{
			BusinessName:    req.BusinessName,
			BusinessAddress: req.BusinessAddress,
			GSTNumber:       req.GSTNumber,
			BankDetails:     req.BankDetails,
			RequestedAt:     &now,
		}
		_, err := db.Collection("users").UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
			"sellerInfo": info,
			"updatedAt":  now,
		}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error submitting application")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Seller application submitted"})
	}
}

func AdminApproveSeller(db *mongo.Database, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/sellers/:userId/approve"
		defer handlePanic(c, route)

		admin := middleware.CurrentUser(c)
		if admin == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid user id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var target models.User
		err = db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&target)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "User not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error approving seller")
			return
		}

		if target.SellerInfo == nil {
			respondError(c, http.StatusBadRequest, route, "User has no seller application")
			return
		}
		if target.SellerInfo.Approved {
			respondError(c, http.StatusBadRequest, route, "Seller is already approved")
			return
		}

		now := time.Now()
		_, err = db.Collection("users").UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
			"role":                  models.RoleSeller,
			"sellerInfo.approved":   true,
			"sellerInfo.approvedBy": admin.ID,
			"sellerInfo.approvedAt": now,
			"updatedAt":             now,
		}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error approving seller")
			return
		}

		dispatcher.Dispatch(userID, models.NotificationSellerRequest,
			"Application approved", "Congratulations, your seller application has been approved.", nil)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Seller approved"})
	}
}

func AdminRejectSeller(db *mongo.Database, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/sellers/:userId/reject"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid user id")
			return
		}

		var req struct {
			Reason string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		set := bson.M{
			"sellerInfo.approved":   false,
			"sellerInfo.rejectedAt": now,
			"updatedAt":             now,
		}
		if req.Reason != "" {
			set["sellerInfo.rejectionReason"] = req.Reason
		}

		res, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID, "sellerInfo": bson.M{"$ne": nil}},
			bson.M{"$set": set},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error rejecting seller")
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "User has no seller application")
			return
		}

		dispatcher.Dispatch(userID, models.NotificationSellerRequest,
			"Application rejected", "Your seller application was not approved.", nil)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Seller application rejected"})
	}
}
