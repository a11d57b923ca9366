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

type adminRequestMessage struct {
	Message string `json:"message" binding:"required"`
}

type adminRejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func AdminListSellerRequests(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/seller-requests"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("seller_requests").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching requests")
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit))
		cursor, err := db.Collection("seller_requests").Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching requests")
			return
		}
		defer cursor.Close(ctx)

		requests := []models.SellerRequest{}
		if err := cursor.All(ctx, &requests); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching requests")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"requests": requests,
			"page":     page,
			"pages":    (total + int64(limit) - 1) / int64(limit),
			"total":    total,
		})
	}
}

func AdminGetSellerRequest(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/seller-requests/:id"
		defer handlePanic(c, route)

		requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid request id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var request models.SellerRequest
		err = db.Collection("seller_requests").FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Seller request not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching request")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "request": request})
	}
}

// AdminMessageSellerRequest appends an admin message. Messaging a pending
// request also moves it to under_review so the applicant sees it is being
// looked at.
func AdminMessageSellerRequest(db *mongo.Database, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/seller-requests/:id/message"
		defer handlePanic(c, route)

		requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid request id")
			return
		}

		var req adminRequestMessage
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var request models.SellerRequest
		err = db.Collection("seller_requests").FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Seller request not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error sending message")
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		if request.Status == models.SellerRequestPending {
			set["status"] = models.SellerRequestUnderReview
		}

		_, err = db.Collection("seller_requests").UpdateOne(ctx, bson.M{"_id": requestID}, bson.M{
			"$push": bson.M{"conversation": models.ConversationMessage{
				Sender:    "admin",
				Message:   req.Message,
				Timestamp: time.Now(),
			}},
			"$set": set,
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error sending message")
			return
		}

		dispatcher.Dispatch(request.User, models.NotificationSellerRequest,
			"Message from admin", "There is a new message on your seller application.", nil)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent"})
	}
}

// AdminApproveSellerRequest approves the application: the request is marked
// approved, the user is promoted to seller, and the business details are
// copied into the user's embedded seller profile.
func AdminApproveSellerRequest(db *mongo.Database, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/seller-requests/:id/approve"
		defer handlePanic(c, route)

		admin := middleware.CurrentUser(c)
		if admin == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid request id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var request models.SellerRequest
		err = db.Collection("seller_requests").FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Seller request not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error approving request")
			return
		}

		if request.Status == models.SellerRequestApproved {
			respondError(c, http.StatusBadRequest, route, "Request is already approved")
			return
		}
		if request.Status == models.SellerRequestRejected {
			respondError(c, http.StatusBadRequest, route, "Request has been rejected")
			return
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error approving request")
			return
		}
		defer session.EndSession(ctx)

		now := time.Now()
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			_, err := db.Collection("seller_requests").UpdateOne(sessCtx, bson.M{"_id": request.ID}, bson.M{"$set": bson.M{
				"status":     models.SellerRequestApproved,
				"reviewedBy": admin.ID,
				"reviewedAt": now,
				"updatedAt":  now,
			}})
			if err != nil {
				return nil, err
			}

			sellerInfo := models.SellerInfo{
				BusinessName:    request.BusinessName,
				BusinessAddress: request.BusinessAddress,
				GSTNumber:       request.GSTNumber,
				BankDetails:     request.BankDetails,
				Approved:        true,
				ApprovedBy:      &admin.ID,
				ApprovedAt:      &now,
			}
			_, err = db.Collection("users").UpdateOne(sessCtx, bson.M{"_id": request.User}, bson.M{"$set": bson.M{
				"role":       models.RoleSeller,
				"sellerInfo": sellerInfo,
				"updatedAt":  now,
			}})
			return nil, err
		})
		if err != nil {
			log.Println("[SELLER] [ERROR] approval transaction failed:", err)
			respondError(c, http.StatusInternalServerError, route, "Error approving request")
			return
		}

		log.Println("[SELLER] [INFO] seller request approved:", request.ID.Hex(), "by:", admin.ID.Hex())
		dispatcher.Dispatch(request.User, models.NotificationSellerRequest,
			"Application approved", "Congratulations, your seller application has been approved.", nil)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Seller request approved"})
	}
}

// AdminGetSellerRequestByUser looks up a user's latest request, for admin
// screens keyed by user rather than request id.
func AdminGetSellerRequestByUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/seller-requests/user/:userId"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid user id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		var request models.SellerRequest
		err = db.Collection("seller_requests").FindOne(ctx, bson.M{"user": userID}, opts).Decode(&request)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "No seller request found for user")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching request")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "request": request})
	}
}

// AdminMessageSellerRequestByUser appends an admin message to the user's
// active request.
func AdminMessageSellerRequestByUser(db *mongo.Database, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/seller-requests/user/:userId/message"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid user id")
			return
		}

		var req adminRequestMessage
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("seller_requests").UpdateOne(ctx,
			bson.M{"user": userID, "status": bson.M{"$in": []string{models.SellerRequestPending, models.SellerRequestUnderReview}}},
			bson.M{
				"$push": bson.M{"conversation": models.ConversationMessage{
					Sender:    "admin",
					Message:   req.Message,
					Timestamp: now,
				}},
				"$set": bson.M{"status": models.SellerRequestUnderReview, "updatedAt": now},
			},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error sending message")
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "No active seller request for user")
			return
		}

		dispatcher.Dispatch(userID, models.NotificationSellerRequest,
			"Message from admin", "There is a new message on your seller application.", nil)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent"})
	}
}

func AdminRejectSellerRequest(db *mongo.Database, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/seller-requests/:id/reject"
		defer handlePanic(c, route)

		admin := middleware.CurrentUser(c)
		if admin == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid request id")
			return
		}

		var req adminRejectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var request models.SellerRequest
		err = db.Collection("seller_requests").FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "Seller request not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error rejecting request")
			return
		}

		if request.Status == models.SellerRequestApproved || request.Status == models.SellerRequestRejected {
			respondError(c, http.StatusBadRequest, route, "Request has already been reviewed")
			return
		}

		now := time.Now()
		_, err = db.Collection("seller_requests").UpdateOne(ctx, bson.M{"_id": request.ID}, bson.M{"$set": bson.M{
			"status":          models.SellerRequestRejected,
			"reviewedBy":      admin.ID,
			"reviewedAt":      now,
			"rejectionReason": req.Reason,
			"updatedAt":       now,
		}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error rejecting request")
			return
		}

		dispatcher.Dispatch(request.User, models.NotificationSellerRequest,
			"Application rejected", "Your seller application was not approved: "+req.Reason, nil)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Seller request rejected"})
	}
}
