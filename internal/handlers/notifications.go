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

func ListNotifications(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/notifications"
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

		filter := bson.M{"user": user.ID}
		unread, err := db.Collection("notifications").CountDocuments(ctx, bson.M{"user": user.ID, "read": false})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching notifications")
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit))
		cursor, err := db.Collection("notifications").Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching notifications")
			return
		}
		defer cursor.Close(ctx)

		notifications := []models.Notification{}
		if err := cursor.All(ctx, &notifications); err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error fetching notifications")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"notifications": notifications,
			"unreadCount":   unread,
		})
	}
}

func MarkNotificationRead(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/notifications/:id/read"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "Invalid notification id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("notifications").UpdateOne(ctx,
			bson.M{"_id": notificationID, "user": user.ID},
			bson.M{"$set": bson.M{"read": true}},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error updating notification")
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "Notification not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification marked as read"})
	}
}

func MarkAllNotificationsRead(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/notifications/read-all"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, route, "Not authorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err := db.Collection("notifications").UpdateMany(ctx,
			bson.M{"user": user.ID, "read": false},
			bson.M{"$set": bson.M{"read": true}},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "Error updating notifications")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "All notifications marked as read"})
	}
}
