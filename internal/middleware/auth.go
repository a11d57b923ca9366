package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"qusar-backend/internal/models"
)

const userContextKey = "currentUser"

// Protect validates the bearer JWT and loads the user document into the
// context. Role checks always read the stored role, not the token claim, so
// promotions and demotions take effect without reissuing tokens.
func Protect(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			abortUnauthorized(c, "missing token")
			return
		}

		parts := strings.Split(raw, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "invalid token")
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			abortUnauthorized(c, "token is invalid or expired")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "token is invalid or expired")
			return
		}

		userIDValue, ok := claims["userId"].(string)
		if !ok || strings.TrimSpace(userIDValue) == "" {
			log.Println("[AUTH] [ERROR] userId claim missing")
			abortUnauthorized(c, "token is invalid or expired")
			return
		}

		userID, err := primitive.ObjectIDFromHex(userIDValue)
		if err != nil {
			abortUnauthorized(c, "token is invalid or expired")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[AUTH] [ERROR] token user lookup failed:", err)
			abortUnauthorized(c, "user not found")
			return
		}

		c.Set(userContextKey, &user)
		c.Next()
	}
}

// RequireRole allows only users whose role is at least min in the privilege
// order. Must run after Protect.
func RequireRole(min models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortUnauthorized(c, "missing token")
			return
		}
		if !user.Role.AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Access denied. " + string(min) + " role required.",
			})
			return
		}
		c.Next()
	}
}

// RequireApprovedSeller allows role seller with an approved SellerInfo, or
// admins and above. Mirrors the adminOrSeller guard of the REST surface.
func RequireApprovedSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortUnauthorized(c, "missing token")
			return
		}
		if user.IsApprovedSeller() || user.Role.AtLeast(models.RoleAdmin) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Access denied. Approved seller only.",
		})
	}
}

// CurrentUser returns the user loaded by Protect, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}
