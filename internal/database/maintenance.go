package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PurgeExpiredRefreshTokens removes refresh tokens that expired more than a
// day ago. Revoked tokens are kept until expiry so rotation chains stay
// auditable.
func PurgeExpiredRefreshTokens(db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-24 * time.Hour)
	res, err := db.Collection("refresh_tokens").DeleteMany(ctx, bson.M{
		"expiresAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		log.Println("[MAINT] [ERROR] refresh token purge failed:", err)
		return
	}
	if res.DeletedCount > 0 {
		log.Printf("[MAINT] [INFO] purged %d expired refresh tokens", res.DeletedCount)
	}
}
