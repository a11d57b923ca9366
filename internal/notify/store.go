package notify

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"qusar-backend/internal/models"
)

// MongoStore writes notifications to the notifications collection.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Insert(ctx context.Context, n models.Notification) error {
	_, err := s.db.Collection("notifications").InsertOne(ctx, n)
	return err
}
