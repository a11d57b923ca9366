// Package settings serves the payment/commerce settings singleton from
// memory. It is loaded once at startup and refreshed whenever an admin
// writes the settings document, so request handlers never race on a
// module-level mutable global.
package settings

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"qusar-backend/internal/models"
)

// Provider caches the PaymentSettings document.
type Provider struct {
	db *mongo.Database

	mu      sync.RWMutex
	current models.PaymentSettings
}

// NewProvider creates a provider primed with defaults.
func NewProvider(db *mongo.Database) *Provider {
	return &Provider{
		db:      db,
		current: models.DefaultPaymentSettings(),
	}
}

// Load reads the singleton document, lazily creating it with defaults when
// absent.
func (p *Provider) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc models.PaymentSettings
	err := p.db.Collection("payment_settings").FindOne(ctx, bson.M{}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		doc = models.DefaultPaymentSettings()
		res, insertErr := p.db.Collection("payment_settings").InsertOne(ctx, doc)
		if insertErr != nil {
			return insertErr
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			doc.ID = id
		}
		log.Println("[SETTINGS] [INFO] created default payment settings document")
	} else if err != nil {
		return err
	}

	p.mu.Lock()
	p.current = doc
	p.mu.Unlock()
	return nil
}

// Get returns the cached settings snapshot.
func (p *Provider) Get() models.PaymentSettings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Refresh replaces the cached snapshot after an admin write.
func (p *Provider) Refresh(doc models.PaymentSettings) {
	p.mu.Lock()
	p.current = doc
	p.mu.Unlock()
}
