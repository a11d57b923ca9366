// Package notify is the best-effort notification side channel. Handlers
// enqueue and never await: a store failure, a full queue, or a stopped
// dispatcher must not fail the operation that produced the notification.
package notify

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"qusar-backend/internal/models"
)

// Store persists notifications. *mongo.Database satisfies it through
// MongoStore; tests substitute a fake.
type Store interface {
	Insert(ctx context.Context, n models.Notification) error
}

// Dispatcher owns a bounded queue and a single worker goroutine.
type Dispatcher struct {
	store Store
	queue chan models.Notification
	done  chan struct{}
}

// NewDispatcher creates a dispatcher with the given queue capacity.
func NewDispatcher(store Store, capacity int) *Dispatcher {
	if capacity <= 0 {
		capacity = 128
	}
	return &Dispatcher{
		store: store,
		queue: make(chan models.Notification, capacity),
		done:  make(chan struct{}),
	}
}

// Start runs the worker until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		defer close(d.done)
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-d.queue:
				d.deliver(n)
			}
		}
	}()
}

// Wait blocks until the worker has stopped.
func (d *Dispatcher) Wait() {
	<-d.done
}

// Dispatch enqueues a notification without blocking. When the queue is full
// the notification is dropped and logged.
func (d *Dispatcher) Dispatch(userID primitive.ObjectID, typ, title, message string, orderID *primitive.ObjectID) {
	n := models.Notification{
		User:      userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Order:     orderID,
		CreatedAt: time.Now(),
	}

	select {
	case d.queue <- n:
	default:
		log.Printf("[NOTIFY] [WARN] queue full, dropping %s notification for user %s", typ, userID.Hex())
	}
}

func (d *Dispatcher) deliver(n models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.store.Insert(ctx, n); err != nil {
		log.Printf("[NOTIFY] [ERROR] failed to store %s notification for user %s: %v", n.Type, n.User.Hex(), err)
	}
}
