package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"qusar-backend/internal/models"
)

type fakeStore struct {
	mu       sync.Mutex
	inserted []models.Notification
	err      error
}

func (f *fakeStore) Insert(_ context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, n)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDispatcherDeliversNotifications(t *testing.T) {
	store := &fakeStore{}
	d := NewDispatcher(store, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	user := primitive.NewObjectID()
	orderID := primitive.NewObjectID()
	d.Dispatch(user, models.NotificationOrderPlaced, "New order", "You have a new order", &orderID)

	waitFor(t, time.Second, func() bool { return store.count() == 1 })

	store.mu.Lock()
	got := store.inserted[0]
	store.mu.Unlock()

	if got.User != user || got.Type != models.NotificationOrderPlaced {
		t.Fatalf("unexpected notification stored: %+v", got)
	}
	if got.Order == nil || *got.Order != orderID {
		t.Fatal("order reference missing on stored notification")
	}
	if got.Read {
		t.Fatal("new notification must start unread")
	}
}

func TestDispatchNeverBlocksWhenQueueFull(t *testing.T) {
	store := &fakeStore{}
	d := NewDispatcher(store, 1)
	// Worker not started: the queue cannot drain.

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			d.Dispatch(primitive.NewObjectID(), models.NotificationOrderPlaced, "t", "m", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
}

func TestStoreFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{err: errors.New("insert failed")}
	d := NewDispatcher(store, 8)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Dispatch(primitive.NewObjectID(), models.NotificationOrderRejected, "t", "m", nil)

	// Give the worker a moment to consume, then stop it. No panic and no
	// propagated error is the assertion.
	time.Sleep(50 * time.Millisecond)
	cancel()
	d.Wait()
}
