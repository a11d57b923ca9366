package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"qusar-backend/internal/models"
)

func TestParsePriceQuery(t *testing.T) {
	if _, ok := parsePriceQuery(""); ok {
		t.Fatal("empty query must not parse")
	}
	if _, ok := parsePriceQuery("abc"); ok {
		t.Fatal("non numeric query must not parse")
	}
	if _, ok := parsePriceQuery("-5"); ok {
		t.Fatal("negative price must not parse")
	}
	if v, ok := parsePriceQuery("199.99"); !ok || v != 199.99 {
		t.Fatalf("expected 199.99, got %v ok=%v", v, ok)
	}
}

func TestUpsertReviewAppendsAndReplaces(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	reviews := upsertReview(nil, models.Review{User: alice, Rating: 4})
	reviews = upsertReview(reviews, models.Review{User: bob, Rating: 2})
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}

	reviews = upsertReview(reviews, models.Review{User: alice, Rating: 5, Comment: "updated"})
	if len(reviews) != 2 {
		t.Fatalf("expected replacement, got %d reviews", len(reviews))
	}
	if reviews[0].Rating != 5 || reviews[0].Comment != "updated" {
		t.Fatalf("expected alice's review replaced, got %+v", reviews[0])
	}
}

func TestAggregateRatings(t *testing.T) {
	if got := aggregateRatings(nil); got.Average != 0 || got.Count != 0 {
		t.Fatalf("expected zero aggregate, got %+v", got)
	}

	reviews := []models.Review{
		{User: primitive.NewObjectID(), Rating: 5},
		{User: primitive.NewObjectID(), Rating: 4},
		{User: primitive.NewObjectID(), Rating: 2},
	}
	got := aggregateRatings(reviews)
	if got.Count != 3 {
		t.Fatalf("expected count 3, got %d", got.Count)
	}
	if got.Average != 3.67 {
		t.Fatalf("expected average 3.67, got %v", got.Average)
	}
}
