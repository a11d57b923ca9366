package handlers

import (
	"strconv"

	"qusar-backend/internal/models"
)

func parsePriceQuery(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// upsertReview replaces the user's existing review or appends a new one.
func upsertReview(reviews []models.Review, review models.Review) []models.Review {
	for i := range reviews {
		if reviews[i].User == review.User {
			reviews[i] = review
			return reviews
		}
	}
	return append(reviews, review)
}

// aggregateRatings recomputes the denormalized average over all reviews.
func aggregateRatings(reviews []models.Review) models.Ratings {
	if len(reviews) == 0 {
		return models.Ratings{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return models.Ratings{
		Average: roundMoney(float64(sum) / float64(len(reviews))),
		Count:   len(reviews),
	}
}
