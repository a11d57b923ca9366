package handlers

import (
	"go.mongodb.org/mongo-driver/mongo/options"

	"qusar-backend/internal/models"
)

// normalizeDefaultAddress makes defaultID the only default entry. When
// defaultID is absent and no default remains, the first address becomes the
// default so a non-empty list always has exactly one.
func normalizeDefaultAddress(addresses []models.Address, defaultID string) []models.Address {
	if len(addresses) == 0 {
		return addresses
	}

	found := false
	for i := range addresses {
		if addresses[i].ID == defaultID {
			addresses[i].IsDefault = true
			found = true
		} else {
			addresses[i].IsDefault = false
		}
	}

	if !found {
		hasDefault := false
		for i := range addresses {
			if addresses[i].IsDefault {
				hasDefault = true
				break
			}
		}
		if !hasDefault {
			addresses[0].IsDefault = true
		}
	}

	return addresses
}

func findOneAndUpdateAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
