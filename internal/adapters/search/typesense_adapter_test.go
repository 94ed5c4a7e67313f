package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/expofinder/directory-backend/internal/domain/entities"
)

func TestBuildListingDocument(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	listing := &entities.BusinessListing{
		ID:       "lst-1",
		Name:     "Acme Stand Builders",
		Category: "exhibition_stand_builder",
		Address: entities.Address{
			City:    "Berlin",
			Country: "Germany",
		},
		Location: entities.Location{
			Latitude:  52.52,
			Longitude: 13.40,
		},
		Description: "Professional exhibition stand builder services in Berlin",
		Rating:      4.6,
		ReviewCount: 120,
		Verified:    true,
		CreatedAt:   created,
	}

	doc := buildListingDocument(listing)

	assert.Equal(t, "lst-1", doc["id"])
	assert.Equal(t, "Acme Stand Builders", doc["name"])
	assert.Equal(t, "Berlin", doc["city"])
	assert.Equal(t, "Germany", doc["country"])
	assert.Equal(t, created.Unix(), doc["created_at"])
	assert.Equal(t, []float64{52.52, 13.40}, doc["location"])
}

func TestBuildListingDocumentOmitsZeroLocation(t *testing.T) {
	doc := buildListingDocument(&entities.BusinessListing{ID: "lst-2"})

	_, hasLocation := doc["location"]
	assert.False(t, hasLocation)
}

func TestBuildListingDocumentNil(t *testing.T) {
	assert.Nil(t, buildListingDocument(nil))
}
