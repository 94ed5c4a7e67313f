package search

import (
	"context"
	"fmt"

	"github.com/expofinder/directory-backend/internal/domain/entities"
	"github.com/expofinder/directory-backend/internal/domain/repositories"
	tsclient "github.com/expofinder/directory-backend/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements listing search indexing using Typesense.
// Indexing is best-effort: committed listings reach the index eventually, the
// Postgres store stays the source of truth.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements ListingSearchRepository
var _ repositories.ListingSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the listings collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// buildListingDocument maps a listing to its index document. The location
// geopoint is only set when real coordinates exist, a (0, 0) location means
// the search API returned none.
func buildListingDocument(listing *entities.BusinessListing) map[string]interface{} {
	if listing == nil {
		return nil
	}

	document := map[string]interface{}{
		"id":           listing.ID,
		"name":         listing.Name,
		"category":     listing.Category,
		"city":         listing.Address.City,
		"country":      listing.Address.Country,
		"description":  listing.Description,
		"rating":       listing.Rating,
		"review_count": listing.ReviewCount,
		"verified":     listing.Verified,
		"claimed":      listing.Claimed,
		"created_at":   listing.CreatedAt.Unix(),
	}
	if listing.Location.Latitude != 0 || listing.Location.Longitude != 0 {
		document["location"] = []float64{listing.Location.Latitude, listing.Location.Longitude}
	}
	return document
}

// Index indexes a listing
func (a *TypesenseAdapter) Index(ctx context.Context, listing *entities.BusinessListing) error {
	if err := a.client.IndexListing(ctx, buildListingDocument(listing)); err != nil {
		return fmt.Errorf("failed to index listing: %w", err)
	}

	return nil
}

// Delete removes a listing from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.ListingsCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete listing from index: %w", err)
	}
	return nil
}
