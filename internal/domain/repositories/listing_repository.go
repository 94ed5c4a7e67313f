package repositories

import (
	"context"

	"github.com/expofinder/directory-backend/internal/domain/entities"
)

// ListingRepository defines the interface for listing data operations
type ListingRepository interface {
	// Create creates a new listing
	Create(ctx context.Context, listing *entities.BusinessListing) error

	// GetByID retrieves a listing by ID
	GetByID(ctx context.Context, id string) (*entities.BusinessListing, error)

	// List retrieves listings with filters
	List(ctx context.Context, filter ListingFilter) ([]*entities.BusinessListing, error)

	// Snapshot bulk-reads up to limit existing listings in one call, used to
	// build the against-store dedup sets at run start.
	Snapshot(ctx context.Context, limit int) ([]*entities.BusinessListing, error)

	// Stats returns aggregate counts over the listing store
	Stats(ctx context.Context) (*ListingStats, error)
}

// ListingSearchRepository defines the interface for listing search indexing (e.g. Typesense)
type ListingSearchRepository interface {
	// Index indexes a listing
	Index(ctx context.Context, listing *entities.BusinessListing) error

	// Delete removes a listing from the index
	Delete(ctx context.Context, id string) error
}

// ListingFilter defines filters for listing queries
type ListingFilter struct {
	City     string
	Country  string
	Category string
	Verified *bool
	Claimed  *bool
	Limit    int
	Offset   int
}

// ListingStats holds aggregate counts over the listing store
type ListingStats struct {
	Total     int `json:"total"`
	Verified  int `json:"verified"`
	Claimed   int `json:"claimed"`
	Unclaimed int `json:"unclaimed"`
}
