package services

import (
	"context"
	"log"

	"github.com/expofinder/directory-backend/internal/domain/entities"
	"github.com/expofinder/directory-backend/internal/domain/repositories"
)

// ListingService handles business logic for listings
type ListingService struct {
	repo       repositories.ListingRepository
	searchRepo repositories.ListingSearchRepository
}

// NewListingService creates a new listing service
func NewListingService(repo repositories.ListingRepository, searchRepo repositories.ListingSearchRepository) *ListingService {
	return &ListingService{
		repo:       repo,
		searchRepo: searchRepo,
	}
}

// Create creates a new listing and indexes it
func (s *ListingService) Create(ctx context.Context, listing *entities.BusinessListing) error {
	// 1. Save to database
	if err := s.repo.Create(ctx, listing); err != nil {
		return err
	}

	// 2. Index in search engine
	if s.searchRepo != nil {
		if err := s.searchRepo.Index(ctx, listing); err != nil {
			// Log error but don't fail the request (eventual consistency)
			log.Printf("Warning: Failed to index listing %s: %v", listing.ID, err)
		}
	}

	return nil
}

// GetByID retrieves a listing by ID
func (s *ListingService) GetByID(ctx context.Context, id string) (*entities.BusinessListing, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves listings
func (s *ListingService) List(ctx context.Context, filter repositories.ListingFilter) ([]*entities.BusinessListing, error) {
	return s.repo.List(ctx, filter)
}

// Stats returns aggregate counts over the listing store
func (s *ListingService) Stats(ctx context.Context) (*repositories.ListingStats, error) {
	return s.repo.Stats(ctx)
}
