package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/expofinder/directory-backend/internal/domain/entities"
	"github.com/expofinder/directory-backend/internal/domain/providers"
	"github.com/expofinder/directory-backend/internal/domain/repositories"
)

// CachedListingAdapter wraps ListingAdapter with read-through caching.
// Snapshot is deliberately uncached: the import dedup pass must see the
// store as it is, not as it was a few minutes ago.
type CachedListingAdapter struct {
	adapter repositories.ListingRepository
	cache   providers.CacheProvider
}

// NewCachedListingAdapter creates a new cached listing adapter
func NewCachedListingAdapter(adapter repositories.ListingRepository, cache providers.CacheProvider) repositories.ListingRepository {
	return &CachedListingAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	listingByIDTTL  = 300 // 5 minutes for single listing
	listingsListTTL = 180 // 3 minutes for lists
	listingStatsTTL = 120 // 2 minutes for aggregate stats
)

// Cache key generators
func listingCacheKey(id string) string {
	return fmt.Sprintf("listing:%s", id)
}

func listingsListCacheKey(filter repositories.ListingFilter) string {
	verified := "any"
	if filter.Verified != nil {
		verified = fmt.Sprintf("%t", *filter.Verified)
	}
	claimed := "any"
	if filter.Claimed != nil {
		claimed = fmt.Sprintf("%t", *filter.Claimed)
	}
	return fmt.Sprintf("listings:list:%s:%s:%s:%s:%s:%d:%d",
		filter.City, filter.Country, filter.Category, verified, claimed, filter.Limit, filter.Offset)
}

const listingStatsCacheKey = "listings:stats"

// GetByID retrieves a listing by ID with caching
func (a *CachedListingAdapter) GetByID(ctx context.Context, id string) (*entities.BusinessListing, error) {
	cacheKey := listingCacheKey(id)

	// Try to get from cache first
	if cached, err := a.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
		var listing entities.BusinessListing
		if err := json.Unmarshal(cached, &listing); err == nil {
			return &listing, nil
		}
		// If unmarshal fails, continue to fetch from DB
		log.Printf("Failed to unmarshal cached listing %s: %v", id, err)
	}

	// Cache miss - fetch from database
	listing, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(listing); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, listingByIDTTL); err != nil {
				log.Printf("Failed to cache listing %s: %v", id, err)
			}
		}
	}()

	return listing, nil
}

// List retrieves a list of listings with caching
func (a *CachedListingAdapter) List(ctx context.Context, filter repositories.ListingFilter) ([]*entities.BusinessListing, error) {
	cacheKey := listingsListCacheKey(filter)

	// Try to get from cache first
	if cached, err := a.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
		var listings []*entities.BusinessListing
		if err := json.Unmarshal(cached, &listings); err == nil {
			return listings, nil
		}
		log.Printf("Failed to unmarshal cached listings list: %v", err)
	}

	// Cache miss - fetch from database
	listings, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(listings); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, listingsListTTL); err != nil {
				log.Printf("Failed to cache listings list: %v", err)
			}
		}
	}()

	return listings, nil
}

// Create creates a listing and invalidates the stats cache. List entries
// expire on their own TTL.
func (a *CachedListingAdapter) Create(ctx context.Context, listing *entities.BusinessListing) error {
	if err := a.adapter.Create(ctx, listing); err != nil {
		return err
	}

	go func() {
		bgCtx := context.Background()
		if err := a.cache.Delete(bgCtx, listingStatsCacheKey); err != nil {
			log.Printf("Failed to invalidate listing stats cache: %v", err)
		}
	}()

	return nil
}

// Snapshot reads existing listings directly from the database
func (a *CachedListingAdapter) Snapshot(ctx context.Context, limit int) ([]*entities.BusinessListing, error) {
	return a.adapter.Snapshot(ctx, limit)
}

// Stats returns aggregate counts with caching
func (a *CachedListingAdapter) Stats(ctx context.Context) (*repositories.ListingStats, error) {
	if cached, err := a.cache.Get(ctx, listingStatsCacheKey); err == nil && len(cached) > 0 {
		var stats repositories.ListingStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
		log.Printf("Failed to unmarshal cached listing stats: %v", err)
	}

	stats, err := a.adapter.Stats(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(stats); err == nil {
			if err := a.cache.Set(bgCtx, listingStatsCacheKey, data, listingStatsTTL); err != nil {
				log.Printf("Failed to cache listing stats: %v", err)
			}
		}
	}()

	return stats, nil
}
