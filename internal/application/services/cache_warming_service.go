package services

import (
	"context"
	"log"
	"time"

	"github.com/expofinder/directory-backend/internal/domain/repositories"
)

// CacheWarmingService keeps the hottest listing reads warm by touching them
// through the cached repository on a fixed cadence. The reads themselves fill
// the cache, the service never writes cache entries directly.
type CacheWarmingService struct {
	repo repositories.ListingRepository
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(repo repositories.ListingRepository) *CacheWarmingService {
	return &CacheWarmingService{repo: repo}
}

// StartPeriodicWarming warms the cache on an interval until the context ends
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	// Warm immediately on startup
	s.warmOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.warmOnce(ctx)
		}
	}
}

func (s *CacheWarmingService) warmOnce(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.repo.Stats(warmCtx); err != nil {
		log.Printf("Cache warming: stats read failed: %v", err)
	}

	// First page of the default directory view
	if _, err := s.repo.List(warmCtx, repositories.ListingFilter{Limit: 30}); err != nil {
		log.Printf("Cache warming: list read failed: %v", err)
	}
}
