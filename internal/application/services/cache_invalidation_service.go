package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/expofinder/directory-backend/internal/domain/entities"
	"github.com/expofinder/directory-backend/internal/domain/providers"
)

// statsCacheKey mirrors the key the cached listing adapter writes.
const statsCacheKey = "listings:stats"

// CacheInvalidationService drops stale aggregate caches when an import run
// lands new listings. List and detail entries are left to expire on their own
// TTLs, an import only shifts the aggregate counts immediately.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for import events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelImports)
	if err != nil {
		return fmt.Errorf("failed to subscribe to import events: %w", err)
	}

	go s.processEvents(eventChan)
	log.Println("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Println("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.ImportEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent handles a single import event
func (s *CacheInvalidationService) handleEvent(event *entities.ImportEvent) {
	if event.Summary.Committed == 0 {
		// Nothing landed, nothing to invalidate
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Printf("Processing cache invalidation for import run %s (%d committed)",
		event.RunID, event.Summary.Committed)

	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		log.Printf("Warning: Failed to invalidate listing stats cache: %v", err)
	}
}
