package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/expofinder/directory-backend/internal/adapters/cache"
	"github.com/expofinder/directory-backend/internal/adapters/database"
	"github.com/expofinder/directory-backend/internal/adapters/events"
	"github.com/expofinder/directory-backend/internal/adapters/search"
	"github.com/expofinder/directory-backend/internal/api/handlers"
	"github.com/expofinder/directory-backend/internal/api/middleware"
	"github.com/expofinder/directory-backend/internal/api/routes"
	"github.com/expofinder/directory-backend/internal/application/services"
	"github.com/expofinder/directory-backend/internal/domain/providers"
	"github.com/expofinder/directory-backend/internal/domain/repositories"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/placesapi"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/postgres"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/redis"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/typesense"
	"github.com/expofinder/directory-backend/internal/infrastructure/observability"
	"github.com/expofinder/directory-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		typesenseClient = nil
	} else {
		log.Println("Typesense client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for import run notifications
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize adapters

	// Create base listing adapter, wrapped with caching when Redis is available
	baseListingAdapter := database.NewListingAdapter(pgClient)
	var listingAdapter repositories.ListingRepository
	if cacheProvider != nil {
		listingAdapter = database.NewCachedListingAdapter(baseListingAdapter, cacheProvider)
		log.Println("Listing adapter wrapped with caching layer")
	} else {
		listingAdapter = baseListingAdapter
		log.Println("Listing adapter running without cache (Redis unavailable)")
	}

	var searchRepo repositories.ListingSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)

		// Ensure schema exists
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	placesClient := placesapi.NewClient(&cfg.Places, cacheProvider, cfg.Import.DetailsCacheTTLSeconds)
	if cfg.Places.APIKey == "" {
		log.Println("Warning: PLACES_API_KEY is not set; imports need a per-request key")
	}

	// Initialize services

	listingService := services.NewListingService(listingAdapter, searchRepo)

	importService := services.NewListingImportService(
		placesClient,
		listingAdapter,
		listingService,
		eventBus,
		cacheProvider,
		metrics,
		cfg.Import,
	)

	// Initialize cache invalidation service
	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Printf("Warning: Failed to start cache invalidation service: %v", err)
		}
	}

	// Start cache warming for the hottest directory reads
	if cacheProvider != nil {
		warmingService := services.NewCacheWarmingService(listingAdapter)
		go warmingService.StartPeriodicWarming(ctx, 5*time.Minute)
	}

	// Initialize handlers

	listingHandler := handlers.NewListingHandler(listingService)

	var rawRedis *redislib.Client
	if redisClient != nil {
		rawRedis = redisClient.Client()
	}
	importHandler := handlers.NewListingImportHandler(importService, rawRedis, 24*time.Hour)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Println("Cache middleware initialized successfully")
	}

	// Set up router

	router := routes.NewRouter(
		listingHandler,
		importHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	// Stop cache invalidation service
	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Println("Server stopped")
}
