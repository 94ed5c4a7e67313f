package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/expofinder/directory-backend/internal/adapters/cache"
	"github.com/expofinder/directory-backend/internal/adapters/database"
	"github.com/expofinder/directory-backend/internal/adapters/events"
	"github.com/expofinder/directory-backend/internal/adapters/search"
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
	var category string
	var country string
	var citiesFlag string
	var maxResults int
	var apiKey string

	flag.StringVar(&category, "category", "", "Business category to import (e.g. exhibition_stand_builder)")
	flag.StringVar(&country, "country", "", "Country to import listings for")
	flag.StringVar(&citiesFlag, "cities", "", "Comma-separated list of cities")
	flag.IntVar(&maxResults, "max", 50, "Maximum listings to fetch across all cities")
	flag.StringVar(&apiKey, "api-key", "", "Search API key (falls back to PLACES_API_KEY)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	observability.InitLogger("listing-importer", os.Getenv("APP_ENV"))

	var cities []string
	for _, city := range strings.Split(citiesFlag, ",") {
		if city = strings.TrimSpace(city); city != "" {
			cities = append(cities, city)
		}
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Redis unavailable, running without cache and events: %v", err)
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	var searchRepo repositories.ListingSearchRepository
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Typesense unavailable, committed listings will not be indexed: %v", err)
	} else {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	listingAdapter := database.NewListingAdapter(pgClient)
	listingService := services.NewListingService(listingAdapter, searchRepo)
	placesClient := placesapi.NewClient(&cfg.Places, cacheProvider, cfg.Import.DetailsCacheTTLSeconds)

	importService := services.NewListingImportService(
		placesClient,
		listingAdapter,
		listingService,
		eventBus,
		cacheProvider,
		nil,
		cfg.Import,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	summary, err := importService.Run(ctx, services.ImportRequest{
		Category:   category,
		Country:    country,
		Cities:     cities,
		MaxResults: maxResults,
		APIKey:     apiKey,
	})
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		log.Fatalf("Failed to encode summary: %v", err)
	}

	log.Printf("Import finished in %s: fetched=%d deduplicated=%d committed=%d failed=%d",
		time.Since(start), summary.Fetched, summary.Deduplicated, summary.Committed, summary.Failed)

	if summary.Aborted() {
		log.Printf("Run aborted: %s", summary.AbortReason)
		os.Exit(1)
	}
}
