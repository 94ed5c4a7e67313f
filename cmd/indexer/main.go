package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/expofinder/directory-backend/internal/adapters/database"
	"github.com/expofinder/directory-backend/internal/adapters/search"
	"github.com/expofinder/directory-backend/internal/domain/repositories"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/postgres"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/typesense"
	"github.com/expofinder/directory-backend/pkg/config"
)

const indexPageSize = 200

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset {
		if err := typesenseClient.DropSchema(ctx); err != nil {
			log.Printf("Warning: failed to drop collection (may not exist): %v", err)
		}
	}

	adapter := search.NewTypesenseAdapter(typesenseClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	listingAdapter := database.NewListingAdapter(pgClient)

	indexed := 0
	for offset := 0; ; offset += indexPageSize {
		listings, err := listingAdapter.List(ctx, repositories.ListingFilter{
			Limit:  indexPageSize,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			break
		}

		for _, listing := range listings {
			if err := adapter.Index(ctx, listing); err != nil {
				log.Printf("Warning: failed to index listing %s: %v", listing.ID, err)
				continue
			}
			indexed++
		}

		if len(listings) < indexPageSize {
			break
		}
	}

	log.Printf("Indexed %d listings", indexed)
	return nil
}
