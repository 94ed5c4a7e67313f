package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/expofinder/directory-backend/internal/adapters/database"
	"github.com/expofinder/directory-backend/internal/adapters/search"
	"github.com/expofinder/directory-backend/internal/application/services"
	"github.com/expofinder/directory-backend/internal/domain/entities"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/postgres"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/typesense"
	"github.com/expofinder/directory-backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	var searchRepo *search.TypesenseAdapter
	if err == nil {
		searchRepo = search.NewTypesenseAdapter(tsClient)
		searchRepo.InitSchema(context.Background())
	}

	listingRepo := database.NewListingAdapter(pgClient)
	listingService := services.NewListingService(listingRepo, searchRepo)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				business_listings
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	now := time.Now()
	listings := []entities.BusinessListing{
		{
			ID:         uuid.New().String(),
			ExternalID: "seed-berlin-acme",
			Name:       "Acme Messebau GmbH",
			Slug:       "acme-messebau-gmbh",
			Address: entities.Address{
				Street: "Messedamm 22", City: "Berlin", Country: "Germany", CountryCode: "DE",
			},
			Location:        entities.Location{Latitude: 52.5046, Longitude: 13.2697},
			Phone:           "+49 30 1234567",
			Website:         "https://www.acme-messebau.de",
			WebsiteDomain:   "acme-messebau.de",
			Description:     "Professional exhibition stand builder services in Berlin",
			Category:        "exhibition_stand_builder",
			CategoryLabel:   "Exhibition Stand Builder",
			Rating:          4.6,
			ReviewCount:     124,
			BusinessStatus:  "OPERATIONAL",
			BusinessHours:   "Mon-Fri 9:00-18:00",
			TeamSize:        12,
			EstablishedYear: 2011,
			Source:          entities.ListingSourceExternalSearchAPI,
			FetchedAt:       now,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:         uuid.New().String(),
			ExternalID: "seed-munich-expocraft",
			Name:       "ExpoCraft Displays",
			Slug:       "expocraft-displays",
			Address: entities.Address{
				Street: "Am Messesee 2", City: "Munich", Country: "Germany", CountryCode: "DE",
			},
			Location:        entities.Location{Latitude: 48.1351, Longitude: 11.6920},
			Phone:           "+49 89 7654321",
			Website:         "https://www.expocraft.de",
			WebsiteDomain:   "expocraft.de",
			Description:     "Professional booth builder services in Munich",
			Category:        "booth_builder",
			CategoryLabel:   "Booth Builder",
			Rating:          4.3,
			ReviewCount:     58,
			BusinessStatus:  "OPERATIONAL",
			BusinessHours:   "Mon-Fri 8:30-17:30",
			TeamSize:        8,
			EstablishedYear: 2015,
			Source:          entities.ListingSourceExternalSearchAPI,
			FetchedAt:       now,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:         uuid.New().String(),
			ExternalID: "seed-london-stagecraft",
			Name:       "StageCraft Events Ltd",
			Slug:       "stagecraft-events-ltd",
			Address: entities.Address{
				Street: "1 Warwick Road", City: "London", Country: "United Kingdom", CountryCode: "GB",
			},
			Location:        entities.Location{Latitude: 51.4875, Longitude: -0.1990},
			Phone:           "+44 20 8123 4567",
			Website:         "https://www.stagecraft-events.co.uk",
			WebsiteDomain:   "stagecraft-events.co.uk",
			Description:     "Professional event production services in London",
			Category:        "event_production",
			CategoryLabel:   "Event Production",
			Rating:          4.8,
			ReviewCount:     212,
			BusinessStatus:  "OPERATIONAL",
			BusinessHours:   "Mon-Sat 9:00-19:00",
			TeamSize:        25,
			EstablishedYear: 2008,
			Verified:        true,
			Source:          entities.ListingSourceExternalSearchAPI,
			FetchedAt:       now,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:         uuid.New().String(),
			ExternalID: "seed-dubai-gulfexpo",
			Name:       "Gulf Expo Services",
			Slug:       "gulf-expo-services",
			Address: entities.Address{
				Street: "Sheikh Zayed Road", City: "Dubai", Country: "United Arab Emirates", CountryCode: "AE",
			},
			Location:        entities.Location{Latitude: 25.2048, Longitude: 55.2708},
			Phone:           "+971 4 123 4567",
			Website:         "https://www.gulfexpo.ae",
			WebsiteDomain:   "gulfexpo.ae",
			Description:     "Professional expo services services in Dubai",
			Category:        "expo_services",
			CategoryLabel:   "Expo Services",
			Rating:          4.1,
			ReviewCount:     37,
			BusinessStatus:  "OPERATIONAL",
			BusinessHours:   "Sun-Thu 9:00-18:00",
			TeamSize:        15,
			EstablishedYear: 2017,
			Source:          entities.ListingSourceExternalSearchAPI,
			FetchedAt:       now,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}

	seeded := 0
	for i := range listings {
		listing := listings[i]
		if err := listingService.Create(ctx, &listing); err != nil {
			log.Printf("Failed to create listing %s: %v", listing.Name, err)
			continue
		}
		seeded++
	}

	log.Printf("Seeding completed: %d listings created", seeded)
}
