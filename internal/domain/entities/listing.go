package entities

import (
	"time"
)

// ListingSource identifies where a listing record originated.
const ListingSourceExternalSearchAPI = "external_search_api"

// BusinessListing represents a business listing in the directory
type BusinessListing struct {
	ID              string    `json:"id" db:"id"`
	ExternalID      string    `json:"external_id" db:"external_id"`
	Name            string    `json:"name" db:"name"`
	Slug            string    `json:"slug" db:"slug"`
	Address         Address   `json:"address" db:"-"`
	Location        Location  `json:"location" db:"-"`
	Phone           string    `json:"phone" db:"phone"`
	Website         string    `json:"website" db:"website"`
	WebsiteDomain   string    `json:"website_domain" db:"website_domain"`
	Email           string    `json:"email" db:"email"`
	Description     string    `json:"description" db:"description"`
	Category        string    `json:"category" db:"category"`
	CategoryLabel   string    `json:"category_label" db:"category_label"`
	Rating          float64   `json:"rating" db:"rating"`
	ReviewCount     int       `json:"review_count" db:"review_count"`
	BusinessStatus  string    `json:"business_status" db:"business_status"`
	BusinessHours   string    `json:"business_hours" db:"business_hours"`
	TeamSize        int       `json:"team_size" db:"team_size"`
	EstablishedYear int       `json:"established_year" db:"established_year"`
	Verified        bool      `json:"verified" db:"verified"`
	Claimed         bool      `json:"claimed" db:"claimed"`
	Source          string    `json:"source" db:"source"`
	FetchedAt       time.Time `json:"fetched_at" db:"fetched_at"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Address represents a physical address
type Address struct {
	Street      string `json:"street" db:"street"`
	City        string `json:"city" db:"city"`
	State       string `json:"state" db:"state"`
	ZipCode     string `json:"zip_code" db:"zip_code"`
	Country     string `json:"country" db:"country"`
	CountryCode string `json:"country_code" db:"country_code"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}
