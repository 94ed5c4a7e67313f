package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/expofinder/directory-backend/internal/domain/entities"
	"github.com/expofinder/directory-backend/internal/domain/repositories"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/expofinder/directory-backend/pkg/errors"
)

const uniqueViolationCode = "23505"

const listingColumns = `
	id, external_id, name, slug, street, city, state, zip_code, country, country_code,
	latitude, longitude, phone, website, website_domain, email, description,
	category, category_label, rating, review_count, business_status, business_hours,
	team_size, established_year, verified, claimed, source, fetched_at, created_at, updated_at
`

// ListingAdapter implements the ListingRepository interface. The listings
// table carries a unique index on external_id as the store-level backstop
// against concurrent imports committing the same place.
type ListingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewListingAdapter creates a new listing adapter
func NewListingAdapter(client *postgres.Client) repositories.ListingRepository {
	return &ListingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a listing record
func (a *ListingAdapter) Create(ctx context.Context, listing *entities.BusinessListing) error {
	if listing == nil {
		return apperrors.NewInternalError("listing is nil", fmt.Errorf("listing is nil"))
	}

	record := goqu.Record{
		"id":               listing.ID,
		"external_id":      sql.NullString{String: listing.ExternalID, Valid: listing.ExternalID != ""},
		"name":             listing.Name,
		"slug":             listing.Slug,
		"street":           listing.Address.Street,
		"city":             listing.Address.City,
		"state":            listing.Address.State,
		"zip_code":         listing.Address.ZipCode,
		"country":          listing.Address.Country,
		"country_code":     listing.Address.CountryCode,
		"latitude":         listing.Location.Latitude,
		"longitude":        listing.Location.Longitude,
		"phone":            listing.Phone,
		"website":          listing.Website,
		"website_domain":   listing.WebsiteDomain,
		"email":            listing.Email,
		"description":      listing.Description,
		"category":         listing.Category,
		"category_label":   listing.CategoryLabel,
		"rating":           listing.Rating,
		"review_count":     listing.ReviewCount,
		"business_status":  listing.BusinessStatus,
		"business_hours":   listing.BusinessHours,
		"team_size":        listing.TeamSize,
		"established_year": listing.EstablishedYear,
		"verified":         listing.Verified,
		"claimed":          listing.Claimed,
		"source":           listing.Source,
		"fetched_at":       listing.FetchedAt,
		"created_at":       listing.CreatedAt,
		"updated_at":       listing.UpdatedAt,
	}

	query, args, err := a.db.Insert("listings").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build listing insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
			return apperrors.NewConflictError(fmt.Sprintf("listing %s already exists", listing.Name))
		}
		return apperrors.NewInternalError("failed to create listing", err)
	}

	return nil
}

// GetByID retrieves a listing by ID
func (a *ListingAdapter) GetByID(ctx context.Context, id string) (*entities.BusinessListing, error) {
	query := `SELECT` + listingColumns + `FROM listings WHERE id = $1`

	listing, err := scanListing(a.client.DB().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("listing with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get listing", err)
	}

	return listing, nil
}

// List retrieves listings with filters
func (a *ListingAdapter) List(ctx context.Context, filter repositories.ListingFilter) ([]*entities.BusinessListing, error) {
	query := `SELECT` + listingColumns + `FROM listings WHERE 1=1`

	args := []interface{}{}
	argCount := 1

	if filter.City != "" {
		query += fmt.Sprintf(" AND lower(city) = lower($%d)", argCount)
		args = append(args, filter.City)
		argCount++
	}

	if filter.Country != "" {
		query += fmt.Sprintf(" AND lower(country) = lower($%d)", argCount)
		args = append(args, filter.Country)
		argCount++
	}

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argCount)
		args = append(args, filter.Category)
		argCount++
	}

	if filter.Verified != nil {
		query += fmt.Sprintf(" AND verified = $%d", argCount)
		args = append(args, *filter.Verified)
		argCount++
	}

	if filter.Claimed != nil {
		query += fmt.Sprintf(" AND claimed = $%d", argCount)
		args = append(args, *filter.Claimed)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
		argCount++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filter.Offset)
	}

	return a.queryListings(ctx, query, args...)
}

// Snapshot bulk-reads up to limit existing listings in one call
func (a *ListingAdapter) Snapshot(ctx context.Context, limit int) ([]*entities.BusinessListing, error) {
	query := `SELECT` + listingColumns + `FROM listings ORDER BY created_at DESC`

	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	return a.queryListings(ctx, query, args...)
}

// Stats returns aggregate counts over the listing store
func (a *ListingAdapter) Stats(ctx context.Context) (*repositories.ListingStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE verified),
			COUNT(*) FILTER (WHERE claimed),
			COUNT(*) FILTER (WHERE NOT claimed)
		FROM listings
	`

	stats := &repositories.ListingStats{}
	err := a.client.DB().QueryRowContext(ctx, query).Scan(
		&stats.Total,
		&stats.Verified,
		&stats.Claimed,
		&stats.Unclaimed,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get listing stats", err)
	}

	return stats, nil
}

func (a *ListingAdapter) queryListings(ctx context.Context, query string, args ...interface{}) ([]*entities.BusinessListing, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list listings", err)
	}
	defer rows.Close()

	listings := []*entities.BusinessListing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan listing", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating listings", err)
	}

	return listings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*entities.BusinessListing, error) {
	listing := &entities.BusinessListing{}
	var externalID sql.NullString

	err := row.Scan(
		&listing.ID,
		&externalID,
		&listing.Name,
		&listing.Slug,
		&listing.Address.Street,
		&listing.Address.City,
		&listing.Address.State,
		&listing.Address.ZipCode,
		&listing.Address.Country,
		&listing.Address.CountryCode,
		&listing.Location.Latitude,
		&listing.Location.Longitude,
		&listing.Phone,
		&listing.Website,
		&listing.WebsiteDomain,
		&listing.Email,
		&listing.Description,
		&listing.Category,
		&listing.CategoryLabel,
		&listing.Rating,
		&listing.ReviewCount,
		&listing.BusinessStatus,
		&listing.BusinessHours,
		&listing.TeamSize,
		&listing.EstablishedYear,
		&listing.Verified,
		&listing.Claimed,
		&listing.Source,
		&listing.FetchedAt,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	listing.ExternalID = externalID.String
	return listing, nil
}
