package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofinder/directory-backend/internal/domain/entities"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/placesapi"
)

func fixedNormalizer(t *testing.T) (*Normalizer, time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	n := NewNormalizer()
	n.now = func() time.Time { return now }
	return n, now
}

func TestNormalizer_FullPayload(t *testing.T) {
	n, now := fixedNormalizer(t)

	raw := &placesapi.RawListing{
		PlaceID:          "place-123",
		Name:             "Acme Stand Builders",
		FormattedAddress: "1 Messe Allee, Berlin",
		Phone:            "+49 30 1234567",
		Website:          "https://www.acme-stands.de/contact",
		Rating:           4.6,
		ReviewCount:      120,
		BusinessStatus:   "OPERATIONAL",
		OpeningHours:     []string{"Mon-Fri 9:00-18:00", "Sat 10:00-14:00"},
		Latitude:         52.52,
		Longitude:        13.40,
	}

	listing := n.Normalize(raw, "exhibition_stand_builder", "Berlin", "Germany")

	require.NotEmpty(t, listing.ID)
	assert.Equal(t, "place-123", listing.ExternalID)
	assert.Equal(t, "Acme Stand Builders", listing.Name)
	assert.Equal(t, "acme-stand-builders", listing.Slug)
	assert.Equal(t, "1 Messe Allee, Berlin", listing.Address.Street)
	assert.Equal(t, "Berlin", listing.Address.City)
	assert.Equal(t, "Germany", listing.Address.Country)
	assert.Equal(t, "DE", listing.Address.CountryCode)
	assert.Equal(t, 52.52, listing.Location.Latitude)
	assert.Equal(t, "https://www.acme-stands.de/contact", listing.Website)
	assert.Equal(t, "acme-stands.de", listing.WebsiteDomain)
	assert.Equal(t, "Exhibition Stand Builder", listing.CategoryLabel)
	assert.Equal(t, "Professional exhibition stand builder services in Berlin", listing.Description)
	assert.Equal(t, "Mon-Fri 9:00-18:00, Sat 10:00-14:00", listing.BusinessHours)
	assert.Equal(t, now.Year(), listing.EstablishedYear)
	assert.False(t, listing.Verified)
	assert.False(t, listing.Claimed)
	assert.Equal(t, entities.ListingSourceExternalSearchAPI, listing.Source)
	assert.Equal(t, now, listing.FetchedAt)
}

func TestNormalizer_EmptyPayloadGetsDefaults(t *testing.T) {
	n, _ := fixedNormalizer(t)

	listing := n.Normalize(&placesapi.RawListing{}, "booth_builder", "Munich", "Germany")

	assert.Equal(t, "Unknown Business", listing.Name)
	assert.Equal(t, "unknown-business", listing.Slug)
	assert.Equal(t, "Address not available", listing.Address.Street)
	assert.Equal(t, "Hours not available", listing.BusinessHours)
	assert.Equal(t, "OPERATIONAL", listing.BusinessStatus)
	assert.Equal(t, "unknownbusiness.com", listing.WebsiteDomain)
	assert.Equal(t, "https://www.unknownbusiness.com", listing.Website)
	assert.Equal(t, 5, listing.TeamSize)
}

func TestNormalizer_DerivedDomainFromName(t *testing.T) {
	n, _ := fixedNormalizer(t)

	raw := &placesapi.RawListing{Name: "Premium Exhibition & Display Builders International"}
	listing := n.Normalize(raw, "booth_builder", "Munich", "Germany")

	assert.Equal(t, "premiumexhibitiondis.com", listing.WebsiteDomain)
	assert.LessOrEqual(t, len(listing.WebsiteDomain), maxDerivedDomainLen+len(".com"))
}

func TestNormalizer_CountryCode(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"United States", "US"},
		{"UAE", "AE"},
		{"United Arab Emirates", "AE"},
		{"Wakanda", "WA"},
		{"X", "X"},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			assert.Equal(t, tt.want, countryCode(tt.country))
		})
	}
}

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Acme Stand Builders", "acme-stand-builders"},
		{"Müller & Söhne GmbH", "mller--shne-gmbh"},
		{"  spaced   out  ", "spaced-out"},
		{"!!!", "unknown-business"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveSlug(tt.name))
		})
	}
}
