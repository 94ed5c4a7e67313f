package services

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expofinder/directory-backend/internal/domain/entities"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/placesapi"
)

const (
	defaultBusinessName   = "Unknown Business"
	defaultAddress        = "Address not available"
	defaultBusinessHours  = "Hours not available"
	defaultBusinessStatus = "OPERATIONAL"
	defaultTeamSize       = 5
	maxDerivedDomainLen   = 20
)

// countryCodes maps country names to ISO codes. Unmapped countries fall back
// to the uppercased two-letter prefix of the name.
var countryCodes = map[string]string{
	"United States":        "US",
	"Germany":              "DE",
	"United Kingdom":       "GB",
	"France":               "FR",
	"Italy":                "IT",
	"Spain":                "ES",
	"Netherlands":          "NL",
	"Canada":               "CA",
	"Australia":            "AU",
	"United Arab Emirates": "AE",
	"UAE":                  "AE",
	"Singapore":            "SG",
	"Japan":                "JP",
	"China":                "CN",
	"South Africa":         "ZA",
	"Brazil":               "BR",
	"Mexico":               "MX",
}

// Normalizer maps raw search+details payloads into canonical listing
// records. Normalize is total: every optional field gets a lowest-risk
// default, so no well-formed payload can abort a batch.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a normalizer stamping records with the current time.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize converts one raw listing into a canonical record.
func (n *Normalizer) Normalize(raw *placesapi.RawListing, category, city, country string) *entities.BusinessListing {
	now := n.now()

	name := raw.Name
	if name == "" {
		name = defaultBusinessName
	}

	address := raw.FormattedAddress
	if address == "" {
		address = defaultAddress
	}

	label := CategoryLabel(category)
	domain := deriveWebsiteDomain(raw.Website, name)

	website := raw.Website
	if website == "" {
		website = "https://www." + domain
	}

	description := "Professional " + strings.ToLower(label) + " services in " + city

	hours := defaultBusinessHours
	if len(raw.OpeningHours) > 0 {
		hours = strings.Join(raw.OpeningHours, ", ")
	}

	status := raw.BusinessStatus
	if status == "" {
		status = defaultBusinessStatus
	}

	return &entities.BusinessListing{
		ID:         uuid.NewString(),
		ExternalID: raw.PlaceID,
		Name:       name,
		Slug:       deriveSlug(name),
		Address: entities.Address{
			Street:      address,
			City:        city,
			Country:     country,
			CountryCode: countryCode(country),
		},
		Location: entities.Location{
			Latitude:  raw.Latitude,
			Longitude: raw.Longitude,
		},
		Phone:           raw.Phone,
		Website:         website,
		WebsiteDomain:   domain,
		Email:           "",
		Description:     description,
		Category:        category,
		CategoryLabel:   label,
		Rating:          raw.Rating,
		ReviewCount:     raw.ReviewCount,
		BusinessStatus:  status,
		BusinessHours:   hours,
		TeamSize:        defaultTeamSize,
		EstablishedYear: now.Year(),
		Verified:        false,
		Claimed:         false,
		Source:          entities.ListingSourceExternalSearchAPI,
		FetchedAt:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// countryCode resolves a country name to an ISO code.
func countryCode(country string) string {
	if code, ok := countryCodes[country]; ok {
		return code
	}
	trimmed := strings.TrimSpace(country)
	if len(trimmed) >= 2 {
		return strings.ToUpper(trimmed[:2])
	}
	return strings.ToUpper(trimmed)
}

// deriveSlug builds a URL slug from a business name.
func deriveSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.Join(strings.Fields(slug), "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "unknown-business"
	}
	return b.String()
}

// deriveWebsiteDomain extracts the host of a listing's website with the www.
// prefix stripped, falling back to a domain slug built from the business
// name when the website is missing or unparseable.
func deriveWebsiteDomain(website, name string) string {
	if website != "" {
		if parsed, err := url.Parse(website); err == nil && parsed.Hostname() != "" {
			return strings.TrimPrefix(parsed.Hostname(), "www.")
		}
	}

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	domain := b.String()
	if len(domain) > maxDerivedDomainLen {
		domain = domain[:maxDerivedDomainLen]
	}
	if domain == "" {
		domain = "unknown"
	}
	return domain + ".com"
}
