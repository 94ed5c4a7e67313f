package placesapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/expofinder/directory-backend/internal/domain/providers"
	"github.com/expofinder/directory-backend/pkg/config"
	apperrors "github.com/expofinder/directory-backend/pkg/errors"
)

const (
	defaultHTTPTimeout     = 8 * time.Second
	defaultDetailsCacheTTL = 60 * 60 * 24

	detailsFields = "name,formatted_address,formatted_phone_number,website,rating,user_ratings_total,business_status,opening_hours,geometry,types"
)

// Candidate is a place reference returned by a text search, enough to drive
// a follow-up details call.
type Candidate struct {
	PlaceID string
	Name    string
}

// RawListing is the combined search+details payload for one place. Immutable
// once produced.
type RawListing struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Phone            string
	Website          string
	Rating           float64
	ReviewCount      int
	BusinessStatus   string
	OpeningHours     []string
	Types            []string
	Latitude         float64
	Longitude        float64
}

// Client talks to a Google-Places-style text-search + place-details API.
type Client struct {
	apiKey     string
	searchURL  string
	detailsURL string
	httpClient *http.Client
	cache      providers.CacheProvider
	cacheTTL   int
}

// NewClient creates a places API client from configuration.
func NewClient(cfg *config.PlacesConfig, cache providers.CacheProvider, cacheTTLSeconds int) *Client {
	return NewClientWithOptions(cfg.APIKey, cfg.SearchURL, cfg.DetailsURL, cache, cacheTTLSeconds, nil)
}

// NewClientWithOptions allows overriding URLs and HTTP client (used for tests).
func NewClientWithOptions(apiKey, searchURL, detailsURL string, cache providers.CacheProvider, cacheTTLSeconds int, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = defaultDetailsCacheTTL
	}
	return &Client{
		apiKey:     apiKey,
		searchURL:  searchURL,
		detailsURL: detailsURL,
		httpClient: httpClient,
		cache:      cache,
		cacheTTL:   cacheTTLSeconds,
	}
}

// WithAPIKey returns a copy of the client using a per-run API key. Details
// caching is keyed by place id only, so the copy shares the cache.
func (c *Client) WithAPIKey(apiKey string) *Client {
	clone := *c
	clone.apiKey = apiKey
	return &clone
}

// Search performs one text search call. The returned error classifies the
// API's own status: REQUEST_DENIED maps to an unauthorized error and
// OVER_QUERY_LIMIT to a quota error, both fatal for the run. ZERO_RESULTS is
// benign and returns an empty candidate list. Any other failure, transport
// included, is an external error the caller skips and continues past.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	if c.apiKey == "" {
		return nil, apperrors.NewValidationError("places api key is required")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	var payload textSearchResponse
	if err := c.doGet(ctx, c.searchURL, params, &payload); err != nil {
		return nil, err
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	case "REQUEST_DENIED":
		return nil, apperrors.NewUnauthorizedError(statusMessage("places search request denied", payload.ErrorMessage))
	case "OVER_QUERY_LIMIT":
		return nil, apperrors.NewQuotaError(statusMessage("places search quota exceeded", payload.ErrorMessage))
	default:
		return nil, apperrors.NewExternalError(statusMessage("places search failed: "+payload.Status, payload.ErrorMessage), nil)
	}

	candidates := make([]Candidate, 0, len(payload.Results))
	for _, result := range payload.Results {
		candidates = append(candidates, Candidate{
			PlaceID: result.PlaceID,
			Name:    result.Name,
		})
	}
	return candidates, nil
}

// Details performs one place-details call for a candidate. Failures are
// external errors the caller handles by skipping the single candidate.
// Responses are cached by place id so repeated runs do not re-spend calls on
// places already enriched recently.
func (c *Client) Details(ctx context.Context, placeID string) (*RawListing, error) {
	if c.apiKey == "" {
		return nil, apperrors.NewValidationError("places api key is required")
	}
	if strings.TrimSpace(placeID) == "" {
		return nil, apperrors.NewValidationError("place id is required")
	}

	cacheKey := "places:v1:details:" + placeID
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var listing RawListing
			if err := json.Unmarshal(cached, &listing); err == nil && listing.PlaceID != "" {
				return &listing, nil
			}
		}
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)
	params.Set("key", c.apiKey)

	var payload detailsResponse
	if err := c.doGet(ctx, c.detailsURL, params, &payload); err != nil {
		return nil, err
	}

	switch payload.Status {
	case "OK":
	case "REQUEST_DENIED":
		return nil, apperrors.NewUnauthorizedError(statusMessage("place details request denied", payload.ErrorMessage))
	case "OVER_QUERY_LIMIT":
		return nil, apperrors.NewQuotaError(statusMessage("place details quota exceeded", payload.ErrorMessage))
	default:
		return nil, apperrors.NewExternalError(statusMessage("place details failed: "+payload.Status, payload.ErrorMessage), nil)
	}

	result := payload.Result
	listing := &RawListing{
		PlaceID:          placeID,
		Name:             result.Name,
		FormattedAddress: result.FormattedAddress,
		Phone:            result.FormattedPhoneNumber,
		Website:          result.Website,
		Rating:           result.Rating,
		ReviewCount:      result.UserRatingsTotal,
		BusinessStatus:   result.BusinessStatus,
		Types:            result.Types,
		Latitude:         result.Geometry.Location.Lat,
		Longitude:        result.Geometry.Location.Lng,
	}
	if result.OpeningHours != nil {
		listing.OpeningHours = result.OpeningHours.WeekdayText
	}

	if c.cache != nil {
		if payload, err := json.Marshal(listing); err == nil {
			_ = c.cache.Set(ctx, cacheKey, payload, c.cacheTTL)
		}
	}

	return listing, nil
}

// Probe performs a single cheap search to validate the configured API key.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.Search(ctx, "restaurant in New York")
	return err
}

func (c *Client) doGet(ctx context.Context, baseURL string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s?%s", baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apperrors.NewExternalError("failed to build places request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewExternalError("places request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewExternalError(fmt.Sprintf("places request returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewExternalError("failed to decode places response", err)
	}
	return nil
}

func statusMessage(message, apiDetail string) string {
	if apiDetail != "" {
		return message + ": " + apiDetail
	}
	return message
}

type textSearchResponse struct {
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message,omitempty"`
	Results      []textSearchResult `json:"results"`
}

type textSearchResult struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
}

type detailsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Result       detailsResult `json:"result"`
}

type detailsResult struct {
	Name                 string        `json:"name"`
	FormattedAddress     string        `json:"formatted_address"`
	FormattedPhoneNumber string        `json:"formatted_phone_number"`
	Website              string        `json:"website"`
	Rating               float64       `json:"rating"`
	UserRatingsTotal     int           `json:"user_ratings_total"`
	BusinessStatus       string        `json:"business_status"`
	OpeningHours         *openingHours `json:"opening_hours,omitempty"`
	Types                []string      `json:"types"`
	Geometry             geometry      `json:"geometry"`
}

type openingHours struct {
	WeekdayText []string `json:"weekday_text"`
}

type geometry struct {
	Location location `json:"location"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
