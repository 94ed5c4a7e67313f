package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/expofinder/directory-backend/internal/domain/entities"
	"github.com/expofinder/directory-backend/internal/domain/providers"
	"github.com/expofinder/directory-backend/internal/domain/repositories"
	"github.com/expofinder/directory-backend/internal/infrastructure/clients/placesapi"
	"github.com/expofinder/directory-backend/internal/infrastructure/observability"
	"github.com/expofinder/directory-backend/pkg/config"
	apperrors "github.com/expofinder/directory-backend/pkg/errors"
)

const (
	lastRunCacheKey = "listings:import:last_run"
	lastRunCacheTTL = 60 * 60 * 24

	abortReasonKeyDenied     = "search API key denied"
	abortReasonQuotaExceeded = "search API quota exceeded"
)

// PlacesClient is the fetch contract the import run drives.
type PlacesClient interface {
	Search(ctx context.Context, query string) ([]placesapi.Candidate, error)
	Details(ctx context.Context, placeID string) (*placesapi.RawListing, error)
	Probe(ctx context.Context) error
}

// ImportRequest triggers one import run.
type ImportRequest struct {
	Category     string   `json:"category"`
	Country      string   `json:"country"`
	Cities       []string `json:"cities"`
	RadiusMeters int      `json:"radius_meters"`
	MaxResults   int      `json:"max_results"`
	APIKey       string   `json:"api_key,omitempty"`
}

// Validate fails fast, before any network call.
func (r *ImportRequest) Validate() error {
	if r.Category == "" {
		return apperrors.NewValidationError("category is required")
	}
	if r.Country == "" {
		return apperrors.NewValidationError("country is required")
	}
	if len(r.Cities) == 0 {
		return apperrors.NewValidationError("at least one city is required")
	}
	if r.MaxResults <= 0 {
		return apperrors.NewValidationError("max results must be positive")
	}
	return nil
}

// ListingImportService runs the end-to-end import: plan queries, fetch and
// enrich within the call budget, normalize, deduplicate within the batch and
// against the store, then commit survivors one at a time. A run only aborts
// on a fatal API status during fetching; every other failure is absorbed
// locally and reflected in the summary counts.
type ListingImportService struct {
	clientFor func(apiKey string) PlacesClient
	repo      repositories.ListingRepository
	committer *BatchCommitter
	normalize *Normalizer
	dedup     *Deduplicator
	bus       providers.EventBus
	cache     providers.CacheProvider
	metrics   *observability.Metrics
	cfg       config.ImportConfig
}

// NewListingImportService creates an import service using the configured
// places client, substituting the per-request API key when one is supplied.
func NewListingImportService(
	places *placesapi.Client,
	repo repositories.ListingRepository,
	creator ListingCreator,
	bus providers.EventBus,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
	cfg config.ImportConfig,
) *ListingImportService {
	clientFor := func(apiKey string) PlacesClient {
		if apiKey == "" {
			return places
		}
		return places.WithAPIKey(apiKey)
	}
	return NewListingImportServiceWithClient(clientFor, repo, creator, bus, cache, metrics, cfg)
}

// NewListingImportServiceWithClient allows injecting the places client
// factory (used for tests).
func NewListingImportServiceWithClient(
	clientFor func(apiKey string) PlacesClient,
	repo repositories.ListingRepository,
	creator ListingCreator,
	bus providers.EventBus,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
	cfg config.ImportConfig,
) *ListingImportService {
	if cfg.PerCityCallMultiplier <= 0 {
		cfg.PerCityCallMultiplier = 3
	}
	if cfg.HardCallCap <= 0 {
		cfg.HardCallCap = 200
	}
	if cfg.StoreSnapshotSize <= 0 {
		cfg.StoreSnapshotSize = 5000
	}
	return &ListingImportService{
		clientFor: clientFor,
		repo:      repo,
		committer: NewBatchCommitter(creator),
		normalize: NewNormalizer(),
		dedup:     NewDeduplicator(),
		bus:       bus,
		cache:     cache,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// fetchProgress tracks the per-city and per-run result counts the planner
// and enrichment loop consult.
type fetchProgress struct {
	budget     *CallBudget
	cityCounts map[string]int
	total      int
}

func (p *fetchProgress) CityResultCount(city string) int { return p.cityCounts[city] }
func (p *fetchProgress) TotalResultCount() int           { return p.total }
func (p *fetchProgress) BudgetRemaining() int            { return p.budget.Remaining() }

func (p *fetchProgress) add(city string) {
	p.cityCounts[city]++
	p.total++
}

// fetchedListing pairs a raw payload with the query context it came from.
type fetchedListing struct {
	raw  *placesapi.RawListing
	city string
}

// Run executes one import run and always returns a summary when the run
// itself could start; only validation and snapshot-read failures surface as
// errors.
func (s *ListingImportService) Run(ctx context.Context, req ImportRequest) (*entities.ImportSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := observability.LoggerFromContext(ctx)
	category := normalizeCategory(req.Category)
	runID := uuid.NewString()
	startedAt := time.Now()

	budget := NewCallBudget(len(req.Cities), s.cfg.PerCityCallMultiplier, s.cfg.HardCallCap)
	planner := NewQueryPlanner(category, req.Country, req.Cities, req.MaxResults)
	client := s.clientFor(req.APIKey)

	logger.Info().
		Str("run_id", runID).
		Str("category", category).
		Str("country", req.Country).
		Int("cities", len(req.Cities)).
		Int("max_results", req.MaxResults).
		Int("call_budget", budget.Remaining()).
		Msg("starting listing import run")

	raws, abortReason := s.fetch(ctx, client, planner, budget, req)

	summary := &entities.ImportSummary{
		RunID:           runID,
		Category:        category,
		Country:         req.Country,
		Cities:          req.Cities,
		Requested:       req.MaxResults,
		Fetched:         len(raws),
		Errors:          []string{},
		SampleCommitted: []string{},
		AbortReason:     abortReason,
		StartedAt:       startedAt,
	}

	if abortReason != "" {
		summary.FinishedAt = time.Now()
		logger.Error().
			Str("run_id", runID).
			Str("reason", abortReason).
			Int("fetched", summary.Fetched).
			Msg("import run aborted")
		s.finish(ctx, summary)
		return summary, nil
	}

	// A cancelled context stops the run after fetching: the snapshot read and
	// the store writes would only fail against the dead context, so the
	// partial summary is returned as-is instead of being discarded.
	if ctx.Err() != nil {
		summary.FinishedAt = time.Now()
		logger.Warn().
			Str("run_id", runID).
			Int("fetched", summary.Fetched).
			Msg("import run cancelled, returning partial summary")
		s.finish(context.WithoutCancel(ctx), summary)
		return summary, nil
	}

	records := make([]*entities.BusinessListing, 0, len(raws))
	for _, item := range raws {
		records = append(records, s.normalize.Normalize(item.raw, category, item.city, req.Country))
	}

	snapshot, err := s.repo.Snapshot(ctx, s.cfg.StoreSnapshotSize)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read existing listings for dedup", err)
	}

	unique := s.dedup.Dedup(records, snapshot)
	summary.Deduplicated = len(unique)

	outcome := s.committer.Commit(ctx, unique)
	summary.Committed = outcome.Committed
	summary.Failed = outcome.Failed
	summary.Errors = outcome.Errors
	summary.SampleCommitted = outcome.SampleCommitted
	summary.FinishedAt = time.Now()

	if s.metrics != nil && outcome.Committed > 0 {
		observability.RecordImportCommitted(ctx, s.metrics, category, int64(outcome.Committed))
	}

	logger.Info().
		Str("run_id", runID).
		Int("fetched", summary.Fetched).
		Int("deduplicated", summary.Deduplicated).
		Int("committed", summary.Committed).
		Int("failed", summary.Failed).
		Int("budget_left", budget.Remaining()).
		Msg("import run complete")

	s.finish(ctx, summary)
	return summary, nil
}

// fetch drives the planner until it stops emitting, a fatal API status
// aborts the run, or the caller cancels. Transient failures skip the query
// or candidate and continue.
func (s *ListingImportService) fetch(
	ctx context.Context,
	client PlacesClient,
	planner *QueryPlanner,
	budget *CallBudget,
	req ImportRequest,
) ([]fetchedListing, string) {
	logger := observability.LoggerFromContext(ctx)
	progress := &fetchProgress{budget: budget, cityCounts: map[string]int{}}

	// Place ids already enriched this run. A place can resurface in a later
	// phrase's results, or a details payload can resolve a second candidate id
	// to an already-fetched place; neither may occupy a result slot.
	seen := map[string]struct{}{}

	var raws []fetchedListing
	it := planner.Iterate()

	for {
		if ctx.Err() != nil {
			return raws, ""
		}

		query, ok := it.Next(progress)
		if !ok {
			return raws, ""
		}
		if !budget.Reserve(1) {
			return raws, ""
		}

		s.recordCall(ctx, "search")
		candidates, err := client.Search(ctx, query.Text())
		if err != nil {
			if reason, fatal := fatalAbortReason(err); fatal {
				return raws, reason
			}
			logger.Warn().Err(err).Str("query", query.Text()).Msg("search failed, skipping query")
			continue
		}

		for _, candidate := range candidates {
			if ctx.Err() != nil {
				return raws, ""
			}
			if progress.CityResultCount(query.City) >= planner.PerCityTarget() ||
				progress.TotalResultCount() >= req.MaxResults {
				break
			}
			if candidate.PlaceID != "" {
				if _, dup := seen[candidate.PlaceID]; dup {
					continue
				}
			}
			if !budget.Reserve(1) {
				break
			}

			s.recordCall(ctx, "details")
			raw, err := client.Details(ctx, candidate.PlaceID)
			if err != nil {
				if reason, fatal := fatalAbortReason(err); fatal {
					return raws, reason
				}
				logger.Warn().Err(err).
					Str("place_id", candidate.PlaceID).
					Str("name", candidate.Name).
					Msg("details failed, skipping candidate")
				continue
			}

			if raw.PlaceID != "" {
				if _, dup := seen[raw.PlaceID]; dup {
					if candidate.PlaceID != "" {
						seen[candidate.PlaceID] = struct{}{}
					}
					logger.Debug().
						Str("place_id", raw.PlaceID).
						Str("name", raw.Name).
						Msg("duplicate place in details payload, skipping candidate")
					continue
				}
				seen[raw.PlaceID] = struct{}{}
			}
			if candidate.PlaceID != "" {
				seen[candidate.PlaceID] = struct{}{}
			}

			raws = append(raws, fetchedListing{raw: raw, city: query.City})
			progress.add(query.City)
		}
	}
}

// finish publishes the run event and caches the last-run report. Both are
// best-effort.
func (s *ListingImportService) finish(ctx context.Context, summary *entities.ImportSummary) {
	logger := observability.LoggerFromContext(ctx)

	if s.bus != nil {
		event := entities.NewImportEvent(*summary)
		if err := s.bus.Publish(ctx, providers.EventChannelImports, event); err != nil {
			logger.Warn().Err(err).Str("run_id", summary.RunID).Msg("failed to publish import event")
		}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, lastRunCacheKey, payload, lastRunCacheTTL); err != nil {
				logger.Warn().Err(err).Msg("failed to cache last import run")
			}
		}
	}
}

// LastRun returns the most recent run summary from the cache.
func (s *ListingImportService) LastRun(ctx context.Context) (*entities.ImportSummary, error) {
	if s.cache == nil {
		return nil, apperrors.NewNotFoundError("no import run recorded")
	}
	payload, err := s.cache.Get(ctx, lastRunCacheKey)
	if err != nil || len(payload) == 0 {
		return nil, apperrors.NewNotFoundError("no import run recorded")
	}
	var summary entities.ImportSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, apperrors.NewInternalError("failed to decode last import run", err)
	}
	return &summary, nil
}

// TestAPIKey validates a search API key with a single probe search.
func (s *ListingImportService) TestAPIKey(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return apperrors.NewValidationError("api key is required")
	}
	return s.clientFor(apiKey).Probe(ctx)
}

func (s *ListingImportService) recordCall(ctx context.Context, operation string) {
	if s.metrics != nil {
		observability.RecordPlacesCall(ctx, s.metrics, operation)
	}
}

// fatalAbortReason classifies an API error as run-fatal. Only a denied key
// or an exhausted quota abort the run.
func fatalAbortReason(err error) (string, bool) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return "", false
	}
	switch appErr.Type {
	case apperrors.ErrorTypeUnauthorized:
		return abortReasonKeyDenied, true
	case apperrors.ErrorTypeQuota:
		return abortReasonQuotaExceeded, true
	default:
		return "", false
	}
}
