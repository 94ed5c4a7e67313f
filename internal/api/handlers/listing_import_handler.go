package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/expofinder/directory-backend/internal/application/services"
	"github.com/expofinder/directory-backend/internal/domain/entities"
	apperrors "github.com/expofinder/directory-backend/pkg/errors"
)

// ImportService is the import surface the handler exposes over HTTP.
type ImportService interface {
	Run(ctx context.Context, req services.ImportRequest) (*entities.ImportSummary, error)
	LastRun(ctx context.Context) (*entities.ImportSummary, error)
	TestAPIKey(ctx context.Context, apiKey string) error
}

// ListingImportHandler triggers external search API -> listing store imports.
type ListingImportHandler struct {
	service        ImportService
	redisClient    *redislib.Client
	idempotencyTTL time.Duration
}

func NewListingImportHandler(
	service ImportService,
	redisClient *redislib.Client,
	idempotencyTTL time.Duration,
) *ListingImportHandler {
	if idempotencyTTL <= 0 {
		idempotencyTTL = 24 * time.Hour
	}
	return &ListingImportHandler{
		service:        service,
		redisClient:    redisClient,
		idempotencyTTL: idempotencyTTL,
	}
}

// TriggerImport handles POST /api/admin/import. The response is always the
// run summary: aborted runs report their reason in-band with a 200, only
// rejected requests get an error status.
func (h *ListingImportHandler) TriggerImport(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		respondWithError(w, http.StatusServiceUnavailable, "import service not configured")
		return
	}

	if duplicate, key := h.isDuplicate(r.Context(), r); duplicate {
		respondWithJSON(w, http.StatusOK, map[string]string{
			"status":          "duplicate",
			"idempotency_key": key,
		})
		return
	}

	var req services.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.service.Run(r.Context(), req)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "import run failed")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// GetLastRun handles GET /api/admin/import/last-run
func (h *ListingImportHandler) GetLastRun(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.LastRun(r.Context())
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeNotFound {
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to load last import run")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

type testKeyRequest struct {
	APIKey string `json:"api_key"`
}

// TestAPIKey handles POST /api/admin/import/test-key
func (h *ListingImportHandler) TestAPIKey(w http.ResponseWriter, r *http.Request) {
	var req testKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.TestAPIKey(r.Context(), req.APIKey); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			switch appErr.Type {
			case apperrors.ErrorTypeValidation:
				respondWithError(w, http.StatusBadRequest, appErr.Message)
			case apperrors.ErrorTypeUnauthorized:
				respondWithJSON(w, http.StatusOK, map[string]interface{}{
					"valid": false,
					"error": appErr.Message,
				})
			case apperrors.ErrorTypeQuota:
				respondWithJSON(w, http.StatusOK, map[string]interface{}{
					"valid": false,
					"error": appErr.Message,
				})
			default:
				respondWithError(w, http.StatusBadGateway, "key validation could not reach the search api")
			}
			return
		}
		respondWithError(w, http.StatusBadGateway, "key validation could not reach the search api")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"valid": true,
	})
}

func (h *ListingImportHandler) isDuplicate(ctx context.Context, r *http.Request) (bool, string) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		key = strings.TrimSpace(r.Header.Get("X-Idempotency-Key"))
	}
	if key == "" || h.redisClient == nil {
		return false, ""
	}

	redisKey := "listing_import_idem:" + key
	ok, err := h.redisClient.SetNX(ctx, redisKey, time.Now().UTC().Format(time.RFC3339Nano), h.idempotencyTTL).Result()
	if err != nil {
		log.Printf("idempotency check failed: %v", err)
		return false, key
	}
	if !ok {
		return true, key
	}
	return false, key
}
