package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/expofinder/directory-backend/internal/domain/entities"
	"github.com/expofinder/directory-backend/internal/domain/repositories"
	apperrors "github.com/expofinder/directory-backend/pkg/errors"
)

// ListingService is the read surface the listing handler serves.
type ListingService interface {
	GetByID(ctx context.Context, id string) (*entities.BusinessListing, error)
	List(ctx context.Context, filter repositories.ListingFilter) ([]*entities.BusinessListing, error)
	Stats(ctx context.Context) (*repositories.ListingStats, error)
}

// ListingHandler handles listing-related HTTP requests
type ListingHandler struct {
	service ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(service ListingService) *ListingHandler {
	return &ListingHandler{
		service: service,
	}
}

// GetListing handles GET /api/listings/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("id")
	if listingID == "" {
		respondWithError(w, http.StatusBadRequest, "listing ID is required")
		return
	}

	listing, err := h.service.GetByID(r.Context(), listingID)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeNotFound {
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, listing)
}

// ListListings handles GET /api/listings
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.ListingFilter{
		City:     query.Get("city"),
		Country:  query.Get("country"),
		Category: query.Get("category"),
		Limit:    30,
		Offset:   0,
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 && limit <= 100 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	if verified, err := strconv.ParseBool(query.Get("verified")); err == nil {
		filter.Verified = &verified
	}
	if claimed, err := strconv.ParseBool(query.Get("claimed")); err == nil {
		filter.Claimed = &claimed
	}

	listings, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"listings": listings,
		"count":    len(listings),
	})
}

// GetStats handles GET /api/listings/stats
func (h *ListingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute listing stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
