package routes

import (
	"net/http"

	"github.com/expofinder/directory-backend/internal/api/handlers"
	"github.com/expofinder/directory-backend/internal/api/middleware"
	"github.com/expofinder/directory-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	listingHandler *handlers.ListingHandler
	importHandler  *handlers.ListingImportHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	listingHandler *handlers.ListingHandler,
	importHandler *handlers.ListingImportHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		listingHandler:  listingHandler,
		importHandler:   importHandler,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Listing endpoints
	r.mux.HandleFunc("GET /api/listings", r.listingHandler.ListListings)
	r.mux.HandleFunc("GET /api/listings/stats", r.listingHandler.GetStats)
	r.mux.HandleFunc("GET /api/listings/{id}", r.listingHandler.GetListing)

	// Import endpoints (hydrate the listing store from the search API)
	if r.importHandler != nil {
		r.mux.HandleFunc("POST /api/admin/import", r.importHandler.TriggerImport)
		r.mux.HandleFunc("GET /api/admin/import/last-run", r.importHandler.GetLastRun)
		r.mux.HandleFunc("POST /api/admin/import/test-key", r.importHandler.TestAPIKey)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
