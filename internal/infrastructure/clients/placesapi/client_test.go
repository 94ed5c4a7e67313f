package placesapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	apperrors "github.com/expofinder/directory-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithOptions("test-key", server.URL+"/textsearch", server.URL+"/details", nil, 0, server.Client())
}

func TestClient_Search_StatusClassification(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		wantCandidates int
		wantErr        bool
		wantErrType    apperrors.ErrorType
	}{
		{
			name:           "OK returns candidates",
			response:       `{"status":"OK","results":[{"place_id":"p1","name":"Alpha Stands"},{"place_id":"p2","name":"Beta Booths"}]}`,
			wantCandidates: 2,
		},
		{
			name:           "ZERO_RESULTS is benign",
			response:       `{"status":"ZERO_RESULTS","results":[]}`,
			wantCandidates: 0,
		},
		{
			name:        "REQUEST_DENIED is an unauthorized error",
			response:    `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`,
			wantErr:     true,
			wantErrType: apperrors.ErrorTypeUnauthorized,
		},
		{
			name:        "OVER_QUERY_LIMIT is a quota error",
			response:    `{"status":"OVER_QUERY_LIMIT"}`,
			wantErr:     true,
			wantErrType: apperrors.ErrorTypeQuota,
		},
		{
			name:        "unknown status is an external error",
			response:    `{"status":"INVALID_REQUEST"}`,
			wantErr:     true,
			wantErrType: apperrors.ErrorTypeExternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.response))
			})

			candidates, err := client.Search(context.Background(), "exhibition stand builder in Dubai, UAE")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Search() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var appErr *apperrors.AppError
				if !errors.As(err, &appErr) {
					t.Fatalf("Search() error %v is not an AppError", err)
				}
				if appErr.Type != tt.wantErrType {
					t.Errorf("Search() error type = %s, want %s", appErr.Type, tt.wantErrType)
				}
				return
			}
			if len(candidates) != tt.wantCandidates {
				t.Errorf("Search() returned %d candidates, want %d", len(candidates), tt.wantCandidates)
			}
		})
	}
}

func TestClient_Search_QueryParams(t *testing.T) {
	var gotQuery, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte(`{"status":"OK","results":[]}`))
	})

	if _, err := client.Search(context.Background(), "event planner in Berlin, Germany"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotQuery != "event planner in Berlin, Germany" {
		t.Errorf("query param = %q", gotQuery)
	}
	if gotKey != "test-key" {
		t.Errorf("key param = %q", gotKey)
	}
}

func TestClient_Search_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClientWithOptions("test-key", server.URL, server.URL, nil, 0, server.Client())
	server.Close()

	_, err := client.Search(context.Background(), "booth builder in Paris, France")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeExternal {
		t.Fatalf("Search() after server close = %v, want external AppError", err)
	}
}

func TestClient_Search_MissingKey(t *testing.T) {
	client := NewClientWithOptions("", "http://localhost", "http://localhost", nil, 0, nil)
	_, err := client.Search(context.Background(), "anything")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeValidation {
		t.Fatalf("Search() without key = %v, want validation AppError", err)
	}
}

func TestClient_Details(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("place_id"); got != "p1" {
			t.Errorf("place_id param = %q", got)
		}
		if got := r.URL.Query().Get("fields"); got == "" {
			t.Error("details request missing fields param")
		}
		w.Write([]byte(`{
			"status": "OK",
			"result": {
				"name": "Alpha Stands",
				"formatted_address": "1 Trade Centre, Dubai",
				"formatted_phone_number": "+971-4-555-0100",
				"website": "https://www.alphastands.ae",
				"rating": 4.6,
				"user_ratings_total": 128,
				"business_status": "OPERATIONAL",
				"opening_hours": {"weekday_text": ["Sunday: 9:00 AM - 6:00 PM"]},
				"types": ["general_contractor"],
				"geometry": {"location": {"lat": 25.2048, "lng": 55.2708}}
			}
		}`))
	})

	listing, err := client.Details(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if listing.PlaceID != "p1" {
		t.Errorf("PlaceID = %q", listing.PlaceID)
	}
	if listing.Name != "Alpha Stands" {
		t.Errorf("Name = %q", listing.Name)
	}
	if listing.Phone != "+971-4-555-0100" {
		t.Errorf("Phone = %q", listing.Phone)
	}
	if listing.Rating != 4.6 || listing.ReviewCount != 128 {
		t.Errorf("Rating/ReviewCount = %v/%d", listing.Rating, listing.ReviewCount)
	}
	if listing.Latitude != 25.2048 || listing.Longitude != 55.2708 {
		t.Errorf("coordinates = %v/%v", listing.Latitude, listing.Longitude)
	}
	if len(listing.OpeningHours) != 1 {
		t.Errorf("OpeningHours = %v", listing.OpeningHours)
	}
}

func TestClient_Details_NotFoundStatusSkipsCandidate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"NOT_FOUND"}`))
	})

	_, err := client.Details(context.Background(), "p-missing")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeExternal {
		t.Fatalf("Details() = %v, want external AppError", err)
	}
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[key], nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = map[string][]byte{}
	}
	m.items[key] = value
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error { return nil }

func TestClient_Details_UsesCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"status":"OK","result":{"name":"Cached Co","geometry":{"location":{"lat":1,"lng":2}}}}`))
	}))
	defer server.Close()

	cache := &memoryCache{}
	client := NewClientWithOptions("test-key", server.URL, server.URL, cache, 60, server.Client())

	for i := 0; i < 2; i++ {
		if _, err := client.Details(context.Background(), "p1"); err != nil {
			t.Fatalf("Details() call %d error = %v", i+1, err)
		}
	}
	if calls != 1 {
		t.Errorf("details endpoint hit %d times, want 1", calls)
	}
}
