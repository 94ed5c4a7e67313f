package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/expofinder/directory-backend/internal/api/handlers"
	"github.com/expofinder/directory-backend/internal/application/services"
	"github.com/expofinder/directory-backend/internal/domain/entities"
	apperrors "github.com/expofinder/directory-backend/pkg/errors"
)

type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Run(ctx context.Context, req services.ImportRequest) (*entities.ImportSummary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ImportSummary), args.Error(1)
}

func (m *MockImportService) LastRun(ctx context.Context) (*entities.ImportSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ImportSummary), args.Error(1)
}

func (m *MockImportService) TestAPIKey(ctx context.Context, apiKey string) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, target string, payload interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func TestImportHandler_TriggerImport(t *testing.T) {
	mockService := new(MockImportService)
	handler := handlers.NewListingImportHandler(mockService, nil, 0)

	req := services.ImportRequest{
		Category:   "exhibition_stand_builder",
		Country:    "Germany",
		Cities:     []string{"Berlin", "Munich"},
		MaxResults: 20,
	}
	summary := &entities.ImportSummary{
		RunID:        "run-1",
		Category:     "exhibition_stand_builder",
		Fetched:      12,
		Deduplicated: 10,
		Committed:    9,
		Failed:       1,
	}
	mockService.On("Run", mock.Anything, req).Return(summary, nil)

	rec := postJSON(t, handler.TriggerImport, "/api/admin/import", req, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got entities.ImportSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 9, got.Committed)
	mockService.AssertExpectations(t)
}

func TestImportHandler_TriggerImport_ValidationError(t *testing.T) {
	mockService := new(MockImportService)
	handler := handlers.NewListingImportHandler(mockService, nil, 0)

	mockService.On("Run", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewValidationError("category is required"))

	rec := postJSON(t, handler.TriggerImport, "/api/admin/import", services.ImportRequest{}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "category is required")
}

func TestImportHandler_TriggerImport_InvalidBody(t *testing.T) {
	mockService := new(MockImportService)
	handler := handlers.NewListingImportHandler(mockService, nil, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/import", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.TriggerImport(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestImportHandler_TriggerImport_IdempotencyKey(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	mockService := new(MockImportService)
	handler := handlers.NewListingImportHandler(mockService, redisClient, time.Hour)

	req := services.ImportRequest{
		Category:   "booth_builder",
		Country:    "Germany",
		Cities:     []string{"Berlin"},
		MaxResults: 5,
	}
	mockService.On("Run", mock.Anything, req).Return(&entities.ImportSummary{RunID: "run-1"}, nil).Once()

	headers := map[string]string{"Idempotency-Key": "evt-42"}

	first := postJSON(t, handler.TriggerImport, "/api/admin/import", req, headers)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "run-1")

	second := postJSON(t, handler.TriggerImport, "/api/admin/import", req, headers)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "duplicate")

	mockService.AssertExpectations(t)
	mockService.AssertNumberOfCalls(t, "Run", 1)
}

func TestImportHandler_GetLastRun(t *testing.T) {
	mockService := new(MockImportService)
	handler := handlers.NewListingImportHandler(mockService, nil, 0)

	mockService.On("LastRun", mock.Anything).
		Return(nil, apperrors.NewNotFoundError("no import run recorded")).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/import/last-run", nil)
	rec := httptest.NewRecorder()
	handler.GetLastRun(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	mockService.On("LastRun", mock.Anything).
		Return(&entities.ImportSummary{RunID: "run-9", Committed: 4}, nil).Once()

	rec = httptest.NewRecorder()
	handler.GetLastRun(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "run-9")
}

func TestImportHandler_TestAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{"valid key", nil, http.StatusOK, `"valid":true`},
		{"missing key", apperrors.NewValidationError("api key is required"), http.StatusBadRequest, "api key is required"},
		{"denied key", apperrors.NewUnauthorizedError("search request denied"), http.StatusOK, `"valid":false`},
		{"quota exhausted", apperrors.NewQuotaError("query limit reached"), http.StatusOK, `"valid":false`},
		{"unreachable api", apperrors.NewExternalError("connection refused", nil), http.StatusBadGateway, "could not reach"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockImportService)
			handler := handlers.NewListingImportHandler(mockService, nil, 0)
			mockService.On("TestAPIKey", mock.Anything, "key-1").Return(tt.serviceErr)

			rec := postJSON(t, handler.TestAPIKey, "/api/admin/import/test-key", map[string]string{"api_key": "key-1"}, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
