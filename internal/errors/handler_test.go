package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nfhsdash/internal/dataprocessing"
	"nfhsdash/internal/infrastructure"
	"nfhsdash/internal/shared/testutil"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNewErrorHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	handler := NewErrorHandler(logger, true)
	assert.True(t, handler.includeStack)
	assert.NotNil(t, handler.logger)
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
		wantLevel  slog.Level
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "api error",
			err:        ErrValidation("n", "n must be at least 1"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantTitle:  "Bad Request",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("handler: %w", ErrRateLimitExceeded),
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
			wantTitle:  "Too Many Requests",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "empty indicator",
			err:        &dataprocessing.EmptyIndicatorError{Round: "7", Indicator: "Sex ratio"},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeEmptyIndicator,
			wantTitle:  "No Data",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "unknown indicator",
			err:        fmt.Errorf("%w: %q", dataprocessing.ErrUnknownIndicator, "Height"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeUnknownIndicator,
			wantTitle:  "Unknown Indicator",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "source unavailable",
			err:        &dataprocessing.SourceError{Path: "x.xlsx", Err: stderrors.New("gone")},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataUnavailable,
			wantTitle:  "Survey Data Unavailable",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "unknown error",
			err:        stderrors.New("something broke"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
			wantLevel:  slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/survey/rounds/5", nil)
			r = r.WithContext(infrastructure.WithRequestID(r.Context(), "req-1"))

			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, tt.wantTitle, body["title"])
			assert.Equal(t, "/api/survey/rounds/5", body["instance"])
			assert.Equal(t, "req-1", body["request_id"])
			assert.NotContains(t, body, "stack")

			testutil.AssertLogContains(t, logs, tt.wantLevel, "request failed")
			testutil.AssertLogAttr(t, logs, "component", "error_handler")
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, w.Body.Len())
	assert.Equal(t, 0, logs.Count())
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), stderrors.New("boom"))
	assert.Contains(t, decodeProblem(t, w), "stack")

	w = httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), ErrValidation("n", "n must be at least 1"))
	assert.NotContains(t, decodeProblem(t, w), "stack", "client errors never carry a stack")
}

func TestErrorHandler_apiErrorToProblem(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)
	r := httptest.NewRequest(http.MethodGet, "/x", nil)

	tests := []struct {
		err      *APIError
		wantType string
	}{
		{InvalidRequestWithError(stderrors.New("bad json")), TypeValidation},
		{ErrValidation("n", "too small"), TypeValidation},
		{ErrRateLimitExceeded, TypeRateLimit},
		{RenderError("chart", stderrors.New("no bars")), TypeRenderFailed},
		{New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error"), TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.ErrorCode, func(t *testing.T) {
			problem := handler.apiErrorToProblem(tt.err, r)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.err.StatusCode, problem.Status)
			assert.Equal(t, tt.err.ErrorCode, problem.Extensions["error_code"])
		})
	}

	problem := handler.apiErrorToProblem(ErrValidation("bins", "too many"), r)
	assert.Equal(t, ValidationError{Field: "bins", Message: "too many"}, problem.Extensions["details"])
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	handler.HandlePanic(w, httptest.NewRequest(http.MethodGet, "/api/charts/top", nil), "nil map")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeInternal, body["type"])
	assert.Equal(t, "nil map", body["panic"])
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethod(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	handler.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/survey/rounds", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeMethod, body["type"])
	assert.Contains(t, body["detail"], "DELETE")
}

func TestGetStackTrace(t *testing.T) {
	stack := getStackTrace()
	assert.Contains(t, stack, "goroutine")
}

func TestErrorHandlerConcurrency(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/r/%d", i), nil)
			handler.HandleError(w, r, dataprocessing.ErrNotNumeric)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, logs.Count())
}
