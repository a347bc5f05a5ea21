package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nfhsdash/internal/dataprocessing"
)

func TestProblemDetails_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		problem  *ProblemDetails
		wantKeys []string
		absent   []string
	}{
		{
			name:     "basic problem details",
			problem:  NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "n must be at least 1", "/api/survey/rounds/5/indicators/x/top"),
			wantKeys: []string{"type", "title", "status", "detail", "instance"},
		},
		{
			name: "problem with extensions",
			problem: NewProblemDetails(http.StatusUnprocessableEntity, TypeEmptyIndicator, "No Data", "no data", "").
				WithExtension("request_id", "12345").
				WithExtension("error_code", "EMPTY_INDICATOR"),
			wantKeys: []string{"type", "title", "status", "detail", "request_id", "error_code"},
			absent:   []string{"instance"},
		},
		{
			name:     "without optional fields",
			problem:  &ProblemDetails{Type: TypeInternal, Title: "Internal Error", Status: http.StatusInternalServerError},
			wantKeys: []string{"type", "title", "status"},
			absent:   []string{"detail", "instance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.problem)
			require.NoError(t, err)

			var result map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &result))

			for _, key := range tt.wantKeys {
				assert.Contains(t, result, key)
			}
			for _, key := range tt.absent {
				assert.NotContains(t, result, key)
			}
			assert.Equal(t, tt.problem.Type, result["type"])
			assert.Equal(t, float64(tt.problem.Status), result["status"])
		})
	}
}

func TestProblemDetails_WithExtension_NilMap(t *testing.T) {
	problem := &ProblemDetails{Type: TypeInternal, Status: 500}
	problem.WithExtension("a", 1).WithExtension("b", "two")
	assert.Len(t, problem.Extensions, 2)
}

func TestProblemDetails_Render(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/survey/rounds/5/indicators/x/summary", nil)

	require.NoError(t, render.Render(w, r, NewNoDataProblem(nil, r.URL.Path)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"detail":"no data"`)
}

func TestMapSurveyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "empty indicator",
			err:        &dataprocessing.EmptyIndicatorError{Round: "5", Indicator: "Literacy (%)", Rows: 3},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeEmptyIndicator,
			wantCode:   "EMPTY_INDICATOR",
		},
		{
			name:       "wrapped empty sentinel",
			err:        fmt.Errorf("summary: %w", dataprocessing.ErrEmptyIndicator),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeEmptyIndicator,
			wantCode:   "EMPTY_INDICATOR",
		},
		{
			name:       "unknown indicator",
			err:        fmt.Errorf("%w: %q", dataprocessing.ErrUnknownIndicator, "Height"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeUnknownIndicator,
			wantCode:   "UNKNOWN_INDICATOR",
		},
		{
			name:       "text indicator",
			err:        fmt.Errorf("%w: %q", dataprocessing.ErrNotNumeric, "Notes"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeNotNumeric,
			wantCode:   "NOT_NUMERIC",
		},
		{
			name:       "invalid bins",
			err:        dataprocessing.ErrInvalidBins,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   "INVALID_BINS",
		},
		{
			name:       "source unavailable",
			err:        &dataprocessing.SourceError{Path: "missing.xlsx", Err: stderrors.New("no such file")},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataUnavailable,
			wantCode:   "DATA_UNAVAILABLE",
		},
		{
			name:       "schema invalid",
			err:        &dataprocessing.SchemaError{Missing: []string{"STATE"}},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataUnavailable,
			wantCode:   "DATA_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem, ok := MapSurveyError(tt.err, "/x")
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.wantCode, problem.Extensions["error_code"])
			assert.Equal(t, "/x", problem.Instance)
		})
	}

	_, ok := MapSurveyError(stderrors.New("other"), "/x")
	assert.False(t, ok)
}

func TestNoDataProblemCarriesSelection(t *testing.T) {
	problem := NewNoDataProblem(&dataprocessing.EmptyIndicatorError{Round: "5", Indicator: "Literacy (%)", Rows: 0}, "")
	assert.Equal(t, "Literacy (%)", problem.Extensions["indicator"])
	assert.Equal(t, "5", problem.Extensions["round"])
	assert.Equal(t, 0, problem.Extensions["rows"])
}

func TestDataUnavailableProblemListsMissingColumns(t *testing.T) {
	problem := NewDataUnavailableProblem(&dataprocessing.SchemaError{Missing: []string{"STATE", "nfhs"}}, "")
	assert.Equal(t, []string{"STATE", "nfhs"}, problem.Extensions["missing_columns"])

	problem = NewDataUnavailableProblem(&dataprocessing.SourceError{Path: "x"}, "")
	assert.NotContains(t, problem.Extensions, "missing_columns")
}
