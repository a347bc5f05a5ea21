package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "nfhsdash/internal/errors"
	"nfhsdash/internal/shared/testutil"
	api "nfhsdash/pkg/contracts/api/v1"
)

func TestRequestValidator_ValidateStruct(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewRequestValidator(logger)

	selection := api.SelectionRequest{Round: "5", Indicator: "Sex ratio"}

	tests := []struct {
		name       string
		req        interface{}
		wantFields []string
	}{
		{
			name: "valid top request",
			req:  api.TopRequest{SelectionRequest: selection, N: 10},
		},
		{
			name:       "n out of range",
			req:        api.TopRequest{SelectionRequest: selection, N: 1001},
			wantFields: []string{"n"},
		},
		{
			name:       "bins zero",
			req:        api.DistributionRequest{SelectionRequest: selection, Bins: 0},
			wantFields: []string{"bins"},
		},
		{
			name: "empty comparison is valid",
			req:  api.CompareRequest{SelectionRequest: selection},
		},
		{
			name:       "blank state in comparison",
			req:        api.CompareRequest{SelectionRequest: selection, States: []string{"Kerala", "  "}},
			wantFields: []string{"state[1]"},
		},
		{
			name:       "blank round and indicator",
			req:        api.TopRequest{N: 5},
			wantFields: []string{"round", "indicator"},
		},
		{
			name:       "unknown chart format",
			req:        api.ChartRequest{Format: "gif"},
			wantFields: []string{"format"},
		},
		{
			name: "export with indicators",
			req:  api.ExportRequest{Round: "4", Indicators: []string{"Sex ratio"}, Format: "xlsx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.req)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			fields := make([]string, 0, len(details.Errors))
			for _, fe := range details.Errors {
				fields = append(fields, fe.Field)
				assert.NotEmpty(t, fe.Message)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestIsValidLabelRejectsControlCharacters(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewRequestValidator(logger)

	err := v.ValidateStruct(api.TrendRequest{Indicator: "Sex\x00ratio"})
	assert.Error(t, err)
	assert.NoError(t, v.ValidateStruct(api.TrendRequest{Indicator: "Women age 20-24 years married before age 18 years (%)"}))
}

func TestQueryParamValidator(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	qv := NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))

	t.Run("default when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		n, ok := qv.ValidateInt(w, httptest.NewRequest(http.MethodGet, "/top", nil), "n", 1, 1000, 10)
		assert.True(t, ok)
		assert.Equal(t, 10, n)
	})

	t.Run("parsed value", func(t *testing.T) {
		w := httptest.NewRecorder()
		n, ok := qv.ValidateInt(w, httptest.NewRequest(http.MethodGet, "/top?n=25", nil), "n", 1, 1000, 10)
		assert.True(t, ok)
		assert.Equal(t, 25, n)
	})

	t.Run("not an integer", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := qv.ValidateInt(w, httptest.NewRequest(http.MethodGet, "/top?n=ten", nil), "n", 1, 1000, 10)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "n must be a valid integer")
	})

	t.Run("out of range", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := qv.ValidateInt(w, httptest.NewRequest(http.MethodGet, "/distribution?bins=0", nil), "bins", 1, 500, 20)
		assert.False(t, ok)
		assert.Contains(t, w.Body.String(), "bins must be between 1 and 500")
	})

	t.Run("enum", func(t *testing.T) {
		w := httptest.NewRecorder()
		format, ok := qv.ValidateEnum(w, httptest.NewRequest(http.MethodGet, "/c?format=PNG", nil), "format", []string{"svg", "png"}, "svg")
		assert.True(t, ok)
		assert.Equal(t, "png", format)

		w = httptest.NewRecorder()
		_, ok = qv.ValidateEnum(w, httptest.NewRequest(http.MethodGet, "/c?format=gif", nil), "format", []string{"svg", "png"}, "svg")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
