package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"nfhsdash/internal/dataprocessing"
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{}, 5+len(pd.Extensions))

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if pd.Extensions == nil {
		pd.Extensions = make(map[string]interface{})
	}
	pd.Extensions[key] = value
	return pd
}

// NewNoDataProblem describes a selection whose indicator has no usable
// values. The dashboard shows it as "no data".
func NewNoDataProblem(empty *dataprocessing.EmptyIndicatorError, instance string) *ProblemDetails {
	problem := NewProblemDetails(
		http.StatusUnprocessableEntity,
		TypeEmptyIndicator,
		"No Data",
		"no data",
		instance,
	).WithExtension("error_code", "EMPTY_INDICATOR")

	if empty != nil {
		problem.WithExtension("indicator", empty.Indicator).
			WithExtension("round", empty.Round).
			WithExtension("rows", empty.Rows)
	}
	return problem
}

// NewDataUnavailableProblem describes a survey extract that could not be
// loaded. Clients cannot fix this by changing the request.
func NewDataUnavailableProblem(err error, instance string) *ProblemDetails {
	problem := NewProblemDetails(
		http.StatusServiceUnavailable,
		TypeDataUnavailable,
		"Survey Data Unavailable",
		"The survey extract could not be loaded",
		instance,
	).WithExtension("error_code", "DATA_UNAVAILABLE")

	var schemaErr *dataprocessing.SchemaError
	if errors.As(err, &schemaErr) && len(schemaErr.Missing) > 0 {
		problem.WithExtension("missing_columns", schemaErr.Missing)
	}
	return problem
}

// MapSurveyError maps survey domain errors to problem details. The second
// result is false when err is not a survey error.
func MapSurveyError(err error, instance string) (*ProblemDetails, bool) {
	var empty *dataprocessing.EmptyIndicatorError
	switch {
	case errors.As(err, &empty):
		return NewNoDataProblem(empty, instance), true

	case errors.Is(err, dataprocessing.ErrEmptyIndicator):
		return NewNoDataProblem(nil, instance), true

	case errors.Is(err, dataprocessing.ErrUnknownIndicator):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeUnknownIndicator,
			"Unknown Indicator",
			err.Error(),
			instance,
		).WithExtension("error_code", "UNKNOWN_INDICATOR"), true

	case errors.Is(err, dataprocessing.ErrNotNumeric):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeNotNumeric,
			"Indicator Not Numeric",
			err.Error(),
			instance,
		).WithExtension("error_code", "NOT_NUMERIC"), true

	case errors.Is(err, dataprocessing.ErrInvalidBins):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			err.Error(),
			instance,
		).WithExtension("error_code", "INVALID_BINS").
			WithExtension("errors", []ValidationError{{Field: "bins", Message: "bins must be at least 1"}}), true

	case errors.Is(err, dataprocessing.ErrSourceUnavailable),
		errors.Is(err, dataprocessing.ErrSchema):
		return NewDataUnavailableProblem(err, instance), true
	}
	return nil, false
}
