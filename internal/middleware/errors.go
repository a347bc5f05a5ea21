package middleware

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "nfhsdash/internal/errors"
	"nfhsdash/internal/infrastructure"
)

// ProblemFromStatus creates a problem from an HTTP status code
func ProblemFromStatus(status int, detail, instance string) *apierrors.ProblemDetails {
	var title, problemType string

	switch status {
	case http.StatusBadRequest:
		title = "Bad Request"
		problemType = apierrors.TypeValidation
	case http.StatusNotFound:
		title = "Not Found"
		problemType = apierrors.TypeNotFound
	case http.StatusMethodNotAllowed:
		title = "Method Not Allowed"
		problemType = apierrors.TypeMethod
	case http.StatusTooManyRequests:
		title = "Too Many Requests"
		problemType = apierrors.TypeRateLimit
	case http.StatusServiceUnavailable:
		title = "Service Unavailable"
		problemType = apierrors.TypeServiceDown
	case http.StatusGatewayTimeout:
		title = "Request Timeout"
		problemType = apierrors.TypeTimeout
	default:
		title = http.StatusText(status)
		problemType = apierrors.TypeInternal
	}

	return apierrors.NewProblemDetails(status, problemType, title, detail, instance)
}

// writeProblem renders a problem response carrying the request id
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	renderProblem(w, r, ProblemFromStatus(status, detail, r.URL.Path))
}

// writeAPIError renders a predefined APIError as a problem response
func writeAPIError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	problem := ProblemFromStatus(apiErr.StatusCode, apiErr.Message, r.URL.Path).
		WithExtension("error_code", apiErr.ErrorCode)
	renderProblem(w, r, problem)
}

func renderProblem(w http.ResponseWriter, r *http.Request, problem *apierrors.ProblemDetails) {
	if requestID := GetRequestID(r.Context()); requestID != "" {
		problem.WithExtension("request_id", requestID)
	}
	if traceID := infrastructure.TraceIDFromContext(r.Context()); traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}
	render.Render(w, r, problem)
}
