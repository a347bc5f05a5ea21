// Package http implements the HTTP handlers of the NFHS dashboard. Handlers
// stay thin: they parse and validate the request, call a service and render
// either a JSON envelope or an RFC 7807 problem.
//
// # Routes
//
//	/api/survey   SurveyHandler: rounds, indicators, summaries, top-N,
//	              distributions, comparisons, dashboards, trends and exports
//	/api/charts   ChartHandler: the same panels as SVG or PNG
//	/api/health   HealthHandler: health, readiness, liveness and version
//
// # Responses
//
// Successful JSON responses use the api.Response envelope:
//
//	{"status":"success","data":[...],"count":3}
//
// Errors go through apierrors.ErrorHandler, which maps survey errors to
// problem types: an indicator with no data is 422, an unknown indicator 404,
// a text column 400 and an unreadable dataset 503.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → dataprocessing
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
package http
