// Package api contains API contract definitions for the NFHS dashboard.
// Version v1 represents the current stable API version.
package api

// Limits shared by the HTTP API and the CLI.
const (
	MaxTopN          = 1000
	MaxBins          = 500
	MaxCompareStates = 100
)

// Survey API Requests

// RoundRequest identifies one survey round
type RoundRequest struct {
	Round string `json:"round" param:"round" validate:"label"`
}

// SelectionRequest identifies one indicator within one survey round
type SelectionRequest struct {
	Round     string `json:"round" param:"round" validate:"label"`
	Indicator string `json:"indicator" param:"indicator" validate:"label"`
}

// TopRequest asks for the n states with the highest indicator value
type TopRequest struct {
	SelectionRequest
	N int `json:"n" query:"n" validate:"min=1,max=1000"`
}

// DistributionRequest asks for an equal-width histogram
type DistributionRequest struct {
	SelectionRequest
	Bins int `json:"bins" query:"bins" validate:"min=1,max=500"`
}

// CompareRequest asks for the indicator values of selected states. An empty
// selection is valid and yields an empty comparison.
type CompareRequest struct {
	SelectionRequest
	States []string `json:"states" query:"state" validate:"max=100,dive,label"`
}

// DashboardRequest asks for every panel of the dashboard at once
type DashboardRequest struct {
	SelectionRequest
	States []string `json:"states" query:"state" validate:"max=100,dive,label"`
	N      int      `json:"n" query:"n" validate:"min=1,max=1000"`
	Bins   int      `json:"bins" query:"bins" validate:"min=1,max=500"`
}

// TrendRequest asks for per-round averages of an indicator
type TrendRequest struct {
	Indicator string `json:"indicator" param:"indicator" validate:"label"`
}

// ChartRequest selects the chart encoding
type ChartRequest struct {
	Format string `json:"format" query:"format" validate:"oneof=svg png"`
}

// ExportRequest selects the rows and encoding of a round export. No
// indicators means every numeric indicator.
type ExportRequest struct {
	Round      string   `json:"round" param:"round" validate:"label"`
	Indicators []string `json:"indicators" query:"indicator" validate:"dive,label"`
	Format     string   `json:"format" query:"format" validate:"oneof=csv xlsx"`
}
