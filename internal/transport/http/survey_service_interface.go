package http

import (
	"context"
	"io"

	"nfhsdash/internal/services"
	"nfhsdash/pkg/contracts/domain"
)

// SurveyServiceInterface defines the survey queries served over HTTP
type SurveyServiceInterface interface {
	Dataset(ctx context.Context) (domain.DatasetInfo, error)
	Rounds(ctx context.Context) ([]string, error)
	RoundView(ctx context.Context, round string) (domain.RoundView, error)
	Indicators(ctx context.Context, round string) ([]string, error)
	States(ctx context.Context, round string) ([]string, error)
	Summary(ctx context.Context, round, indicator string) (domain.IndicatorSummary, error)
	Top(ctx context.Context, round, indicator string, n int) ([]domain.StateValue, error)
	Distribution(ctx context.Context, round, indicator string, bins int) (domain.Histogram, error)
	Trend(ctx context.Context, indicator string) ([]domain.RoundAverage, error)
	Compare(ctx context.Context, round, indicator string, states []string) ([]domain.StateValue, error)
	Dashboard(ctx context.Context, q services.DashboardQuery) (domain.Dashboard, error)
	Export(ctx context.Context, w io.Writer, format, round string, indicators []string) error
}
