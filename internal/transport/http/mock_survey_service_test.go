package http

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"nfhsdash/internal/services"
	"nfhsdash/pkg/contracts/domain"
)

// MockSurveyService is a mock implementation of SurveyServiceInterface
type MockSurveyService struct {
	mock.Mock
}

func (m *MockSurveyService) Dataset(ctx context.Context) (domain.DatasetInfo, error) {
	args := m.Called()
	return args.Get(0).(domain.DatasetInfo), args.Error(1)
}

func (m *MockSurveyService) Rounds(ctx context.Context) ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSurveyService) RoundView(ctx context.Context, round string) (domain.RoundView, error) {
	args := m.Called(round)
	return args.Get(0).(domain.RoundView), args.Error(1)
}

func (m *MockSurveyService) Indicators(ctx context.Context, round string) ([]string, error) {
	args := m.Called(round)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSurveyService) States(ctx context.Context, round string) ([]string, error) {
	args := m.Called(round)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSurveyService) Summary(ctx context.Context, round, indicator string) (domain.IndicatorSummary, error) {
	args := m.Called(round, indicator)
	return args.Get(0).(domain.IndicatorSummary), args.Error(1)
}

func (m *MockSurveyService) Top(ctx context.Context, round, indicator string, n int) ([]domain.StateValue, error) {
	args := m.Called(round, indicator, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StateValue), args.Error(1)
}

func (m *MockSurveyService) Distribution(ctx context.Context, round, indicator string, bins int) (domain.Histogram, error) {
	args := m.Called(round, indicator, bins)
	return args.Get(0).(domain.Histogram), args.Error(1)
}

func (m *MockSurveyService) Trend(ctx context.Context, indicator string) ([]domain.RoundAverage, error) {
	args := m.Called(indicator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoundAverage), args.Error(1)
}

func (m *MockSurveyService) Compare(ctx context.Context, round, indicator string, states []string) ([]domain.StateValue, error) {
	args := m.Called(round, indicator, states)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StateValue), args.Error(1)
}

func (m *MockSurveyService) Dashboard(ctx context.Context, q services.DashboardQuery) (domain.Dashboard, error) {
	args := m.Called(q)
	return args.Get(0).(domain.Dashboard), args.Error(1)
}

func (m *MockSurveyService) Export(ctx context.Context, w io.Writer, format, round string, indicators []string) error {
	args := m.Called(format, round, indicators)
	if body, ok := args.Get(1).(string); ok && args.Error(0) == nil {
		_, _ = io.WriteString(w, body)
	}
	return args.Error(0)
}
