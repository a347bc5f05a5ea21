package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nfhsdash/internal/dataprocessing"
)

// MockDatasetLoader is a mock for the DatasetLoader interface
type MockDatasetLoader struct {
	mock.Mock
}

func (m *MockDatasetLoader) Load(ctx context.Context) (*dataprocessing.Table, error) {
	args := m.Called(ctx)
	table, _ := args.Get(0).(*dataprocessing.Table)
	return table, args.Error(1)
}

func (m *MockDatasetLoader) Stats() dataprocessing.LoadStats {
	args := m.Called()
	return args.Get(0).(dataprocessing.LoadStats)
}

func (m *MockDatasetLoader) Loaded() bool {
	return m.Called().Bool(0)
}

func (m *MockDatasetLoader) Source() string {
	return m.Called().String(0)
}
