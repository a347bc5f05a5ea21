// Package services implements the business logic layer of the NFHS
// dashboard. It sits between the HTTP handlers or CLI and the survey
// aggregations in dataprocessing.
//
// # Services
//
//   - SurveyService: answers round, indicator, summary, top-N, distribution,
//     trend, comparison and dashboard queries, and exports rounds as CSV or XLSX
//   - HealthService: health, readiness and liveness checks
//
// # Pattern
//
// Services receive their collaborators and a *slog.Logger through the
// constructor and take a context.Context on every query:
//
//	loader := dataprocessing.NewLoader(path, sheet, logger)
//	survey := services.NewSurveyService(loader, cfg.Dataset, metrics, logger)
//	if err := survey.Preload(ctx); err != nil {
//	    return err
//	}
//	summary, err := survey.Summary(ctx, "5", "Sex ratio")
//
// # Error Handling
//
// Errors from dataprocessing are wrapped with %w so handlers can match them
// with errors.Is: ErrEmptyIndicator, ErrUnknownIndicator, ErrNotNumeric,
// ErrInvalidBins, ErrSourceUnavailable and ErrSchema.
//
// # Testing
//
// Services are tested by mocking the dataset loader:
//
//	loader := &MockDatasetLoader{}
//	loader.On("Load", mock.Anything).Return(table, nil)
//	service := NewSurveyService(loader, cfg, nil, logger)
package services
