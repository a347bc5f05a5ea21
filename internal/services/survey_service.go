package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"nfhsdash/internal/config"
	"nfhsdash/internal/dataprocessing"
	"nfhsdash/internal/exporter"
	"nfhsdash/internal/infrastructure"
	"nfhsdash/pkg/contracts/domain"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// DatasetLoader produces the survey table. Implementations cache the table
// after the first successful load.
type DatasetLoader interface {
	Load(ctx context.Context) (*dataprocessing.Table, error)
	Stats() dataprocessing.LoadStats
	Loaded() bool
	Source() string
}

// SurveyService answers dashboard queries over the loaded survey table
type SurveyService struct {
	loader  DatasetLoader
	cfg     config.DatasetConfig
	metrics *infrastructure.SurveyMetrics
	logger  *slog.Logger
}

// NewSurveyService creates a survey service. metrics may be nil.
func NewSurveyService(loader DatasetLoader, cfg config.DatasetConfig, metrics *infrastructure.SurveyMetrics, logger *slog.Logger) *SurveyService {
	logger = infrastructure.WithComponent(logger, "survey_service")

	logger.Info("SurveyService initialized",
		slog.String("source", loader.Source()),
		slog.Int("default_top_n", cfg.TopN),
		slog.Int("default_bins", cfg.HistogramBins),
		slog.Bool("include_round_indicator", cfg.IncludeRoundIndicator))

	return &SurveyService{
		loader:  loader,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Preload loads the dataset and records the load metrics. Call it once at
// startup; later queries reuse the cached table.
func (s *SurveyService) Preload(ctx context.Context) error {
	ctx, span := infrastructure.StartSpan(ctx, "survey.load",
		attribute.String("survey.source", s.loader.Source()))
	defer span.End()

	start := time.Now()
	_, err := s.loader.Load(ctx)
	stats := s.loader.Stats()
	infrastructure.RecordDatasetLoad(ctx, s.metrics, s.loader.Source(), stats.Rows, stats.SentinelRows, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("failed to load survey dataset: %w", err)
	}

	span.SetAttributes(
		attribute.Int("survey.rows", stats.Rows),
		attribute.Int("survey.sentinel_rows", stats.SentinelRows))
	return nil
}

// Ready reports whether the dataset has been loaded.
func (s *SurveyService) Ready() bool {
	return s.loader.Loaded()
}

// Stats returns the counters from the last load.
func (s *SurveyService) Stats() dataprocessing.LoadStats {
	return s.loader.Stats()
}

func (s *SurveyService) table(ctx context.Context) (*dataprocessing.Table, error) {
	t, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("survey dataset unavailable: %w", err)
	}
	return t, nil
}

func (s *SurveyService) round(ctx context.Context, round string) (*dataprocessing.View, error) {
	t, err := s.table(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.FilterByRound(t, round), nil
}

// observe runs fn inside a span and records the aggregation outcome.
func (s *SurveyService) observe(ctx context.Context, op string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := infrastructure.StartSpan(ctx, "survey."+op, attrs...)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	outcome := "success"
	switch {
	case errors.Is(err, dataprocessing.ErrEmptyIndicator):
		outcome = "empty"
		span.SetAttributes(attribute.Bool("survey.no_data", true))
	case err != nil:
		outcome = "error"
		infrastructure.RecordError(ctx, err)
		s.logger.DebugContext(ctx, "aggregation failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
	infrastructure.RecordAggregation(ctx, s.metrics, op, outcome, time.Since(start))
	return err
}

// Dataset describes the loaded extract.
func (s *SurveyService) Dataset(ctx context.Context) (domain.DatasetInfo, error) {
	t, err := s.table(ctx)
	if err != nil {
		return domain.DatasetInfo{}, err
	}
	stats := s.loader.Stats()
	return domain.DatasetInfo{
		Source:         stats.Source,
		Sheet:          stats.Sheet,
		Rows:           t.Len(),
		Columns:        t.Columns(),
		NumericColumns: stats.NumericColumns,
		TextColumns:    stats.TextColumns,
		SentinelRows:   stats.SentinelRows,
		Rounds:         dataprocessing.Rounds(t),
	}, nil
}

// Rounds lists the survey rounds in first-seen order.
func (s *SurveyService) Rounds(ctx context.Context) ([]string, error) {
	t, err := s.table(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.Rounds(t), nil
}

// RoundView describes one round. An unknown round yields an empty view.
func (s *SurveyService) RoundView(ctx context.Context, round string) (domain.RoundView, error) {
	v, err := s.round(ctx, round)
	if err != nil {
		return domain.RoundView{}, err
	}
	return domain.RoundView{
		Round:      round,
		Rows:       v.Len(),
		Indicators: dataprocessing.NumericIndicators(v, s.cfg.IncludeRoundIndicator),
		States:     dataprocessing.States(v),
	}, nil
}

// Indicators lists the numeric indicators selectable in a round.
func (s *SurveyService) Indicators(ctx context.Context, round string) ([]string, error) {
	v, err := s.round(ctx, round)
	if err != nil {
		return nil, err
	}
	return dataprocessing.NumericIndicators(v, s.cfg.IncludeRoundIndicator), nil
}

// States lists the distinct states of a round.
func (s *SurveyService) States(ctx context.Context, round string) ([]string, error) {
	v, err := s.round(ctx, round)
	if err != nil {
		return nil, err
	}
	return dataprocessing.States(v), nil
}

// Summary returns the headline metrics of an indicator in a round.
func (s *SurveyService) Summary(ctx context.Context, round, indicator string) (domain.IndicatorSummary, error) {
	var summary domain.IndicatorSummary
	err := s.observe(ctx, "summary", func(ctx context.Context) error {
		v, err := s.round(ctx, round)
		if err != nil {
			return err
		}
		summary, err = dataprocessing.Summarize(v, indicator)
		return err
	}, selectionAttrs(round, indicator)...)
	return summary, err
}

// Top returns the n states with the highest values. n <= 0 uses the
// configured default.
func (s *SurveyService) Top(ctx context.Context, round, indicator string, n int) ([]domain.StateValue, error) {
	if n <= 0 {
		n = s.cfg.TopN
	}
	var top []domain.StateValue
	err := s.observe(ctx, "top", func(ctx context.Context) error {
		v, err := s.round(ctx, round)
		if err != nil {
			return err
		}
		top, err = dataprocessing.TopN(v, indicator, n)
		return err
	}, append(selectionAttrs(round, indicator), attribute.Int("survey.n", n))...)
	return top, err
}

// Distribution returns an equal-width histogram. bins <= 0 uses the
// configured default.
func (s *SurveyService) Distribution(ctx context.Context, round, indicator string, bins int) (domain.Histogram, error) {
	if bins <= 0 {
		bins = s.cfg.HistogramBins
	}
	var hist domain.Histogram
	err := s.observe(ctx, "distribution", func(ctx context.Context) error {
		v, err := s.round(ctx, round)
		if err != nil {
			return err
		}
		hist, err = dataprocessing.Distribution(v, indicator, bins)
		return err
	}, append(selectionAttrs(round, indicator), attribute.Int("survey.bins", bins))...)
	return hist, err
}

// Trend returns the average of an indicator per round over the whole table.
func (s *SurveyService) Trend(ctx context.Context, indicator string) ([]domain.RoundAverage, error) {
	var trend []domain.RoundAverage
	err := s.observe(ctx, "trend", func(ctx context.Context) error {
		t, err := s.table(ctx)
		if err != nil {
			return err
		}
		trend, err = dataprocessing.RoundAggregate(t, indicator)
		return err
	}, attribute.String("survey.indicator", indicator))
	return trend, err
}

// Compare returns the values of the selected states. No states yields an
// empty comparison.
func (s *SurveyService) Compare(ctx context.Context, round, indicator string, states []string) ([]domain.StateValue, error) {
	var values []domain.StateValue
	err := s.observe(ctx, "compare", func(ctx context.Context) error {
		v, err := s.round(ctx, round)
		if err != nil {
			return err
		}
		values, err = dataprocessing.Values(dataprocessing.Compare(v, states), indicator)
		return err
	}, append(selectionAttrs(round, indicator), attribute.Int("survey.states", len(states)))...)
	return values, err
}

// DashboardQuery selects every panel of the dashboard page
type DashboardQuery struct {
	Round     string
	Indicator string
	States    []string
	N         int
	Bins      int
}

// Dashboard computes every panel concurrently. An indicator without data in
// the round yields NoData with empty panels instead of an error; the trend
// panel still covers the other rounds.
func (s *SurveyService) Dashboard(ctx context.Context, q DashboardQuery) (domain.Dashboard, error) {
	dash := domain.Dashboard{
		Round:      q.Round,
		Indicator:  q.Indicator,
		Top:        []domain.StateValue{},
		Trend:      []domain.RoundAverage{},
		Comparison: []domain.StateValue{},
	}

	summary, err := s.Summary(ctx, q.Round, q.Indicator)
	switch {
	case errors.Is(err, dataprocessing.ErrEmptyIndicator):
		dash.NoData = true
		trend, err := s.Trend(ctx, q.Indicator)
		if err != nil && !errors.Is(err, dataprocessing.ErrEmptyIndicator) {
			return dash, err
		}
		if trend != nil {
			dash.Trend = trend
		}
		s.logger.InfoContext(ctx, "dashboard has no data",
			slog.String("round", q.Round),
			slog.String("indicator", q.Indicator))
		return dash, nil
	case err != nil:
		return dash, err
	}
	dash.Summary = &summary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		top, err := s.Top(gctx, q.Round, q.Indicator, q.N)
		dash.Top = top
		return err
	})
	g.Go(func() error {
		hist, err := s.Distribution(gctx, q.Round, q.Indicator, q.Bins)
		if err == nil {
			dash.Distribution = &hist
		}
		return err
	})
	g.Go(func() error {
		trend, err := s.Trend(gctx, q.Indicator)
		dash.Trend = trend
		return err
	})
	g.Go(func() error {
		values, err := s.Compare(gctx, q.Round, q.Indicator, q.States)
		dash.Comparison = values
		return err
	})
	if err := g.Wait(); err != nil {
		return dash, err
	}
	return dash, nil
}

// ExportTables builds the round table and, when withTrend is set, one trend
// table per selected numeric indicator. No indicators means every numeric
// indicator of the round.
func (s *SurveyService) ExportTables(ctx context.Context, round string, indicators []string, withTrend bool) ([]*exporter.Table, error) {
	v, err := s.round(ctx, round)
	if err != nil {
		return nil, err
	}

	roundTable, err := exporter.RoundTable(v, indicators)
	if err != nil {
		return nil, err
	}
	tables := []*exporter.Table{roundTable}
	if !withTrend || len(indicators) == 0 {
		return tables, nil
	}

	trends := make([]*exporter.Table, len(indicators))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range indicators {
		g.Go(func() error {
			trend, err := s.Trend(gctx, name)
			switch {
			case errors.Is(err, dataprocessing.ErrNotNumeric), errors.Is(err, dataprocessing.ErrEmptyIndicator):
				return nil
			case err != nil:
				return err
			}
			trends[i] = exporter.TrendTable(name, trend)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, t := range trends {
		if t != nil {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

// Export writes a round in the given format. CSV carries the round table
// only; XLSX adds a trend sheet per selected indicator.
func (s *SurveyService) Export(ctx context.Context, w io.Writer, format, round string, indicators []string) error {
	ctx, span := infrastructure.StartSpan(ctx, "survey.export",
		attribute.String("survey.round", round),
		attribute.String("export.format", format))
	defer span.End()

	var err error
	switch format {
	case FormatCSV:
		var tables []*exporter.Table
		if tables, err = s.ExportTables(ctx, round, indicators, false); err == nil {
			err = exporter.EncodeCSV(w, tables[0], true)
		}
	case FormatXLSX:
		var tables []*exporter.Table
		if tables, err = s.ExportTables(ctx, round, indicators, true); err == nil {
			err = exporter.EncodeXLSX(w, tables...)
		}
	default:
		err = fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, format)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}

	infrastructure.RecordExport(ctx, s.metrics, format)
	s.logger.InfoContext(ctx, "export written",
		slog.String("round", round),
		slog.String("format", format),
		slog.Int("indicators", len(indicators)))
	return nil
}

func selectionAttrs(round, indicator string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("survey.round", round),
		attribute.String("survey.indicator", indicator),
	}
}
