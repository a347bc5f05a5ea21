package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func initTestOTel(t *testing.T, cfg *OTelConfig) *OTelProviders {
	t.Helper()
	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(ctx)
	})
	return providers
}

// TestOTelInitialization tests OpenTelemetry initialization
func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Registry)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

// TestOTelConfiguration tests different configuration options
func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		config  *OTelConfig
		wantErr bool
	}{
		{
			name: "stdout tracing",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "stdout",
				MetricExporter: "prometheus",
				EnableMetrics:  true,
				EnableTracing:  true,
				SampleRatio:    1.0,
				TraceWriter:    io.Discard,
			},
		},
		{
			name: "disabled tracing",
			config: &OTelConfig{
				ServiceName:    "test-service",
				MetricExporter: "prometheus",
				EnableMetrics:  true,
			},
		},
		{
			name: "disabled metrics",
			config: &OTelConfig{
				ServiceName:   "test-service",
				TraceExporter: "none",
				EnableTracing: true,
				SampleRatio:   1.0,
			},
		},
		{
			name: "unsupported trace exporter",
			config: &OTelConfig{
				TraceExporter: "jaeger",
				EnableTracing: true,
			},
			wantErr: true,
		},
		{
			name: "unsupported metric exporter",
			config: &OTelConfig{
				MetricExporter: "statsd",
				EnableMetrics:  true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, quietLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.config.EnableTracing, providers.TracerProvider != nil)
			assert.Equal(t, tt.config.EnableMetrics, providers.MeterProvider != nil)
			assert.NoError(t, providers.Shutdown(context.Background()))
		})
	}
}

// TestTraceCorrelation tests trace ID correlation
func TestTraceCorrelation(t *testing.T) {
	initTestOTel(t, DefaultOTelConfig())

	assert.Empty(t, TraceIDFromContext(context.Background()))

	ctx, span := StartSpan(context.Background(), "survey.summarize", attribute.String("survey.round", "5"))
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
	assert.True(t, span.IsRecording())

	RecordError(ctx, errors.New("boom"))
}

// TestSurveyMetrics tests metric creation and recording helpers
func TestSurveyMetrics(t *testing.T) {
	providers := initTestOTel(t, DefaultOTelConfig())

	metrics, err := CreateSurveyMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	ctx := context.Background()
	RecordDatasetLoad(ctx, metrics, "survey.xlsx", 120, 1, 50*time.Millisecond, nil)
	RecordDatasetLoad(ctx, metrics, "missing.xlsx", 0, 0, time.Millisecond, errors.New("not found"))
	RecordAggregation(ctx, metrics, "summarize", "success", time.Millisecond)
	RecordAggregation(ctx, metrics, "summarize", "empty", time.Millisecond)
	RecordHTTPRequest(ctx, metrics, http.MethodGet, "/api/survey/rounds", 200, 2*time.Millisecond)
	RecordChart(ctx, metrics, "top", "svg")
	RecordExport(ctx, metrics, "csv")

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	out := body.String()

	assert.Contains(t, out, "dataset_rows")
	assert.Contains(t, out, "dataset_load_errors_total")
	assert.Contains(t, out, "survey_aggregations_total")
	assert.Contains(t, out, "survey_empty_selections_total")
	assert.Contains(t, out, "charts_rendered_total")
	assert.Contains(t, out, "go_goroutines")
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordDatasetLoad(ctx, nil, "x", 1, 0, time.Second, nil)
		RecordAggregation(ctx, nil, "topn", "success", time.Second)
		RecordHTTPRequest(ctx, nil, "GET", "/", 200, time.Second)
		RecordChart(ctx, nil, "top", "png")
		RecordExport(ctx, nil, "xlsx")
	})
}

func TestCreateSurveyMetrics_GlobalMeter(t *testing.T) {
	metrics, err := CreateSurveyMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, metrics.AggregationsTotal)
}
