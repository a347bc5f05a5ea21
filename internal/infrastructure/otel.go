package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "nfhs-dashboard"
	ServiceVersion = "1.0.0"
	MeterName      = "nfhsdash"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
	// TraceWriter receives stdout spans; nil means os.Stdout.
	TraceWriter io.Writer
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Registry       *promclient.Registry
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
	}
}

// InitializeOTel initializes tracing and metrics and installs them as the
// global providers.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	providers := &OTelProviders{Logger: logger}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// initializeTracing sets up OpenTelemetry tracing. The "none" exporter still
// installs a sampling provider so spans carry ids for log correlation.
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}

	switch cfg.TraceExporter {
	case "stdout":
		w := cfg.TraceWriter
		if w == nil {
			w = os.Stdout
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case "none", "":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

// initializeMetrics sets up OpenTelemetry metrics on a private Prometheus
// registry together with the Go runtime and process collectors.
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		registry := promclient.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.Registry = registry
		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetMeterProvider(mp)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))
	return nil
}

// Shutdown flushes and stops the OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("opentelemetry shutdown: %w", err)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// SurveyMetrics holds the dashboard's application metrics
type SurveyMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Dataset metrics
	DatasetLoadDuration metric.Float64Histogram
	DatasetRows         metric.Int64Gauge
	DatasetSentinelRows metric.Int64Counter
	DatasetLoadErrors   metric.Int64Counter

	// Aggregation metrics
	AggregationsTotal   metric.Int64Counter
	AggregationDuration metric.Float64Histogram
	EmptySelections     metric.Int64Counter

	// Output metrics
	ChartsRendered metric.Int64Counter
	ExportsTotal   metric.Int64Counter

	// System metrics
	SystemErrors metric.Int64Counter
}

// CreateSurveyMetrics creates the application metrics on meter. A nil meter
// uses the global meter provider.
func CreateSurveyMetrics(meter metric.Meter) (*SurveyMetrics, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}

	m := &SurveyMetrics{}
	var err error
	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = meter.Int64Counter(name, metric.WithDescription(desc))
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		if err != nil {
			return nil
		}
		var h metric.Float64Histogram
		h, err = meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		return h
	}

	m.HTTPRequestsTotal = counter("http_requests_total", "Total number of HTTP requests")
	m.HTTPRequestDuration = seconds("http_request_duration_seconds", "HTTP request duration in seconds")
	m.DatasetLoadDuration = seconds("dataset_load_duration_seconds", "Time spent reading and typing the survey extract")
	m.DatasetSentinelRows = counter("dataset_sentinel_rows_dropped_total", "Embedded header rows dropped while loading")
	m.DatasetLoadErrors = counter("dataset_load_errors_total", "Failed survey extract loads")
	m.AggregationsTotal = counter("survey_aggregations_total", "Aggregations computed, by operation and outcome")
	m.AggregationDuration = seconds("survey_aggregation_duration_seconds", "Aggregation duration in seconds")
	m.EmptySelections = counter("survey_empty_selections_total", "Selections with no usable indicator values")
	m.ChartsRendered = counter("charts_rendered_total", "Charts rendered, by kind and format")
	m.ExportsTotal = counter("exports_total", "Exports written, by format")
	m.SystemErrors = counter("system_errors_total", "Total number of system errors")
	if err != nil {
		return nil, err
	}

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("Number of active HTTP requests"))
	if err != nil {
		return nil, err
	}

	m.DatasetRows, err = meter.Int64Gauge("dataset_rows",
		metric.WithDescription("Rows in the loaded survey table"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordDatasetLoad records the outcome of loading the survey extract
func RecordDatasetLoad(ctx context.Context, m *SurveyMetrics, source string, rows, sentinelRows int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("dataset.source", source))
	m.DatasetLoadDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.DatasetLoadErrors.Add(ctx, 1, attrs)
		return
	}
	m.DatasetRows.Record(ctx, int64(rows), attrs)
	m.DatasetSentinelRows.Add(ctx, int64(sentinelRows), attrs)
}

// RecordAggregation records one aggregation; outcome is "success", "empty" or "error"
func RecordAggregation(ctx context.Context, m *SurveyMetrics, operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.AggregationsTotal.Add(ctx, 1, attrs)
	m.AggregationDuration.Record(ctx, duration.Seconds(), attrs)
	if outcome == "empty" {
		m.EmptySelections.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	}
}

// RecordHTTPRequest records a completed HTTP request
func RecordHTTPRequest(ctx context.Context, m *SurveyMetrics, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		semconv.HTTPRequestMethodKey.String(method),
		semconv.HTTPRoute(route),
		semconv.HTTPResponseStatusCode(status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordChart records a rendered chart
func RecordChart(ctx context.Context, m *SurveyMetrics, kind, format string) {
	if m == nil {
		return
	}
	m.ChartsRendered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("chart.kind", kind),
		attribute.String("chart.format", format),
	))
}

// RecordExport records a written export
func RecordExport(ctx context.Context, m *SurveyMetrics, format string) {
	if m == nil {
		return
	}
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("export.format", format)))
}

// StartSpan starts a span on the global tracer provider
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(MeterName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
