package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"nfhsdash/internal/charts"
	"nfhsdash/internal/config"
	"nfhsdash/internal/dataprocessing"
	apierrors "nfhsdash/internal/errors"
	"nfhsdash/internal/infrastructure"
	customMiddleware "nfhsdash/internal/middleware"
	"nfhsdash/internal/services"
	handlers "nfhsdash/internal/transport/http"
	"nfhsdash/internal/validation"
	"nfhsdash/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.SurveyMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Survey *services.SurveyService
	Health *services.HealthService
	Charts *charts.Renderer
}

// NewApplication loads configuration and builds the application around the
// directories next to the executable.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}

	return New(cfg, paths, logger)
}

// New wires an application from explicit configuration. The survey dataset
// is loaded before New returns; a missing or malformed source is fatal.
func New(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("build", contracts.GetFullVersionString()))

	logger.Info("Ensuring required directories exist")
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(paths.ExportsDir); err != nil {
		return nil, err
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateSurveyMetrics(otelProviders.Meter)
	if err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create survey metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(context.Background()); err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the survey, health and chart services and loads
// the dataset once.
func (a *Application) initializeServices(ctx context.Context) error {
	source := a.Paths.ResolveSource(a.Config.Dataset.SourcePath)
	loader := dataprocessing.NewLoader(source, a.Config.Dataset.Sheet, a.Logger)

	survey := services.NewSurveyService(loader, a.Config.Dataset, a.Metrics, a.Logger)
	if err := survey.Preload(ctx); err != nil {
		return err
	}

	a.Services = &ServiceContainer{
		Survey: survey,
		Health: services.NewHealthService(contracts.Version, source, survey, a.Logger),
		Charts: charts.NewRenderer(a.Config.Charts, a.Metrics, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS → RateLimit → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			infrastructure.WithError(a.Logger, err).Error("Failed to create OpenTelemetry middleware")
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.getCORSConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Outside the group so scrapes skip rate limiting and request logging
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsPath, a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		surveyHandler := handlers.NewSurveyHandler(a.Services.Survey, a.Config.Dataset, a.Logger, a.ErrorHandler)
		r.Mount("/survey", surveyHandler.Routes())

		chartHandler := handlers.NewChartHandler(a.Services.Survey, a.Services.Charts, a.Config.Dataset, a.Logger, a.ErrorHandler)
		r.Mount("/charts", chartHandler.Routes())

		r.NotFound(a.ErrorHandler.NotFound)
		r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)
	})
}

// getCORSConfig returns CORS configuration based on environment
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			customMiddleware.RequestIDHeader,
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			customMiddleware.RequestIDHeader,
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	local := fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)
	cfg.AllowedOrigins = []string{local, fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port)}

	if a.isDevelopmentMode() {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}
	if a.Config.Security.EnableCORS {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	a.Logger.Info("CORS configured",
		slog.Bool("development", a.isDevelopmentMode()),
		slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// isDevelopmentMode detects if we're running in development mode
func (a *Application) isDevelopmentMode() bool {
	if a.Config.Logging.Development {
		return true
	}
	return os.Getenv(config.EnvPrefix+"_ENV") == "development"
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts serving in the background. A listener failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "Server error")
			cancel()
		}
	}()

	stats := a.Services.Survey.Stats()
	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)),
		slog.String("source", stats.Source),
		slog.Int("rows", stats.Rows))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "Error shutting down OpenTelemetry")
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the listener fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	start := time.Now()
	err := a.Stop(ctx)
	a.Logger.Info("Shutdown finished", slog.Duration("duration", time.Since(start)))
	if cerr := infrastructure.CloseLogFile(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close log file: %w", cerr)
	}
	return err
}
