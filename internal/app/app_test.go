package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nfhsdash/internal/config"
	"nfhsdash/internal/dataprocessing"
	apierrors "nfhsdash/internal/errors"
	"nfhsdash/internal/shared/testutil"
)

func testConfig(source string) *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Security.RateLimit.Enabled = false
	cfg.Dataset.SourcePath = source
	return cfg
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	source := testutil.WriteSurveyWorkbook(t, testutil.SampleSurveyRows())
	logger, _ := testutil.NewTestLogger(t)

	app, err := New(testConfig(source), config.NewPaths(t.TempDir()), logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func get(t *testing.T, app *Application, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestNew(t *testing.T) {
	app := newTestApplication(t)

	require.NotNil(t, app.Services)
	assert.True(t, app.Services.Survey.Ready())
	assert.NotNil(t, app.Services.Health)
	assert.NotNil(t, app.Services.Charts)
	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Metrics)
	assert.DirExists(t, app.Paths.ExportsDir)
	assert.DirExists(t, app.Paths.LogsDir)
}

func TestNew_SourceFailuresAreFatal(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	t.Run("missing source", func(t *testing.T) {
		cfg := testConfig(filepath.Join(t.TempDir(), "absent.xlsx"))
		_, err := New(cfg, config.NewPaths(t.TempDir()), logger)
		require.Error(t, err)
		assert.ErrorIs(t, err, dataprocessing.ErrSourceUnavailable)
	})

	t.Run("missing columns", func(t *testing.T) {
		source := testutil.WriteSurveyWorkbook(t, [][]any{{"STATE", "value"}, {"Goa", 1}})
		_, err := New(testConfig(source), config.NewPaths(t.TempDir()), logger)
		require.Error(t, err)
		assert.ErrorIs(t, err, dataprocessing.ErrSchema)
	})
}

func TestApplication_HealthRoutes(t *testing.T) {
	app := newTestApplication(t)

	tests := []struct {
		path   string
		status string
	}{
		{"/api/health", "ok"},
		{"/api/health/ready", "ready"},
		{"/api/health/live", "alive"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, app, tt.path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.status, decode(t, w)["status"])
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}

	w := get(t, app, "/api/version")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v1", decode(t, w)["api_version"])
}

func TestApplication_SurveyRoutes(t *testing.T) {
	app := newTestApplication(t)

	t.Run("rounds", func(t *testing.T) {
		w := get(t, app, "/api/survey/rounds")
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, []interface{}{"3", "4", "5"}, body["data"])
	})

	t.Run("summary", func(t *testing.T) {
		w := get(t, app, "/api/survey/rounds/5/indicators/Sex%20ratio/summary")
		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "Kerala", data["state_at_max"])
	})

	t.Run("no data", func(t *testing.T) {
		w := get(t, app, "/api/survey/rounds/9/indicators/Sex%20ratio/summary")
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, apierrors.TypeEmptyIndicator, decode(t, w)["type"])
	})

	t.Run("export", func(t *testing.T) {
		w := get(t, app, "/api/survey/rounds/5/export?format=csv&indicator=Sex%20ratio")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "nfhs-round-5.csv")
		assert.Contains(t, w.Body.String(), "Goa,5,1027")
	})
}

func TestApplication_ChartRoutes(t *testing.T) {
	app := newTestApplication(t)

	w := get(t, app, "/api/charts/rounds/5/indicators/Sex%20ratio/top?n=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(w.Body.String(), "<svg"))
}

func TestApplication_NotFound(t *testing.T) {
	app := newTestApplication(t)

	for _, path := range []string{"/nowhere", "/api/nowhere"} {
		w := get(t, app, path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, apierrors.TypeNotFound, decode(t, w)["type"], path)
	}
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	app := newTestApplication(t)

	get(t, app, "/api/survey/rounds/5/indicators/Sex%20ratio/top")

	w := get(t, app, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "survey_aggregations_total")
	assert.Contains(t, body, "dataset_load_duration_seconds")
}

func TestApplication_SecurityAndCORSHeaders(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:0")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:0", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestApplication_RateLimit(t *testing.T) {
	source := testutil.WriteSurveyWorkbook(t, testutil.SampleSurveyRows())
	logger, _ := testutil.NewTestLogger(t)
	cfg := testConfig(source)
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}

	app, err := New(cfg, config.NewPaths(t.TempDir()), logger)
	require.NoError(t, err)
	defer app.OTelProviders.Shutdown(context.Background())

	assert.Equal(t, http.StatusOK, get(t, app, "/api/health").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, app, "/api/health").Code)
	assert.Equal(t, http.StatusOK, get(t, app, "/metrics").Code, "metrics are not rate limited")
}

func TestApplication_getCORSConfig(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		t.Setenv("NFHS_ENV", "")
		app := &Application{
			Config: config.Default(),
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		}
		app.Config.Security.AllowedOrigins = []string{"https://dash.example.org"}

		cfg := app.getCORSConfig()
		assert.Contains(t, cfg.AllowedOrigins, "http://localhost:8080")
		assert.Contains(t, cfg.AllowedOrigins, "https://dash.example.org")
		assert.NotContains(t, cfg.AllowedOrigins, "http://localhost:3000")
		assert.Equal(t, []string{"GET", "HEAD", "OPTIONS"}, cfg.AllowedMethods)
	})

	t.Run("development", func(t *testing.T) {
		t.Setenv("NFHS_ENV", "development")
		app := &Application{
			Config: config.Default(),
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		}
		app.Config.Security.EnableCORS = false
		app.Config.Security.AllowedOrigins = []string{"https://dash.example.org"}

		cfg := app.getCORSConfig()
		assert.Contains(t, cfg.AllowedOrigins, "http://localhost:3000")
		assert.NotContains(t, cfg.AllowedOrigins, "https://dash.example.org")
	})
}

func TestApplication_createServer(t *testing.T) {
	app := newTestApplication(t)

	assert.Equal(t, ":0", app.Server.Addr)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, app.Config.Server.WriteTimeout, app.Server.WriteTimeout)
	assert.Equal(t, app.Config.Server.IdleTimeout, app.Server.IdleTimeout)
	assert.Equal(t, app.Config.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApplication(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, ctx.Err(), "listener should not fail on an ephemeral port")

	require.NoError(t, app.Stop(ctx))
}
