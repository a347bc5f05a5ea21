package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"nfhsdash/pkg/contracts"
)

// ReadinessChecker reports whether the survey dataset is loaded
type ReadinessChecker interface {
	Ready() bool
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	dataset   ReadinessChecker
	source    string
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. source names the survey
// extract in readiness messages.
func NewHealthService(version, source string, dataset ReadinessChecker, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("source", source))

	return &HealthService{
		version:   version,
		dataset:   dataset,
		source:    source,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status. The dashboard is ready once the
// survey dataset is loaded.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["dataset"] = hs.checkDatasetHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready", slog.String("source", hs.source))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      hs.version,
		"build":        contracts.GetFullVersionString(),
		"prerelease":   contracts.IsPrerelease(),
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"api_version":  info.APIVersion,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil || !hs.dataset.Ready() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("survey dataset not loaded: %s", hs.source),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: "survey dataset loaded",
		Uptime:  time.Since(hs.startTime).String(),
	}
}
