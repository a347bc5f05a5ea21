package config

import "time"

// Application constants
const (
	// Application Info
	AppName = "NFHS Dashboard"

	// Dataset
	DefaultSourceFile    = "All India National Family Health Survey.xlsx"
	DefaultTopN          = 10
	DefaultHistogramBins = 20

	// Request limits
	MaxTopN          = 1000
	MaxHistogramBins = 500
	MaxCompareStates = 100
	MinChartSize     = 64

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Per-request deadline under /api
	DefaultRequestTimeout = 30 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultExportsDir = "data/exports"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// MetricsPath serves the Prometheus exposition
const MetricsPath = "/metrics"
