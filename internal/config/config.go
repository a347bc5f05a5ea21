package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. NFHS_SERVER_PORT.
const EnvPrefix = "NFHS"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Dataset  DatasetConfig  `yaml:"dataset" envconfig:"DATASET"`
	Charts   ChartsConfig   `yaml:"charts" envconfig:"CHARTS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DatasetConfig locates the survey extract and sets the dashboard defaults.
type DatasetConfig struct {
	SourcePath            string `yaml:"source_path" envconfig:"SOURCE_PATH"`
	Sheet                 string `yaml:"sheet" envconfig:"SHEET"`
	IncludeRoundIndicator bool   `yaml:"include_round_indicator" envconfig:"INCLUDE_ROUND_INDICATOR"`
	TopN                  int    `yaml:"top_n" envconfig:"TOP_N"`
	HistogramBins         int    `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS"`
}

// ChartsConfig sizes rendered charts in pixels.
type ChartsConfig struct {
	Width  int `yaml:"width" envconfig:"WIDTH"`
	Height int `yaml:"height" envconfig:"HEIGHT"`
}

// Load builds the configuration from defaults, then the config file if one
// exists, then environment variables. Later sources win.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable keep their current value.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if strings.TrimSpace(c.Dataset.SourcePath) == "" {
		return fmt.Errorf("dataset source path must be set")
	}

	if c.Dataset.TopN < 1 || c.Dataset.TopN > MaxTopN {
		return fmt.Errorf("dataset top_n must be between 1 and %d, got %d", MaxTopN, c.Dataset.TopN)
	}

	if c.Dataset.HistogramBins < 1 || c.Dataset.HistogramBins > MaxHistogramBins {
		return fmt.Errorf("dataset histogram_bins must be between 1 and %d, got %d", MaxHistogramBins, c.Dataset.HistogramBins)
	}

	if c.Charts.Width < MinChartSize || c.Charts.Height < MinChartSize {
		return fmt.Errorf("chart size must be at least %dx%d", MinChartSize, MinChartSize)
	}

	// Logs are always structured JSON.
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/dashboard.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}
	// GetPaths returns nil paths on error; the executable directory is then skipped.
	paths, _ := GetPaths()
	return findConfigFile(paths)
}

// findConfigFile searches the working directory and its parents, then the
// executable directory where the build copies config.yaml.
func findConfigFile(paths *Paths) string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
		"../../configs/config.yaml",
	}
	if paths != nil {
		locations = append(locations, paths.GetRelativePath("config.yaml"))
	}

	for _, location := range locations {
		if isFile(location) {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "console",
			FilePath:    "logs/dashboard.log",
			Development: false,
		},
		Dataset: DatasetConfig{
			SourcePath:    DefaultSourceFile,
			TopN:          DefaultTopN,
			HistogramBins: DefaultHistogramBins,
		},
		Charts: ChartsConfig{
			Width:  1024,
			Height: 512,
		},
	}
}
