// Package config provides centralized configuration management for the
// dashboard. It loads configuration from multiple sources, validates it and
// provides a type-safe API for the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file (NFHS_CONFIG_FILE, config.yaml or configs/config.yaml
//     in the working directory, then config.yaml next to the executable)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern NFHS_<SECTION>_<FIELD>:
//
//	NFHS_SERVER_PORT=8080
//	NFHS_DATASET_SOURCE_PATH="All India National Family Health Survey.xlsx"
//	NFHS_DATASET_SHEET=Sheet1
//	NFHS_DATASET_INCLUDE_ROUND_INDICATOR=false
//	NFHS_LOGGING_LEVEL=debug
//
// # Path Management
//
// Paths resolves the data, exports and logs directories relative to the
// executable and locates the survey extract:
//
//	paths, _ := config.GetPaths()
//	source := paths.ResolveSource(cfg.Dataset.SourcePath)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
