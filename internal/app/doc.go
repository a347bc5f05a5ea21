// Package app wires the NFHS dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from the YAML file and NFHS_* environment variables
//  2. Initialize logging and OpenTelemetry (tracing plus Prometheus metrics)
//  3. Load the survey extract once; a missing source or malformed sheet is fatal
//  4. Build the survey, health and chart services
//  5. Set up middleware and mount /api/survey, /api/charts and the health routes
//  6. Configure the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return app.Run()
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests and
// flushes telemetry. Nothing in this package calls os.Exit; the caller decides
// how to report a failed start.
package app
