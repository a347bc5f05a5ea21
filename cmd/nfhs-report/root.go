package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nfhsdash/internal/config"
	"nfhsdash/internal/dataprocessing"
	"nfhsdash/internal/infrastructure"
	"nfhsdash/internal/services"
	"nfhsdash/pkg/contracts"
)

// options holds the global flags and the state built from them.
type options struct {
	configFile string
	source     string
	sheet      string
	verbose    bool
	noColor    bool

	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "nfhs-report",
		Short: "Query the National Family Health Survey extract from the command line",
		Long: `nfhs-report loads the NFHS state-level extract and prints the same
figures the dashboard shows: rounds, indicators, headline summaries, top
states and per-round trends. Round views can be exported to CSV or XLSX.`,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if o.noColor {
				color.NoColor = true
			}
			return o.setup(cmd)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configFile, "config", "", "config file (defaults to config.yaml lookup)")
	flags.StringVar(&o.source, "source", "", "survey workbook or CSV (overrides dataset.source_path)")
	flags.StringVar(&o.sheet, "sheet", "", "worksheet name (defaults to the first sheet)")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log loader and export details to stderr")
	flags.BoolVar(&o.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newRoundsCmd(o),
		newIndicatorsCmd(o),
		newSummaryCmd(o),
		newTopCmd(o),
		newTrendCmd(o),
		newExportCmd(o),
	)
	return cmd
}

// setup loads configuration and builds a logger writing to stderr. Logging
// stays at warn unless --verbose is set.
func (o *options) setup(cmd *cobra.Command) error {
	var err error
	if o.configFile != "" {
		o.cfg, err = config.LoadFrom(o.configFile)
	} else {
		o.cfg, err = config.Load()
	}
	if err != nil {
		return exitError(ExitInvalidArgs, "nfhs-report: %v", err)
	}

	logging := o.cfg.Logging
	logging.Level = "warn"
	if o.verbose {
		logging.Level = "debug"
	}
	o.logger = infrastructure.NewLogger(logging, cmd.ErrOrStderr())
	// One id per invocation ties the loader and export records together.
	cmd.SetContext(infrastructure.EnsureRequestID(cmd.Context()))

	if o.paths, err = config.GetPaths(); err != nil {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return exitError(ExitInvalidArgs, "nfhs-report: %v", err)
		}
		o.paths = config.NewPaths(wd)
	}
	return nil
}

// service loads the dataset. Source and sheet flags win over configuration.
func (o *options) service(ctx context.Context) (*services.SurveyService, error) {
	dataset := o.cfg.Dataset
	source := o.source
	if source == "" {
		source = o.paths.ResolveSource(dataset.SourcePath)
	}
	if o.sheet != "" {
		dataset.Sheet = o.sheet
	}

	loader := dataprocessing.NewLoader(source, dataset.Sheet, o.logger)
	svc := services.NewSurveyService(loader, dataset, nil, o.logger)
	if err := svc.Preload(ctx); err != nil {
		return nil, classify(err)
	}
	return svc, nil
}

// requireRound rejects a round that selects no rows. It matches rounds the
// same way the API does, so "4.0" selects round 4.
func requireRound(ctx context.Context, svc *services.SurveyService, round string) error {
	view, err := svc.RoundView(ctx, round)
	if err != nil {
		return classify(err)
	}
	if view.Rows > 0 {
		return nil
	}
	rounds, err := svc.Rounds(ctx)
	if err != nil {
		return classify(err)
	}
	return exitError(ExitNoData, "nfhs-report: no rows for round %q (rounds: %v)", round, rounds)
}

func heading(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), color.New(color.Bold).Sprintf(format, args...))
}
