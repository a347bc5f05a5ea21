package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nfhsdash/internal/exporter"
	"nfhsdash/internal/services"
	"nfhsdash/internal/validation"
)

func newExportCmd(o *options) *cobra.Command {
	var round, out string
	var indicators []string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a round view to CSV or XLSX",
		Long: `export writes STATE, nfhs and the selected indicators for every row of a
round. Without --indicator every numeric indicator is included. XLSX output
adds one trend sheet per selected indicator.

A relative --out is taken from the working directory. Without --out the file
lands in the exports directory as nfhs-round-<round>.csv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = fmt.Sprintf("nfhs-round-%s.%s", round, services.FormatCSV)
			} else {
				out = absPath(out)
			}
			format, err := outputFormat(out)
			if err != nil {
				return err
			}

			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireRound(cmd.Context(), svc, round); err != nil {
				return err
			}
			tables, err := svc.ExportTables(cmd.Context(), round, indicators, format == services.FormatXLSX)
			if err != nil {
				return classify(err)
			}
			return o.write(cmd, out, tables...)
		},
	}
	cmd.Flags().StringVar(&round, "round", "", "survey round label")
	cmd.Flags().StringArrayVar(&indicators, "indicator", nil, "indicator to include (repeatable)")
	cmd.Flags().StringVar(&out, "out", "", "output file ending in .csv or .xlsx")
	_ = cmd.MarkFlagRequired("round")
	return cmd
}

// outputFormat picks the export format from the file extension.
func outputFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return services.FormatCSV, nil
	case ".xlsx":
		return services.FormatXLSX, nil
	default:
		return "", exitError(ExitInvalidArgs, "nfhs-report: unsupported output %q: use .csv or .xlsx", path)
	}
}

// checkOutput validates an optional --out before any data is loaded.
func checkOutput(out string) error {
	if out == "" {
		return nil
	}
	_, err := outputFormat(out)
	return err
}

// absPath anchors a user-supplied path at the working directory. Relative
// paths handed to the exporter writers would otherwise land in the exports
// directory.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// write saves tables to out. CSV holds the first table only.
func (o *options) write(cmd *cobra.Command, out string, tables ...*exporter.Table) error {
	format, err := outputFormat(out)
	if err != nil {
		return err
	}
	if filepath.IsAbs(out) {
		if err := validation.NewFileValidator(o.logger).ValidateOutputDirectory(filepath.Dir(out)); err != nil {
			return exitError(ExitInvalidArgs, "nfhs-report: %v", err)
		}
	}

	var written string
	switch format {
	case services.FormatXLSX:
		written, err = exporter.NewXLSXWriter(o.paths, o.logger).WriteTables(out, tables...)
	default:
		written, err = exporter.NewCSVWriter(o.paths, o.logger).WriteTable(out, tables[0])
	}
	if err != nil {
		return exitError(ExitInvalidArgs, "nfhs-report: write %s: %v", out, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgGreen).Sprint("wrote"), written)
	return nil
}
