package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"nfhsdash/internal/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes CSV files into the exports directory
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // UTF-8 BOM so Excel detects the encoding
}

// WriteCSV writes data to a CSV file with the given options and returns the
// path written.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := resolvePath(w.paths, filePath)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.Append {
		options.Headers = nil
		options.BOMPrefix = false
	}
	if err := writeRecords(file, options); err != nil {
		return "", err
	}
	return fullPath, file.Close()
}

// WriteTable writes t as a new CSV file with a BOM.
func (w *CSVWriter) WriteTable(filePath string, t *Table) (string, error) {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   t.Header,
		Records:   t.Records(),
		BOMPrefix: true,
	})
}

// EncodeCSV streams t to out, optionally prefixed by a UTF-8 BOM.
func EncodeCSV(out io.Writer, t *Table, bom bool) error {
	return writeRecords(out, WriteOptions{
		Headers:   t.Header,
		Records:   t.Records(),
		BOMPrefix: bom,
	})
}

func writeRecords(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// resolvePath places relative names in the exports directory.
func resolvePath(paths *config.Paths, filePath string) string {
	if filepath.IsAbs(filePath) || paths == nil {
		return filePath
	}
	return paths.GetExportPath(filePath)
}
