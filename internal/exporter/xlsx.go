package exporter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"nfhsdash/internal/config"
)

// ErrNoTables is returned when a workbook would have no sheets.
var ErrNoTables = errors.New("no tables to export")

// XLSXWriter writes workbooks into the exports directory
type XLSXWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewXLSXWriter creates a new workbook writer
func NewXLSXWriter(paths *config.Paths, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{paths: paths, logger: logger.With(slog.String("component", "xlsx_writer"))}
}

// WriteTables writes one sheet per table and returns the path written.
func (w *XLSXWriter) WriteTables(filePath string, tables ...*Table) (string, error) {
	fullPath := resolvePath(w.paths, filePath)

	w.logger.Info("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("sheet_count", len(tables)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := EncodeXLSX(file, tables...); err != nil {
		return "", err
	}
	return fullPath, file.Close()
}

// EncodeXLSX streams a workbook with one sheet per table to out. Sheet names
// are made unique; numbers stay numeric cells and missing values stay blank.
func EncodeXLSX(out io.Writer, tables ...*Table) error {
	if len(tables) == 0 {
		return ErrNoTables
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]bool, len(tables))
	for i, t := range tables {
		name := uniqueSheetName(t.Name, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, t, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *Table, headerStyle int) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet, err)
	}

	if len(t.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %q: %w", sheet, err)
		}
		lastCol, err := excelize.ColumnNumberToName(len(t.Header))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
			return fmt.Errorf("failed to size columns of %q: %w", sheet, err)
		}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		copy(values, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i, sheet, err)
		}
	}
	return nil
}

func uniqueSheetName(name string, used map[string]bool) string {
	base := sheetName(name)
	candidate := base
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(base)
		if len(r)+len(suffix) > 31 {
			r = r[:31-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[candidate] = true
	return candidate
}
