package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"nfhsdash/internal/validation"
)

// RawSheet is the untyped content of one worksheet: the header row and the
// records beneath it, exactly as read.
type RawSheet struct {
	Name    string
	Header  []string
	Records [][]string
}

// ReadSource reads the header and records of a survey extract. Workbooks are
// read with excelize; a .csv file is read as a single sheet. sheet may be
// empty, in which case the first sheet carrying a STATE header is used.
func ReadSource(path, sheet string) (*RawSheet, error) {
	return readSource(validation.NewFileValidator(nil), path, sheet)
}

func readSource(v *validation.FileValidator, path, sheet string) (*RawSheet, error) {
	kind, err := v.ValidateSource(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	if kind == validation.KindCSV {
		return readCSV(path)
	}
	return readWorkbook(path, sheet)
}

func readWorkbook(path, sheet string) (*RawSheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	defer f.Close()

	name, err := pickSheet(f, sheet)
	if err != nil {
		return nil, &SchemaError{Source: path, Sheet: sheet, Reason: err.Error()}
	}

	// Raw values keep numbers unformatted so coercion sees "12.5", not "12.50".
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &SourceError{Path: path, Err: fmt.Errorf("read sheet %q: %w", name, err)}
	}

	raw := splitHeader(rows)
	raw.Name = name
	return raw, nil
}

func pickSheet(f *excelize.File, want string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}

	if want != "" {
		for _, name := range sheets {
			if name == want {
				return name, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found (have %s)", want, strings.Join(sheets, ", "))
	}

	for _, name := range sheets {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			continue
		}
		raw := splitHeader(rows)
		for _, h := range raw.Header {
			if strings.TrimSpace(h) == StateColumn {
				return name, nil
			}
		}
	}
	return sheets[0], nil
}

func readCSV(path string) (*RawSheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(stripBOM(file))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &SourceError{Path: path, Err: fmt.Errorf("parse csv: %w", err)}
	}
	return splitHeader(rows), nil
}

// stripBOM drops a leading UTF-8 byte order mark, as written by the CSV exporter.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, _ := io.ReadFull(r, buf)
	if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}

// splitHeader treats the first non-blank row as the header.
func splitHeader(rows [][]string) *RawSheet {
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		return &RawSheet{Header: row, Records: rows[i+1:]}
	}
	return &RawSheet{}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
