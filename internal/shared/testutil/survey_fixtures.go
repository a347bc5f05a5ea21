package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SurveySheet is the sheet name used by the fixture workbooks.
const SurveySheet = "NFHS"

// SampleSurveyRows returns a small extract covering three rounds and three
// states. The second row repeats the header inside the data, as the real
// extract does, and Bihar has no literacy figure for round 5.
func SampleSurveyRows() [][]any {
	return [][]any{
		{"STATE", "nfhs", "Sex ratio", "Literacy (%)", "Notes"},
		{"state", "nfhs", "Sex ratio", "Literacy (%)", "Notes"},
		{"Kerala", 3, 1058, 95.2, "baseline"},
		{"Bihar", 3, 1004, 55.3, nil},
		{"Goa", 3, 961, 87.4, nil},
		{"Kerala", 4, 1049, 97, nil},
		{"Bihar", 4, 918, 61.8, "revised"},
		{"Goa", 4, 973, 88.7, nil},
		{"Kerala", 5, 1121, 98.2, nil},
		{"Bihar", 5, 1090, "NA", nil},
		{"Goa", 5, 1027, 91.1, nil},
	}
}

// ScenarioRows returns the two-state extract used by the summary scenario:
// A=10 and B=30 in round 1, plus an embedded header row carrying 99.
func ScenarioRows() [][]any {
	return [][]any{
		{"STATE", "nfhs", "ind"},
		{"A", 1, 10},
		{"B", 1, 30},
		{"state", 1, 99},
	}
}

// WriteSurveyWorkbook writes rows to a new workbook in t.TempDir() and
// returns its path. The first row is the header.
func WriteSurveyWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	return WriteSurveyWorkbookSheet(t, SurveySheet, rows)
}

// WriteSurveyWorkbookSheet is WriteSurveyWorkbook with an explicit sheet name.
func WriteSurveyWorkbookSheet(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		values := make([]any, len(row))
		copy(values, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("write row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(t.TempDir(), "survey.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// WriteSurveyCSV writes rows as a CSV file in t.TempDir() and returns its path.
func WriteSurveyCSV(t *testing.T, rows [][]any) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "survey.csv")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create csv: %v", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				record[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(record); err != nil {
			t.Fatalf("write csv: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush csv: %v", err)
	}
	return path
}
