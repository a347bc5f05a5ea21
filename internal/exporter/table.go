package exporter

import (
	"fmt"
	"strings"

	"nfhsdash/internal/dataprocessing"
	"nfhsdash/pkg/contracts/domain"
)

// Table is a named header plus rows. Cells hold string, float64 or nil.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Records returns the rows rendered as CSV text.
func (t *Table) Records() [][]string {
	records := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		record := make([]string, len(row))
		for j, cell := range row {
			record[j] = formatCell(cell)
		}
		records[i] = record
	}
	return records
}

// RoundTable lays out a round view as STATE, nfhs and the given columns in
// view order. No columns means every numeric indicator of the view.
func RoundTable(v *dataprocessing.View, indicators []string) (*Table, error) {
	if len(indicators) == 0 {
		indicators = dataprocessing.NumericIndicators(v, false)
	}

	table := v.Table()
	columns := make([]*dataprocessing.Column, 0, len(indicators))
	header := []string{dataprocessing.StateColumn, dataprocessing.RoundColumn}
	for _, name := range indicators {
		if name == dataprocessing.StateColumn || name == dataprocessing.RoundColumn {
			continue
		}
		col, ok := table.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", dataprocessing.ErrUnknownIndicator, name)
		}
		columns = append(columns, col)
		header = append(header, name)
	}

	rows := make([][]any, 0, v.Len())
	for i, row := range v.Rows() {
		cells := make([]any, 0, len(header))
		cells = append(cells, v.State(i))
		if round, ok := roundCell(table, row); ok {
			cells = append(cells, round)
		} else {
			cells = append(cells, v.RoundLabel(i))
		}
		for _, col := range columns {
			cells = append(cells, col.Value(row))
		}
		rows = append(rows, cells)
	}

	return &Table{Name: sheetName("NFHS " + v.Round()), Header: header, Rows: rows}, nil
}

func roundCell(t *dataprocessing.Table, row int) (float64, bool) {
	col, ok := t.Column(dataprocessing.RoundColumn)
	if !ok {
		return 0, false
	}
	return col.Float(row)
}

// TopTable lays out a ranking with its 1-based rank.
func TopTable(round, indicator string, values []domain.StateValue) *Table {
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{float64(i + 1), v.State, valueCell(v.Value)}
	}
	return &Table{
		Name:   sheetName("Top " + round),
		Header: []string{"Rank", dataprocessing.StateColumn, indicator},
		Rows:   rows,
	}
}

// TrendTable lays out per-round averages of one indicator.
func TrendTable(indicator string, averages []domain.RoundAverage) *Table {
	rows := make([][]any, len(averages))
	for i, a := range averages {
		rows[i] = []any{a.Round, a.Average, float64(a.Count)}
	}
	return &Table{
		Name:   sheetName("Trend " + indicator),
		Header: []string{dataprocessing.RoundColumn, "Average " + indicator, "States"},
		Rows:   rows,
	}
}

func valueCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// sheetName trims a name to Excel's sheet name rules: at most 31 characters
// and none of : \ / ? * [ ].
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}
