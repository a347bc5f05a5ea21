// Package exporter writes survey tables as CSV or XLSX.
//
// A Table is a header plus rows of cells; cells are strings, float64 values
// or nil for a missing value. Tables are built from a round view, a top-N
// ranking or a per-round trend:
//
//	table, err := exporter.RoundTable(view, []string{"Sex ratio"})
//	err = exporter.EncodeCSV(w, table, true)
//
// CSVWriter and XLSXWriter resolve relative file names against the exports
// directory and create it on demand.
package exporter
