// Package dataprocessing loads the NFHS survey extract and derives every
// dashboard figure from it.
//
// # Architecture
//
// The package has three parts:
//
// 1. Parser: reads a workbook (excelize) or CSV file into raw header and record cells
// 2. Loader: builds an immutable Table once and caches it for the process
// 3. Analytics: pure functions over a Table or a round-filtered View
//
// # Usage
//
//	loader := dataprocessing.NewLoader("All India National Family Health Survey.xlsx", "", logger)
//	table, err := loader.Load(ctx)
//	if err != nil {
//	    return err
//	}
//
//	view := dataprocessing.FilterByRound(table, "5")
//	summary, err := dataprocessing.Summarize(view, "Sex ratio")
//	if errors.Is(err, dataprocessing.ErrEmptyIndicator) {
//	    // show "no data"
//	}
//
// # Data Flow
//
//	Workbook → ReadSource → BuildTable → Table → FilterByRound → View → Summarize/TopN/Distribution/Compare
//
// # Column Types
//
// Each column is numeric when every non-missing cell parses as a number and
// text otherwise. One unparseable cell keeps the whole column as text; it
// never fails the load. Rows whose STATE cell is the literal "state" are a
// header row repeated inside the data and are dropped before typing.
//
// # Concurrency
//
// Tables and views are never mutated after construction and may be shared
// by any number of goroutines.
package dataprocessing
