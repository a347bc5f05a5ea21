package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Mandatory column names and the sentinel value of the embedded header row.
const (
	StateColumn    = "STATE"
	RoundColumn    = "nfhs"
	HeaderSentinel = "state"
)

// missingTokens are the cell values treated as missing, in addition to blank cells.
var missingTokens = map[string]struct{}{
	"NA": {}, "N/A": {}, "#N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {},
	"NULL": {}, "null": {}, "None": {}, "<NA>": {},
}

var thousandsPattern = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ColumnKind is the stored type of a column.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumeric
)

func (k ColumnKind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "text"
}

// Column is one immutable column of a Table. Numeric columns store NaN for
// missing cells, text columns store "".
type Column struct {
	name    string
	kind    ColumnKind
	numbers []float64
	texts   []string
}

// Name returns the column header.
func (c *Column) Name() string { return c.name }

// Kind returns the stored type.
func (c *Column) Kind() ColumnKind { return c.kind }

// Len returns the number of cells.
func (c *Column) Len() int {
	if c.kind == KindNumeric {
		return len(c.numbers)
	}
	return len(c.texts)
}

// IsMissing reports whether row i holds no value.
func (c *Column) IsMissing(i int) bool {
	if c.kind == KindNumeric {
		return math.IsNaN(c.numbers[i])
	}
	return c.texts[i] == ""
}

// Float returns the numeric value of row i. ok is false for text columns and
// missing cells.
func (c *Column) Float(i int) (float64, bool) {
	if c.kind != KindNumeric || math.IsNaN(c.numbers[i]) {
		return 0, false
	}
	return c.numbers[i], true
}

// Text returns row i as text; numbers use the shortest exact form ("4", "12.5").
func (c *Column) Text(i int) string {
	if c.kind == KindNumeric {
		if math.IsNaN(c.numbers[i]) {
			return ""
		}
		return formatNumber(c.numbers[i])
	}
	return c.texts[i]
}

// Value returns float64, string or nil for a missing cell.
func (c *Column) Value(i int) any {
	if c.IsMissing(i) {
		return nil
	}
	if c.kind == KindNumeric {
		return c.numbers[i]
	}
	return c.texts[i]
}

// Table is the loaded survey extract. It has no mutators and is safe for
// concurrent reads.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
	state   *Column
	round   *Column
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Columns returns the column names in source order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// Column looks a column up by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// State returns the STATE value of table row i.
func (t *Table) State(i int) string { return t.state.Text(i) }

// RoundLabel returns the survey round of table row i, "" when missing.
func (t *Table) RoundLabel(i int) string { return t.round.Text(i) }

// All returns a view over every row.
func (t *Table) All() *View {
	rows := make([]int, t.rows)
	for i := range rows {
		rows[i] = i
	}
	return &View{table: t, rows: rows}
}

// View is an ordered subset of a table's rows. It shares the table's columns.
type View struct {
	table *Table
	round string
	rows  []int
}

// Table returns the table the view was derived from.
func (v *View) Table() *Table { return v.table }

// Round returns the round the view was filtered on, "" for unfiltered views.
func (v *View) Round() string { return v.round }

// Len returns the number of rows in the view.
func (v *View) Len() int { return len(v.rows) }

// Rows returns a copy of the underlying table row indices.
func (v *View) Rows() []int {
	out := make([]int, len(v.rows))
	copy(out, v.rows)
	return out
}

// State returns the STATE value of the view's i-th row.
func (v *View) State(i int) string { return v.table.State(v.rows[i]) }

// RoundLabel returns the round of the view's i-th row.
func (v *View) RoundLabel(i int) string { return v.table.RoundLabel(v.rows[i]) }

func (v *View) subset(rows []int) *View {
	return &View{table: v.table, round: v.round, rows: rows}
}

// isMissingCell reports whether a raw cell carries no value.
func isMissingCell(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return true
	}
	_, ok := missingTokens[s]
	return ok
}

// parseNumber parses a raw cell as a finite number. Surrounding whitespace and
// thousands separators are accepted.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if thousandsPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// newColumn applies the all-or-nothing numeric policy to raw cells: when every
// non-missing cell parses, the column is numeric; otherwise it is kept as text.
func newColumn(name string, raw []string) *Column {
	numbers := make([]float64, len(raw))
	numeric := true
	for i, cell := range raw {
		if isMissingCell(cell) {
			numbers[i] = math.NaN()
			continue
		}
		f, ok := parseNumber(cell)
		if !ok {
			numeric = false
			break
		}
		numbers[i] = f
	}
	if numeric {
		return &Column{name: name, kind: KindNumeric, numbers: numbers}
	}

	texts := make([]string, len(raw))
	for i, cell := range raw {
		if isMissingCell(cell) {
			continue
		}
		texts[i] = cell
	}
	return &Column{name: name, kind: KindText, texts: texts}
}
