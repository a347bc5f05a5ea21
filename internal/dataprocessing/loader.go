package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"nfhsdash/internal/validation"
)

// LoadStats records what happened while a table was built.
type LoadStats struct {
	Source         string
	Sheet          string
	RowsRead       int
	BlankRows      int
	SentinelRows   int
	Rows           int
	NumericColumns int
	TextColumns    int
	Duration       time.Duration
}

// BuildTable turns raw header and record cells into a Table. Rows whose STATE
// equals the embedded header sentinel are dropped before numeric coercion.
func BuildTable(header []string, records [][]string) (*Table, LoadStats, error) {
	var stats LoadStats
	names := normalizeHeader(header)

	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	var missing []string
	for _, required := range []string{StateColumn, RoundColumn} {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, stats, &SchemaError{Missing: missing}
	}
	stateIdx := index[StateColumn]

	cells := make([][]string, len(names))
	for _, record := range records {
		stats.RowsRead++
		if isBlankRow(record) {
			stats.BlankRows++
			continue
		}
		if cellAt(record, stateIdx) == HeaderSentinel {
			stats.SentinelRows++
			continue
		}
		for c := range names {
			cells[c] = append(cells[c], cellAt(record, c))
		}
	}

	table := &Table{
		columns: make([]*Column, len(names)),
		index:   index,
	}
	for c, name := range names {
		col := newColumn(name, cells[c])
		table.columns[c] = col
		if col.Kind() == KindNumeric {
			stats.NumericColumns++
		} else {
			stats.TextColumns++
		}
	}
	table.rows = len(cells[stateIdx])
	table.state = table.columns[stateIdx]
	table.round = table.columns[index[RoundColumn]]
	stats.Rows = table.rows

	return table, stats, nil
}

func cellAt(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// normalizeHeader trims header cells, names blank ones "Unnamed: <i>" and
// suffixes repeats with ".1", ".2" and so on.
func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for taken[name] {
			seen[base]++
			name = fmt.Sprintf("%s.%d", base, seen[base])
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// Loader reads the survey extract at most once and hands every caller the
// same table. The zero value is not usable; construct it with NewLoader.
type Loader struct {
	source    string
	sheet     string
	logger    *slog.Logger
	validator *validation.FileValidator

	once  sync.Once
	done  atomic.Bool
	table *Table
	stats LoadStats
	err   error
}

// NewLoader creates a loader for the workbook or CSV file at source.
func NewLoader(source, sheet string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "survey_loader"))
	return &Loader{
		source:    source,
		sheet:     sheet,
		logger:    logger,
		validator: validation.NewFileValidator(logger),
	}
}

// Load returns the cached table, reading the source on the first call only.
// A failed first load is cached too: later calls return the same error.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	l.once.Do(func() {
		l.table, l.stats, l.err = l.load(ctx)
		l.done.Store(true)
	})
	return l.table, l.err
}

func (l *Loader) load(ctx context.Context) (*Table, LoadStats, error) {
	start := time.Now()
	l.logger.InfoContext(ctx, "loading survey extract",
		slog.String("source", l.source),
		slog.String("sheet", l.sheet))

	raw, err := readSource(l.validator, l.source, l.sheet)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to read survey extract",
			slog.String("source", l.source),
			slog.String("error", err.Error()))
		return nil, LoadStats{Source: l.source, Sheet: l.sheet}, err
	}

	table, stats, err := BuildTable(raw.Header, raw.Records)
	stats.Source = l.source
	stats.Sheet = raw.Name
	stats.Duration = time.Since(start)
	if err != nil {
		if se, ok := err.(*SchemaError); ok {
			se.Source = l.source
			se.Sheet = raw.Name
		}
		l.logger.ErrorContext(ctx, "survey extract has an invalid schema",
			slog.String("source", l.source),
			slog.String("error", err.Error()))
		return nil, stats, err
	}

	l.logger.InfoContext(ctx, "survey extract loaded",
		slog.String("source", stats.Source),
		slog.String("sheet", stats.Sheet),
		slog.Int("rows_read", stats.RowsRead),
		slog.Int("rows", stats.Rows),
		slog.Int("sentinel_rows_dropped", stats.SentinelRows),
		slog.Int("blank_rows_skipped", stats.BlankRows),
		slog.Int("numeric_columns", stats.NumericColumns),
		slog.Int("text_columns", stats.TextColumns),
		slog.Duration("duration", stats.Duration))
	return table, stats, nil
}

// Stats returns the statistics of the completed load. It is the zero value
// until Load has run.
func (l *Loader) Stats() LoadStats {
	if !l.done.Load() {
		return LoadStats{}
	}
	return l.stats
}

// Loaded reports whether Load has completed successfully.
func (l *Loader) Loaded() bool {
	return l.done.Load() && l.err == nil
}

// Source returns the configured source path.
func (l *Loader) Source() string { return l.source }
