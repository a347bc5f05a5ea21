package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"nfhsdash/pkg/contracts/domain"
)

// Rounds lists the distinct survey rounds of t in first-seen order. Rows
// without a round are ignored.
func Rounds(t *Table) []string {
	seen := make(map[string]bool)
	rounds := []string{}
	for i := 0; i < t.Len(); i++ {
		label := t.RoundLabel(i)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		rounds = append(rounds, label)
	}
	return rounds
}

// FilterByRound returns the rows of t whose round equals round, in table
// order. A numeric round column is compared by value, so "4" matches "4.0".
// Text rounds match the label exactly, the key Rounds and RoundAggregate
// group on. An unknown round yields an empty view.
func FilterByRound(t *Table, round string) *View {
	view := &View{table: t, round: round, rows: []int{}}
	col := t.round

	if col.Kind() == KindNumeric {
		want, ok := parseNumber(round)
		if !ok {
			return view
		}
		for i := 0; i < t.Len(); i++ {
			if got, ok := col.Float(i); ok && got == want {
				view.rows = append(view.rows, i)
			}
		}
		return view
	}

	for i := 0; i < t.Len(); i++ {
		if !col.IsMissing(i) && col.Text(i) == round {
			view.rows = append(view.rows, i)
		}
	}
	return view
}

// NumericIndicators lists the numeric columns of v in table order. STATE is
// never listed; the round column only when includeRound is set.
func NumericIndicators(v *View, includeRound bool) []string {
	out := []string{}
	for _, col := range v.table.columns {
		if col.Kind() != KindNumeric || col == v.table.state {
			continue
		}
		if col == v.table.round && !includeRound {
			continue
		}
		out = append(out, col.Name())
	}
	return out
}

// States lists the distinct STATE values of v in view order.
func States(v *View) []string {
	seen := make(map[string]bool)
	out := []string{}
	for i := range v.rows {
		s := v.State(i)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// indicator resolves a column name to a numeric column.
func indicator(t *Table, name string) (*Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, name)
	}
	if col.Kind() != KindNumeric {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, name)
	}
	return col, nil
}

// present returns the non-missing values of col over v and the view
// positions they came from.
func present(v *View, col *Column) (values []float64, positions []int) {
	for i, row := range v.rows {
		if f, ok := col.Float(row); ok {
			values = append(values, f)
			positions = append(positions, i)
		}
	}
	return values, positions
}

// Summarize computes the mean of name over v and the states holding its
// maximum and minimum. Ties resolve to the first row in view order. An
// *EmptyIndicatorError is returned when v has no usable values.
func Summarize(v *View, name string) (domain.IndicatorSummary, error) {
	col, err := indicator(v.table, name)
	if err != nil {
		return domain.IndicatorSummary{}, err
	}

	values, positions := present(v, col)
	if len(values) == 0 {
		return domain.IndicatorSummary{}, &EmptyIndicatorError{Round: v.round, Indicator: name, Rows: v.Len()}
	}

	maxAt := floats.MaxIdx(values)
	minAt := floats.MinIdx(values)
	mean := stat.Mean(values, nil)

	return domain.IndicatorSummary{
		Round:          v.round,
		Indicator:      name,
		Average:        mean,
		AverageRounded: math.Round(mean*100) / 100,
		StateAtMax:     v.State(positions[maxAt]),
		StateAtMin:     v.State(positions[minAt]),
		Max:            values[maxAt],
		Min:            values[minAt],
		Count:          len(values),
	}, nil
}

// Values returns the state and value of every row of v, in view order.
func Values(v *View, name string) ([]domain.StateValue, error) {
	col, err := indicator(v.table, name)
	if err != nil {
		return nil, err
	}
	out := make([]domain.StateValue, 0, v.Len())
	for i, row := range v.rows {
		out = append(out, stateValue(v, i, col, row))
	}
	return out, nil
}

func stateValue(v *View, i int, col *Column, row int) domain.StateValue {
	sv := domain.StateValue{State: v.State(i), Round: v.RoundLabel(i)}
	if f, ok := col.Float(row); ok {
		sv.Value = &f
	}
	return sv
}

// TopN returns the n rows of v with the greatest value of name, descending.
// Equal values keep view order and missing values sort last. n larger than
// the view returns every row; n <= 0 returns none.
func TopN(v *View, name string, n int) ([]domain.StateValue, error) {
	col, err := indicator(v.table, name)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []domain.StateValue{}, nil
	}

	order := make([]int, v.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, okA := col.Float(v.rows[order[a]])
		vb, okB := col.Float(v.rows[order[b]])
		if okA != okB {
			return okA
		}
		return okA && va > vb
	})

	if n > len(order) {
		n = len(order)
	}
	out := make([]domain.StateValue, 0, n)
	for _, i := range order[:n] {
		out = append(out, stateValue(v, i, col, v.rows[i]))
	}
	return out, nil
}

// Distribution partitions the observed range of name over v into bins
// equal-width buckets. Buckets are half-open except the last, which also
// holds the maximum. When every value is equal the range is widened to
// [x-0.5, x+0.5].
func Distribution(v *View, name string, bins int) (domain.Histogram, error) {
	if bins < 1 {
		return domain.Histogram{}, fmt.Errorf("%w: got %d", ErrInvalidBins, bins)
	}
	col, err := indicator(v.table, name)
	if err != nil {
		return domain.Histogram{}, err
	}

	values, _ := present(v, col)
	if len(values) == 0 {
		return domain.Histogram{}, &EmptyIndicatorError{Round: v.round, Indicator: name, Rows: v.Len()}
	}

	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	width := (hi - lo) / float64(bins)

	buckets := make([]domain.HistogramBucket, bins)
	for i := range buckets {
		buckets[i] = domain.HistogramBucket{Lower: edges[i], Upper: edges[i+1]}
	}
	for _, x := range values {
		buckets[bucketOf(x, edges)].Count++
	}

	return domain.Histogram{
		Round:     v.round,
		Indicator: name,
		Bins:      bins,
		Width:     width,
		Total:     len(values),
		Missing:   v.Len() - len(values),
		Buckets:   buckets,
	}, nil
}

// bucketOf finds i with edges[i] <= x < edges[i+1]; the top edge belongs to
// the last bucket.
func bucketOf(x float64, edges []float64) int {
	last := len(edges) - 2
	i := sort.SearchFloat64s(edges, x)
	// SearchFloat64s returns the first edge >= x.
	if i < len(edges) && edges[i] == x {
		if i > last {
			return last
		}
		return i
	}
	if i == 0 {
		return 0
	}
	if i-1 > last {
		return last
	}
	return i - 1
}

// RoundAggregate averages name over each round of the full table. Rounds are
// returned in ascending order (numeric when the round column is numeric) and
// rounds with no values for name are omitted.
func RoundAggregate(t *Table, name string) ([]domain.RoundAverage, error) {
	col, err := indicator(t, name)
	if err != nil {
		return nil, err
	}

	type group struct {
		key    float64
		values []float64
	}
	groups := make(map[string]*group)
	labels := []string{}
	for i := 0; i < t.Len(); i++ {
		label := t.RoundLabel(i)
		if label == "" {
			continue
		}
		g, ok := groups[label]
		if !ok {
			g = &group{}
			if f, ok := t.round.Float(i); ok {
				g.key = f
			}
			groups[label] = g
			labels = append(labels, label)
		}
		if f, ok := col.Float(i); ok {
			g.values = append(g.values, f)
		}
	}

	numeric := t.round.Kind() == KindNumeric
	sort.SliceStable(labels, func(a, b int) bool {
		if numeric {
			return groups[labels[a]].key < groups[labels[b]].key
		}
		return labels[a] < labels[b]
	})

	out := []domain.RoundAverage{}
	for _, label := range labels {
		g := groups[label]
		if len(g.values) == 0 {
			continue
		}
		out = append(out, domain.RoundAverage{
			Round:   label,
			Average: stat.Mean(g.values, nil),
			Count:   len(g.values),
		})
	}
	return out, nil
}

// Compare keeps the rows of v whose STATE is one of states, in view order.
// An empty selection yields an empty view.
func Compare(v *View, states []string) *View {
	if len(states) == 0 {
		return v.subset([]int{})
	}
	want := make(map[string]bool, len(states))
	for _, s := range states {
		want[s] = true
	}
	rows := []int{}
	for i, row := range v.rows {
		if want[v.State(i)] {
			rows = append(rows, row)
		}
	}
	return v.subset(rows)
}
