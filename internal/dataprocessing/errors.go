package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	ErrSourceUnavailable = errors.New("survey source unavailable")
	ErrSchema            = errors.New("survey schema invalid")
	ErrEmptyIndicator    = errors.New("indicator has no data")
	ErrUnknownIndicator  = errors.New("unknown indicator")
	ErrNotNumeric        = errors.New("indicator is not numeric")
	ErrInvalidBins       = errors.New("bin count must be at least 1")
)

// SourceError reports a missing, unreadable or unsupported source file.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("survey source %q unavailable: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSourceUnavailable.
func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

// SchemaError reports a source whose shape cannot be loaded, usually a
// missing mandatory column.
type SchemaError struct {
	Source  string
	Sheet   string
	Missing []string
	Reason  string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("survey schema invalid")
	if e.Source != "" {
		fmt.Fprintf(&b, " in %q", e.Source)
	}
	if e.Sheet != "" {
		fmt.Fprintf(&b, " (sheet %q)", e.Sheet)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing column(s) %s", strings.Join(e.Missing, ", "))
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	return b.String()
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// EmptyIndicatorError is returned when a selection has no usable values, so
// max/min are undefined. Callers show it as "no data".
type EmptyIndicatorError struct {
	Round     string
	Indicator string
	Rows      int
}

func (e *EmptyIndicatorError) Error() string {
	return fmt.Sprintf("no data for indicator %q in round %q (%d rows)", e.Indicator, e.Round, e.Rows)
}

// Is reports whether target is ErrEmptyIndicator.
func (e *EmptyIndicatorError) Is(target error) bool { return target == ErrEmptyIndicator }
