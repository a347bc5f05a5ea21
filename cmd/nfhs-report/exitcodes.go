package main

import (
	"errors"
	"fmt"

	"nfhsdash/internal/dataprocessing"
)

// Exit codes for nfhs-report.
const (
	ExitOK              = 0 // Report written.
	ExitInvalidArgs     = 1 // Bad flags, unknown indicator or unsupported output.
	ExitDataUnavailable = 2 // Source missing or sheet malformed.
	ExitNoData          = 3 // Selection has no usable values.
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

func exitError(code int, format string, args ...any) *exitCodeError {
	return &exitCodeError{code: code, msg: fmt.Sprintf(format, args...)}
}

// classify maps survey errors onto exit codes.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ece *exitCodeError
	if errors.As(err, &ece) {
		return ece
	}

	switch {
	case errors.Is(err, dataprocessing.ErrSourceUnavailable), errors.Is(err, dataprocessing.ErrSchema):
		return exitError(ExitDataUnavailable, "nfhs-report: data unavailable: %v", err)
	case errors.Is(err, dataprocessing.ErrEmptyIndicator):
		return exitError(ExitNoData, "nfhs-report: no data: %v", err)
	default:
		// Unknown or text indicators, bad bins and unsupported formats.
		return exitError(ExitInvalidArgs, "nfhs-report: %v", err)
	}
}
