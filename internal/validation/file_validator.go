package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SourceKind is the reader a survey extract needs.
type SourceKind int

const (
	KindWorkbook SourceKind = iota
	KindCSV
)

var (
	// ErrNotAFile is returned for directories and other non-regular paths.
	ErrNotAFile = errors.New("not a regular file")
	// ErrLockFile is returned for the "~$" owner files Excel leaves next to
	// an open workbook.
	ErrLockFile = errors.New("temporary Excel lock file")
	// ErrUnsupportedType is returned for extensions no reader handles.
	ErrUnsupportedType = errors.New("unsupported file type")
)

var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// FileValidator checks survey sources and export destinations
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateSource checks that path is a readable workbook or CSV file and
// reports which reader it needs. Failures are left to the caller to log.
func (v *FileValidator) ValidateSource(path string) (SourceKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s: %w", path, ErrNotAFile)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return 0, fmt.Errorf("%s: %w", path, ErrLockFile)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var kind SourceKind
	switch {
	case workbookExtensions[ext]:
		kind = KindWorkbook
	case ext == ".csv":
		kind = KindCSV
	default:
		return 0, fmt.Errorf("%w %q", ErrUnsupportedType, filepath.Ext(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Source validated",
		slog.String("file", path),
		slog.String("extension", ext),
		slog.Int64("size", info.Size()))
	return kind, nil
}

// ValidateOutputDirectory ensures output directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Probe with a throwaway file; directory permission bits are not
	// reliable on every platform.
	file, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := file.Name()
	file.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
