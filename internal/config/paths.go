package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the directories the dashboard reads from and writes to,
// resolved against the executable location.
type Paths struct {
	ExecutableDir string
	DataDir       string
	ExportsDir    string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return NewPaths(filepath.Dir(exe)), nil
}

// NewPaths lays out the standard directories beneath baseDir.
//
//	<baseDir>/
//	  ├── data/           (survey extract)
//	  │   └── exports/    (CSV and XLSX exports)
//	  └── logs/
func NewPaths(baseDir string) *Paths {
	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       filepath.Join(baseDir, DefaultDataDir),
		ExportsDir:    filepath.Join(baseDir, filepath.FromSlash(DefaultExportsDir)),
		LogsDir:       filepath.Join(baseDir, DefaultLogsDir),
	}
}

// EnsureDirectories creates the writable directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// GetExportPath returns filename inside the exports directory
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// ResolveSource finds the survey extract. Absolute paths are returned as is;
// a relative path is tried against the working directory, the executable
// directory and the data directory, in that order. When nothing exists the
// working-directory form is returned so the loader reports it.
func (p *Paths) ResolveSource(source string) string {
	if filepath.IsAbs(source) {
		return source
	}

	candidates := []string{
		source,
		filepath.Join(p.ExecutableDir, source),
		filepath.Join(p.DataDir, source),
	}
	for _, candidate := range candidates {
		if isFile(candidate) {
			return candidate
		}
	}
	return source
}

// isFile reports whether path names an existing regular file
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LogPathResolution logs the resolved directories for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	wd, _ := os.Getwd()
	logger.Info("Path resolution",
		slog.String("working_dir", wd),
		slog.String("executable_dir", p.ExecutableDir),
		slog.String("data_dir", p.DataDir),
		slog.String("exports_dir", p.ExportsDir),
		slog.String("logs_dir", p.LogsDir))
}
