package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for file paths in the application.
type Paths struct {
	ExecutableDir string
	DataDir       string
	ExportsDir    string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable
// location. Paths are never relative to the current working directory, so
// the exporter behaves the same under cron and interactive runs.
//
// Directory structure:
//
//	<executable dir>/
//	  ├── config.yaml          (optional)
//	  ├── data/
//	  │   └── exports/         (generated CSV/XLSX files)
//	  └── logs/                (run logs)
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	exeDir := filepath.Dir(exe)

	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       filepath.Join(exeDir, DefaultDataDir),
		ExportsDir:    filepath.Join(exeDir, DefaultExportsDir),
		LogsDir:       filepath.Join(exeDir, DefaultLogsDir),
	}, nil
}

// EnsureDirectories creates all required directories.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.DataDir, p.ExportsDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetExportPath returns the full path for an export file.
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetLogPath returns the full path for a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
