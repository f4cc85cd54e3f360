// Package retention prunes old local export files by age. Failures are
// isolated per file: one locked or unreadable file never aborts the sweep.
package retention

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Sweeper deletes export files older than a configured age.
type Sweeper struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewSweeper creates a sweeper.
func NewSweeper(logger *slog.Logger) *Sweeper {
	return &Sweeper{logger: logger, now: time.Now}
}

// Sweep deletes files in dir matching pattern whose modification time is
// older than maxAgeDays. A zero or negative threshold disables sweeping.
// Per-file stat or delete errors are logged and skipped. The returned count
// is the number of files actually removed.
func (s *Sweeper) Sweep(dir, pattern string, maxAgeDays int) (int, error) {
	if maxAgeDays <= 0 {
		s.logger.Info("Retention sweep disabled", slog.Int("retention_days", maxAgeDays))
		return 0, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, fmt.Errorf("invalid retention pattern %q: %w", pattern, err)
	}

	cutoff := s.now().AddDate(0, 0, -maxAgeDays)
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			s.logger.Warn("Retention sweep could not stat file",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.logger.Warn("Retention sweep could not delete file",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		removed++
		s.logger.Info("Expired export deleted",
			slog.String("path", path),
			slog.Time("modified", info.ModTime()))
	}

	s.logger.Info("Retention sweep complete",
		slog.String("dir", dir),
		slog.Int("matched", len(matches)),
		slog.Int("removed", removed))
	return removed, nil
}
