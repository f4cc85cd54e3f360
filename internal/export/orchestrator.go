package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"copilotusage/internal/config"
	"copilotusage/internal/exporter"
	"copilotusage/internal/flatten"
	"copilotusage/internal/report"
	"copilotusage/internal/retention"
)

// Fetcher returns the raw records for one report type over a lookback
// period. An empty batch is an empty slice, not an error.
type Fetcher interface {
	Fetch(ctx context.Context, reportType string, periodDays int) ([]report.RawRecord, error)
}

// Uploader pushes one completed export file to the document store. The
// boolean is the entire contract; failures are the uploader's to log.
type Uploader interface {
	Upload(ctx context.Context, localPath string) bool
}

// Summary aggregates the outcome of one run.
type Summary struct {
	Files          []*report.ExportedFile
	RowsByType     map[report.ReportType]int
	Uploaded       int
	UploadFailures int
	Swept          int
}

// Orchestrator wires the export pipeline together.
type Orchestrator struct {
	cfg      *config.Config
	fetcher  Fetcher
	uploader Uploader // nil disables uploads
	writer   *exporter.CSVWriter
	sweeper  *retention.Sweeper
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an orchestrator. A nil uploader disables the upload stage.
func New(cfg *config.Config, fetcher Fetcher, uploader Uploader, writer *exporter.CSVWriter, sweeper *retention.Sweeper, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		fetcher:  fetcher,
		uploader: uploader,
		writer:   writer,
		sweeper:  sweeper,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one complete export run. A fetch failure is fatal for the
// whole run. A zero-record report type is logged and skipped. A CSV write
// failure is isolated to its report type; the run only fails when every
// type that had data failed to serialize.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	runStart := o.now()
	summary := &Summary{RowsByType: make(map[report.ReportType]int)}
	var sheets []exporter.Sheet
	serializeFailures := 0

	for _, name := range o.cfg.Export.ReportTypes {
		kind := report.ReportType(name)
		if !kind.Known() {
			o.logger.Info("Unmodeled report type, flattening generically",
				slog.String("report_type", name))
		}

		records, err := o.fetcher.Fetch(ctx, name, o.cfg.Export.LookbackDays)
		if err != nil {
			o.logger.Error("Report fetch failed",
				slog.String("report_type", name),
				slog.String("error", err.Error()))
			return summary, fmt.Errorf("fetch %s: %w", name, err)
		}

		rows, err := flatten.Flatten(records, kind)
		if err != nil {
			if errors.Is(err, flatten.ErrNoRecords) {
				o.logger.Warn("No records for report type, skipping",
					slog.String("report_type", name),
					slog.Int("lookback_days", o.cfg.Export.LookbackDays))
				continue
			}
			return summary, fmt.Errorf("flatten %s: %w", name, err)
		}

		file, err := o.writer.WriteRows(exporter.FileName(kind, runStart), kind, rows)
		if err != nil {
			o.logger.Error("CSV serialization failed",
				slog.String("report_type", name),
				slog.String("error", err.Error()))
			serializeFailures++
			continue
		}

		summary.Files = append(summary.Files, file)
		summary.RowsByType[kind] = file.RowCount
		sheets = append(sheets, exporter.Sheet{Name: name, Rows: rows})

		o.logger.Info("Report exported",
			slog.String("report_type", name),
			slog.String("path", file.Path),
			slog.Int("row_count", file.RowCount))
	}

	if serializeFailures > 0 && len(summary.Files) == 0 {
		return summary, fmt.Errorf("all %d report exports failed to serialize", serializeFailures)
	}

	if o.cfg.Export.XLSX && len(sheets) > 0 {
		if path, err := o.writer.WriteWorkbook(exporter.WorkbookName(runStart), sheets); err != nil {
			o.logger.Error("Workbook mirror failed",
				slog.String("error", err.Error()))
		} else {
			o.logger.Info("Workbook mirror written", slog.String("path", path))
		}
	}

	if o.uploader != nil {
		for _, file := range summary.Files {
			if o.uploader.Upload(ctx, file.Path) {
				summary.Uploaded++
			} else {
				summary.UploadFailures++
			}
		}
	}

	removed, err := o.sweeper.Sweep(o.cfg.Export.Dir, config.ExportFilePattern, o.cfg.Retention.Days)
	if err != nil {
		o.logger.Error("Retention sweep failed",
			slog.String("error", err.Error()))
	}
	summary.Swept = removed

	o.logger.Info("Export run complete",
		slog.String("status", "success"),
		slog.Int("files_written", len(summary.Files)),
		slog.Int("files_uploaded", summary.Uploaded),
		slog.Int("upload_failures", summary.UploadFailures),
		slog.Int("files_swept", summary.Swept),
		slog.Duration("elapsed", o.now().Sub(runStart)))
	return summary, nil
}
