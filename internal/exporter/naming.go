package exporter

import (
	"fmt"
	"time"

	"copilotusage/internal/config"
	"copilotusage/internal/report"
)

// FileName builds the export file name for a report type and run timestamp:
// CopilotUsage_<ReportType>_<YYYYMMDD_HHMMSS>.csv
func FileName(kind report.ReportType, at time.Time) string {
	return fmt.Sprintf("%s%s_%s.csv", config.ExportFilePrefix, kind, at.Format(config.ExportTimestampLayout))
}

// WorkbookName builds the XLSX mirror file name for a run timestamp.
func WorkbookName(at time.Time) string {
	return fmt.Sprintf("%sWorkbook_%s.xlsx", config.ExportFilePrefix, at.Format(config.ExportTimestampLayout))
}
