package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"copilotusage/internal/config"
	"copilotusage/internal/report"
)

// ErrNoRows is returned when serialization is invoked on an empty row set.
// The orchestrator must log and skip empty report types instead; reaching
// the serializer with zero rows is a caller bug, and no file is created.
var ErrNoRows = errors.New("exporter: no rows to serialize")

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteRows serializes a flattened row set to a CSV file and returns its
// descriptor. The header is the union of all row columns in first-seen
// order; a later row can therefore never introduce a silently dropped
// column. Columns a given row does not carry serialize as empty strings.
func (w *CSVWriter) WriteRows(filename string, kind report.ReportType, rows []*report.FlatRow) (*report.ExportedFile, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	header := report.UnionColumns(rows)
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := make([]string, len(header))
		for i, column := range header {
			record[i] = row.Get(column)
		}
		records = append(records, record)
	}

	// WriteCSV resolves relative names itself, so the raw filename goes
	// through untouched and the descriptor resolves it the same way.
	fullPath := w.resolvePath(filename)
	if err := w.WriteCSV(filename, WriteOptions{
		Headers:   header,
		Records:   records,
		BOMPrefix: true,
	}); err != nil {
		return nil, err
	}

	return &report.ExportedFile{
		Path:       fullPath,
		ReportType: kind,
		RowCount:   len(rows),
		CreatedAt:  time.Now(),
	}, nil
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Debug("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return file.Sync()
}

// resolvePath resolves a path to the exports directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return w.paths.GetExportPath(filePath)
}
