// Package exporter writes flattened report rows to disk. CSV is the primary
// format: UTF-8 with BOM for Excel compatibility, RFC-4180 quoting via
// encoding/csv, header derived from the union of row columns in first-seen
// order. An optional XLSX workbook mirrors a whole run's output with one
// sheet per report type.
package exporter
