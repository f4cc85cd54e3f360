package report

import "time"

// RawRecord is a single loosely typed report entry as decoded from the
// reporting API. Values are whatever encoding/json produces: string,
// float64, bool, nil, []any or map[string]any. Flatteners read records by
// reference and never mutate them.
type RawRecord map[string]any

// ReportType tags a batch of raw records with the flattening rule that
// applies to it. The tag is supplied by the caller, never inferred from
// record shape.
type ReportType string

const (
	UserDetail        ReportType = "UserDetail"
	UserCountsSummary ReportType = "UserCountsSummary"
	UserCountsTrend   ReportType = "UserCountsTrend"
)

// Known reports whether t selects one of the specialized flattening rules.
// Every other tag takes the generic fallback path.
func (t ReportType) Known() bool {
	switch t {
	case UserDetail, UserCountsSummary, UserCountsTrend:
		return true
	}
	return false
}

// FlatRow is an ordered mapping from column name to a serialized scalar.
// Null and missing values are normalized to the empty string.
type FlatRow struct {
	columns []string
	values  map[string]string
}

// NewFlatRow returns an empty row.
func NewFlatRow() *FlatRow {
	return &FlatRow{values: make(map[string]string)}
}

// Set stores value under column, appending the column in insertion order if
// it is new.
func (r *FlatRow) Set(column, value string) {
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
}

// Get returns the value for column, or "" when the column is absent.
func (r *FlatRow) Get(column string) string {
	return r.values[column]
}

// Has reports whether the row carries column.
func (r *FlatRow) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Columns returns the row's column names in insertion order.
func (r *FlatRow) Columns() []string {
	return r.columns
}

// Len returns the number of columns in the row.
func (r *FlatRow) Len() int {
	return len(r.columns)
}

// UnionColumns returns the union of all column names across rows in
// first-seen order. The CSV serializer uses this as the file header so that
// columns introduced by later rows are never dropped.
func UnionColumns(rows []*FlatRow) []string {
	var union []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, c := range row.Columns() {
			if !seen[c] {
				seen[c] = true
				union = append(union, c)
			}
		}
	}
	return union
}

// ExportedFile describes one completed CSV export. It is created once per
// report type and run, never mutated afterwards, and deleted only by the
// retention sweeper.
type ExportedFile struct {
	Path       string
	ReportType ReportType
	RowCount   int
	CreatedAt  time.Time
}
