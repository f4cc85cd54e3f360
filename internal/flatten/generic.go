package flatten

import (
	"sort"
	"strings"

	"copilotusage/internal/report"
)

// elementSeparator joins rendered array elements into one column value.
const elementSeparator = "; "

// flattenGeneric is the type-driven fallback for report shapes without a
// specialized rule. Each field is handled independently: scalars are copied,
// nulls become empty strings, arrays are rendered element-wise and joined,
// and nested objects are rendered as compact single-line JSON. Unwrapping
// stops after one level, which bounds row width regardless of input nesting
// depth. The batch header is the union of all field names, and fields
// absent from a given record become empty columns so the row set is always
// rectangular.
func flattenGeneric(records []report.RawRecord) []*report.FlatRow {
	rows := make([]*report.FlatRow, 0, len(records))
	var union []string
	seen := make(map[string]bool)

	for _, rec := range records {
		row := report.NewFlatRow()
		for _, key := range sortedKeys(rec) {
			if !seen[key] {
				seen[key] = true
				union = append(union, key)
			}
			row.Set(key, renderValue(rec[key]))
		}
		rows = append(rows, row)
	}

	// Reconcile ragged records against the union header.
	for _, row := range rows {
		for _, c := range union {
			if !row.Has(c) {
				row.Set(c, "")
			}
		}
	}
	return rows
}

// renderValue flattens one field value to text.
func renderValue(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			parts = append(parts, renderElement(el))
		}
		return strings.Join(parts, elementSeparator)
	case map[string]any:
		return compactJSON(t)
	default:
		return scalarString(v)
	}
}

// renderElement renders one array element. Nested structures are serialized
// whole rather than unwrapped further.
func renderElement(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		return compactJSON(v)
	default:
		return scalarString(v)
	}
}

// sortedKeys returns the record's field names in sorted order. Map
// iteration order is random; sorting keeps flattening idempotent.
func sortedKeys(rec report.RawRecord) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
