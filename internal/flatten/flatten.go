package flatten

import (
	"errors"

	"copilotusage/internal/report"
)

// ErrNoRecords signals an empty input batch. Callers treat it as a
// non-fatal "no data" condition: log, skip the report type, continue.
var ErrNoRecords = errors.New("flatten: no records")

// Flatten converts a batch of raw records into flat rows using the rule
// selected by kind. Unmodeled report types take the generic fallback.
// Flattening is deterministic: the same batch always yields identical rows.
func Flatten(records []report.RawRecord, kind report.ReportType) ([]*report.FlatRow, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	switch kind {
	case report.UserDetail:
		return flattenUserDetail(records), nil
	case report.UserCountsSummary:
		return flattenUserCountsSummary(records), nil
	case report.UserCountsTrend:
		return flattenUserCountsTrend(records), nil
	default:
		return flattenGeneric(records), nil
	}
}
