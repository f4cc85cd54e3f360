package flatten

import "copilotusage/internal/report"

// adoptionProducts maps output column prefixes to the per-product key
// prefixes of an adoption object. Each product contributes an enabled-users
// and an active-users column.
var adoptionProducts = []struct {
	column string
	key    string
}{
	{"Teams", "microsoftTeams"},
	{"Word", "word"},
	{"PowerPoint", "powerPoint"},
	{"Outlook", "outlook"},
	{"Excel", "excel"},
	{"OneNote", "oneNote"},
	{"Loop", "loop"},
	{"AnyApp", "anyApp"},
	{"CopilotChat", "copilotChat"},
}

// flattenUserCountsSummary emits one row per record. The meaningful data
// lives in the nested adoption-by-product object; when that object is
// absent the derived columns are empty rather than an error.
func flattenUserCountsSummary(records []report.RawRecord) []*report.FlatRow {
	rows := make([]*report.FlatRow, 0, len(records))
	for _, rec := range records {
		row := report.NewFlatRow()
		row.Set("ReportRefreshDate", scalarString(rec["reportRefreshDate"]))

		adoption, _ := nestedMap(rec, "adoptionByProduct")
		row.Set("ReportPeriod", adoptionValue(adoption, "reportPeriod"))
		setAdoptionCounts(row, adoption)

		rows = append(rows, row)
	}
	return rows
}

// flattenUserCountsTrend explodes each record into one row per entry of its
// per-date adoption array, preserving input order. The parent refresh date
// and report period are carried onto every emitted row. A record with an
// empty or absent date array contributes zero rows.
func flattenUserCountsTrend(records []report.RawRecord) []*report.FlatRow {
	var rows []*report.FlatRow
	for _, rec := range records {
		refreshDate := scalarString(rec["reportRefreshDate"])
		period := scalarString(rec["reportPeriod"])

		entries, _ := nestedSlice(rec, "adoptionByDate")
		for _, entry := range entries {
			daily, _ := entry.(map[string]any)
			row := report.NewFlatRow()
			row.Set("ReportRefreshDate", refreshDate)
			row.Set("ReportPeriod", period)
			row.Set("Date", adoptionValue(daily, "reportDate"))
			setAdoptionCounts(row, daily)
			rows = append(rows, row)
		}
	}
	return rows
}

// setAdoptionCounts writes the per-product enabled/active pairs from
// adoption onto row. A nil adoption object yields empty columns so the
// header stays uniform across rows.
func setAdoptionCounts(row *report.FlatRow, adoption map[string]any) {
	for _, p := range adoptionProducts {
		row.Set(p.column+"EnabledUsers", adoptionValue(adoption, p.key+"EnabledUsers"))
		row.Set(p.column+"ActiveUsers", adoptionValue(adoption, p.key+"ActiveUsers"))
	}
}

func adoptionValue(adoption map[string]any, key string) string {
	if adoption == nil {
		return ""
	}
	return scalarString(adoption[key])
}
