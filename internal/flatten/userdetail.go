package flatten

import "copilotusage/internal/report"

// userDetailFields maps output columns to the scalar fields of a user
// detail record, in header order.
var userDetailFields = []struct {
	column string
	key    string
}{
	{"ReportRefreshDate", "reportRefreshDate"},
	{"UserPrincipalName", "userPrincipalName"},
	{"DisplayName", "displayName"},
	{"LastActivityDate", "lastActivityDate"},
	{"CopilotChatLastActivityDate", "copilotChatLastActivityDate"},
	{"TeamsCopilotLastActivityDate", "microsoftTeamsCopilotLastActivityDate"},
	{"WordCopilotLastActivityDate", "wordCopilotLastActivityDate"},
	{"ExcelCopilotLastActivityDate", "excelCopilotLastActivityDate"},
	{"PowerPointCopilotLastActivityDate", "powerPointCopilotLastActivityDate"},
	{"OutlookCopilotLastActivityDate", "outlookCopilotLastActivityDate"},
	{"OneNoteCopilotLastActivityDate", "oneNoteCopilotLastActivityDate"},
	{"LoopCopilotLastActivityDate", "loopCopilotLastActivityDate"},
}

// flattenUserDetail emits one row per record. Every derived column is
// present on every row; missing scalars become empty strings. When the
// record carries a per-period detail sub-object its report period label is
// extracted as an extra column, empty otherwise.
func flattenUserDetail(records []report.RawRecord) []*report.FlatRow {
	rows := make([]*report.FlatRow, 0, len(records))
	for _, rec := range records {
		row := report.NewFlatRow()
		for _, f := range userDetailFields {
			row.Set(f.column, scalarString(rec[f.key]))
		}
		row.Set("ReportPeriod", userDetailPeriod(rec))
		rows = append(rows, row)
	}
	return rows
}

// userDetailPeriod pulls the report period label out of the nested
// per-period detail array. Absence is not an error.
func userDetailPeriod(rec report.RawRecord) string {
	details, ok := nestedSlice(rec, "copilotActivityUserDetailsByPeriod")
	if !ok || len(details) == 0 {
		return ""
	}
	detail, ok := details[0].(map[string]any)
	if !ok {
		return ""
	}
	return scalarString(detail["reportPeriod"])
}
