package config

import "time"

// Application constants for the Copilot usage exporter.
const (
	AppName    = "Copilot Usage Exporter"
	AppVersion = "1.2.0"

	// Environment variable namespace, e.g. COPILOT_GRAPH_TENANT_ID.
	EnvPrefix = "COPILOT"

	// Graph reporting API
	DefaultGraphEndpoint = "https://graph.microsoft.com/beta"
	GraphScope           = "https://graph.microsoft.com/.default"
	DefaultHTTPTimeout   = 60 * time.Second

	// Export defaults
	DefaultLookbackDays  = 30
	DefaultRetentionDays = 30
	DefaultUploadFolder  = "CopilotUsage"

	// Export file naming
	ExportFilePrefix      = "CopilotUsage_"
	ExportFilePattern     = "CopilotUsage_*.csv"
	ExportTimestampLayout = "20060102_150405"

	// File paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultExportsDir = "data/exports"
	DefaultLogsDir    = "logs"
)

// ValidLookbackDays are the lookback periods the reporting API accepts.
var ValidLookbackDays = []int{7, 30, 90, 180}
