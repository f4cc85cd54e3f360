// Package config provides centralized configuration management for the
// Copilot usage exporter. It handles loading configuration from multiple
// sources, validation, and centralized path resolution.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. config.yaml next to the executable or under configs/
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern COPILOT_* for namespacing:
//
//	COPILOT_GRAPH_TENANT_ID=...
//	COPILOT_GRAPH_CLIENT_ID=...
//	COPILOT_GRAPH_CLIENT_SECRET=...
//	COPILOT_EXPORT_LOOKBACK_DAYS=30
//	COPILOT_RETENTION_DAYS=30
//
// # Path Management
//
// The Paths type resolves all file system paths relative to the executable
// location:
//
//	paths, _ := config.GetPaths()
//	exportPath := paths.GetExportPath("CopilotUsage_UserDetail_20250101_120000.csv")
//
// # Validation
//
// All configuration is validated at load time with go-playground/validator
// struct tags plus a few cross-field checks.
package config
