package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Graph     GraphConfig     `yaml:"graph" envconfig:"GRAPH"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Upload    UploadConfig    `yaml:"upload" envconfig:"UPLOAD"`
	Retention RetentionConfig `yaml:"retention" envconfig:"RETENTION"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
}

// GraphConfig contains Microsoft Graph connection settings.
type GraphConfig struct {
	TenantID          string  `yaml:"tenant_id" envconfig:"TENANT_ID" validate:"required"`
	ClientID          string  `yaml:"client_id" envconfig:"CLIENT_ID" validate:"required"`
	ClientSecret      string  `yaml:"client_secret" envconfig:"CLIENT_SECRET" validate:"required"`
	Endpoint          string  `yaml:"endpoint" envconfig:"ENDPOINT" validate:"url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gt=0"`
}

// ExportConfig controls which reports are exported and where.
type ExportConfig struct {
	ReportTypes  []string `yaml:"report_types" envconfig:"REPORT_TYPES" validate:"min=1"`
	LookbackDays int      `yaml:"lookback_days" envconfig:"LOOKBACK_DAYS" validate:"oneof=7 30 90 180"`
	Dir          string   `yaml:"dir" envconfig:"DIR"`
	XLSX         bool     `yaml:"xlsx" envconfig:"XLSX"`
}

// UploadConfig identifies the SharePoint document library target. The drive
// identifiers are opaque to the export pipeline.
type UploadConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	SiteID  string `yaml:"site_id" envconfig:"SITE_ID"`
	DriveID string `yaml:"drive_id" envconfig:"DRIVE_ID"`
	Folder  string `yaml:"folder" envconfig:"FOLDER"`
}

// RetentionConfig controls local export pruning. Days <= 0 disables the
// sweep entirely.
type RetentionConfig struct {
	Days int `yaml:"days" envconfig:"DAYS"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Load builds the configuration in three layers: Defaults first, then the
// optional config file overlays the fields it names, then environment
// variables overlay the fields actually set. envconfig leaves a field
// untouched when its variable is absent, which is what makes the file tier
// work for every field rather than only the unset ones.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := findConfigFile(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays cfg with the fields present in a YAML file. Fields
// the file does not mention keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolvePaths fills in the export directory and log file path from the
// centralized paths system when they were not configured explicitly.
func (c *Config) resolvePaths() error {
	paths, err := GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	if c.Export.Dir == "" {
		c.Export.Dir = paths.ExportsDir
	}
	if c.Logging.FilePath == "" || c.Logging.FilePath == "logs/exporter.log" {
		c.Logging.FilePath = paths.GetLogPath("exporter.log")
	}
	return nil
}

// Validate checks struct tags plus the cross-field rules the tags cannot
// express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	for _, name := range c.Export.ReportTypes {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("empty report type name in export.report_types")
		}
	}

	// Upload without a target cannot work; degrade to a local-only run
	// instead of failing the whole export.
	if c.Upload.Enabled && (c.Upload.SiteID == "" || c.Upload.DriveID == "") {
		c.Upload.Enabled = false
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		c.Logging.Output = "both"
	}
	return nil
}

// findConfigFile returns the path to the config file, or "" when none
// exists and env vars alone drive the configuration.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the base configuration every load starts from. It is also
// used directly when Load fails and the caller still needs a logger.
func Default() *Config {
	return &Config{
		Graph: GraphConfig{
			Endpoint:          DefaultGraphEndpoint,
			RequestsPerSecond: 4,
		},
		Export: ExportConfig{
			ReportTypes:  []string{"UserDetail", "UserCountsSummary", "UserCountsTrend"},
			LookbackDays: DefaultLookbackDays,
		},
		Upload: UploadConfig{
			Enabled: true,
			Folder:  DefaultUploadFolder,
		},
		Retention: RetentionConfig{
			Days: DefaultRetentionDays,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/exporter.log",
		},
	}
}
