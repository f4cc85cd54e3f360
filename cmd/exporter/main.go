package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/joho/godotenv"

	"copilotusage/internal/config"
	"copilotusage/internal/export"
	"copilotusage/internal/exporter"
	"copilotusage/internal/fetch"
	"copilotusage/internal/infrastructure"
	"copilotusage/internal/retention"
	"copilotusage/internal/upload"
)

func main() {
	os.Exit(run())
}

// run executes one export run and returns the process exit code. Cleanup
// (log file, idle connections) is deferred so it happens on every exit
// path, including panics.
func run() (code int) {
	var logger *slog.Logger
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("PANIC RECOVERED: %v\n", r)
			fmt.Printf("Stack trace:\n%s\n", debug.Stack())
			if logger != nil {
				logger.Error("Exporter panicked",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
			}
			code = 1
		}
	}()
	defer infrastructure.CloseLogFile()

	lookback := flag.Int("lookback", 0, "lookback period in days (7/30/90/180); overrides config")
	outDir := flag.String("out", "", "directory for CSV exports (defaults to data/exports relative to executable)")
	types := flag.String("types", "", "comma-separated report types to export; overrides config")
	noUpload := flag.Bool("no-upload", false, "skip the document library upload stage")
	flag.Parse()

	// Local .env is a development convenience; absence is not an error.
	godotenv.Load()

	paths, err := config.GetPaths()
	if err != nil {
		fmt.Printf("Error: Failed to initialize paths: %v\n", err)
		return 1
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Printf("Error: Failed to create required directories: %v\n", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: Invalid configuration: %v\n", err)
		return 1
	}
	applyFlags(cfg, *lookback, *outDir, *types, *noUpload)

	logger, err = infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}

	ctx := infrastructure.ContextWithRunID(context.Background())
	logger = infrastructure.LoggerWithContext(ctx)

	logger.Info("Starting Copilot usage export",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("export_dir", cfg.Export.Dir),
		slog.Int("lookback_days", cfg.Export.LookbackDays),
		slog.String("report_types", strings.Join(cfg.Export.ReportTypes, ",")))

	cred, err := azidentity.NewClientSecretCredential(
		cfg.Graph.TenantID, cfg.Graph.ClientID, cfg.Graph.ClientSecret, nil)
	if err != nil {
		logger.Error("Failed to create Graph credential",
			slog.String("error", err.Error()))
		return 1
	}

	client := fetch.NewClient(cfg.Graph, cred, logger)
	defer client.Close()

	var uploader export.Uploader
	if cfg.Upload.Enabled {
		u := upload.NewUploader(cfg.Graph, cfg.Upload, cred, logger)
		defer u.Close()
		uploader = u
	} else {
		logger.Info("Upload stage disabled")
	}

	// The writer resolves relative file names against the configured
	// export directory so -out and the retention sweep agree.
	writerPaths := *paths
	writerPaths.ExportsDir = cfg.Export.Dir
	orchestrator := export.New(cfg, client, uploader,
		exporter.NewCSVWriter(&writerPaths), retention.NewSweeper(logger), logger)

	summary, err := orchestrator.Run(ctx)
	if err != nil {
		logger.Error("Export run failed",
			slog.String("error", err.Error()),
			slog.Int("files_written", len(summary.Files)))
		return 1
	}

	fmt.Printf("Export complete: %d files written, %d uploaded\n",
		len(summary.Files), summary.Uploaded)
	return 0
}

// applyFlags lets command-line flags override loaded configuration.
func applyFlags(cfg *config.Config, lookback int, outDir, types string, noUpload bool) {
	if lookback > 0 {
		cfg.Export.LookbackDays = lookback
	}
	if outDir != "" {
		cfg.Export.Dir = outDir
	}
	if types != "" {
		var names []string
		for _, name := range strings.Split(types, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			cfg.Export.ReportTypes = names
		}
	}
	if noUpload {
		cfg.Upload.Enabled = false
	}
}
