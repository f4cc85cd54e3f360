package infrastructure

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copilotusage/internal/config"
)

func TestInitializeLogger_FileOutput(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logPath := filepath.Join(t.TempDir(), "logs", "exporter.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("export started", slog.String("report_type", "UserDetail"))
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]any
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	require.True(t, scanner.Scan(), "expected at least one log line")
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))

	assert.Equal(t, "export started", entry["msg"])
	assert.Equal(t, "UserDetail", entry["report_type"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLogger_LevelFiltering(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logPath := filepath.Join(t.TempDir(), "exporter.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "warn",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)

	logger.Info("filtered out")
	logger.Warn("kept")
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "filtered out")
	assert.Contains(t, string(data), "kept")
}

func TestInitializeLogger_InitializesOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestRunIDHandler_InjectsFromContext(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logPath := filepath.Join(t.TempDir(), "exporter.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), "run-42")
	logger.InfoContext(ctx, "fetching reports")
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "run-42", entry["run_id"])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestSwallowWriter_NeverReturnsError(t *testing.T) {
	w := &swallowWriter{w: failingWriter{}}
	n, err := w.Write([]byte("log line"))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.input), "level=%q", tt.input)
	}
}

func TestRunIDContext(t *testing.T) {
	assert.Empty(t, GetRunID(context.Background()))

	ctx := WithRunID(context.Background(), "run-1")
	assert.Equal(t, "run-1", GetRunID(ctx))

	generated := GenerateRunID()
	assert.NotEmpty(t, generated)
	assert.NotEqual(t, generated, GenerateRunID())

	ctx = ContextWithRunID(context.Background())
	assert.NotEmpty(t, GetRunID(ctx))
}
