package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copilotusage/internal/config"
	"copilotusage/internal/exporter"
	"copilotusage/internal/report"
	"copilotusage/internal/retention"
)

type fakeFetcher struct {
	batches map[string][]report.RawRecord
	errs    map[string]error
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, reportType string, _ int) ([]report.RawRecord, error) {
	f.calls = append(f.calls, reportType)
	if err := f.errs[reportType]; err != nil {
		return nil, err
	}
	return f.batches[reportType], nil
}

type fakeUploader struct {
	failSubstring string
	paths         []string
}

func (u *fakeUploader) Upload(_ context.Context, localPath string) bool {
	u.paths = append(u.paths, localPath)
	return u.failSubstring == "" || !strings.Contains(filepath.Base(localPath), u.failSubstring)
}

func testConfig(t *testing.T, reportTypes ...string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Export.ReportTypes = reportTypes
	cfg.Export.Dir = t.TempDir()
	cfg.Retention.Days = 0
	return cfg
}

func newOrchestrator(t *testing.T, cfg *config.Config, fetcher Fetcher, uploader Uploader) *Orchestrator {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	writer := exporter.NewCSVWriter(&config.Paths{ExportsDir: cfg.Export.Dir})
	return New(cfg, fetcher, uploader, writer, retention.NewSweeper(logger), logger)
}

func TestOrchestrator_ExportsEachConfiguredType(t *testing.T) {
	cfg := testConfig(t, "UserDetail", "UserCountsTrend")
	fetcher := &fakeFetcher{batches: map[string][]report.RawRecord{
		"UserDetail": {
			{"userPrincipalName": "alice@contoso.com"},
			{"userPrincipalName": "bob@contoso.com"},
		},
		"UserCountsTrend": {
			{
				"reportRefreshDate": "2025-08-30",
				"adoptionByDate": []any{
					map[string]any{"reportDate": "2025-08-28"},
					map[string]any{"reportDate": "2025-08-29"},
					map[string]any{"reportDate": "2025-08-30"},
				},
			},
		},
	}}
	uploader := &fakeUploader{}

	summary, err := newOrchestrator(t, cfg, fetcher, uploader).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"UserDetail", "UserCountsTrend"}, fetcher.calls)
	require.Len(t, summary.Files, 2)
	assert.Equal(t, 2, summary.RowsByType[report.UserDetail])
	assert.Equal(t, 3, summary.RowsByType[report.UserCountsTrend])
	assert.Equal(t, 2, summary.Uploaded)
	assert.Zero(t, summary.UploadFailures)

	for _, file := range summary.Files {
		_, statErr := os.Stat(file.Path)
		assert.NoError(t, statErr)
	}
	assert.Len(t, uploader.paths, 2)
}

func TestOrchestrator_ZeroRecordsSkipsTypeAndContinues(t *testing.T) {
	cfg := testConfig(t, "UserDetail", "UserCountsSummary")
	fetcher := &fakeFetcher{batches: map[string][]report.RawRecord{
		"UserDetail":        {},
		"UserCountsSummary": {{"reportRefreshDate": "2025-08-30"}},
	}}

	summary, err := newOrchestrator(t, cfg, fetcher, &fakeUploader{}).Run(context.Background())
	require.NoError(t, err)

	// No file for the empty type; run still succeeds
	require.Len(t, summary.Files, 1)
	assert.Equal(t, report.UserCountsSummary, summary.Files[0].ReportType)
	assert.NotContains(t, summary.RowsByType, report.UserDetail)
}

func TestOrchestrator_FetchFailureIsFatal(t *testing.T) {
	cfg := testConfig(t, "UserDetail", "UserCountsSummary")
	fetchErr := errors.New("503 from reports API")
	fetcher := &fakeFetcher{
		errs: map[string]error{"UserDetail": fetchErr},
		batches: map[string][]report.RawRecord{
			"UserCountsSummary": {{"reportRefreshDate": "2025-08-30"}},
		},
	}

	summary, err := newOrchestrator(t, cfg, fetcher, &fakeUploader{}).Run(context.Background())
	require.ErrorIs(t, err, fetchErr)

	// The run aborts before later types are fetched
	assert.Equal(t, []string{"UserDetail"}, fetcher.calls)
	assert.Empty(t, summary.Files)
}

func TestOrchestrator_UploadFailureDoesNotBlockRemainingUploads(t *testing.T) {
	cfg := testConfig(t, "UserDetail", "UserCountsSummary")
	fetcher := &fakeFetcher{batches: map[string][]report.RawRecord{
		"UserDetail":        {{"userPrincipalName": "alice@contoso.com"}},
		"UserCountsSummary": {{"reportRefreshDate": "2025-08-30"}},
	}}
	uploader := &fakeUploader{failSubstring: "UserDetail"}

	summary, err := newOrchestrator(t, cfg, fetcher, uploader).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, uploader.paths, 2, "second upload attempted despite first failing")
	assert.Equal(t, 1, summary.Uploaded)
	assert.Equal(t, 1, summary.UploadFailures)
}

func TestOrchestrator_NilUploaderSkipsUploadStage(t *testing.T) {
	cfg := testConfig(t, "UserDetail")
	fetcher := &fakeFetcher{batches: map[string][]report.RawRecord{
		"UserDetail": {{"userPrincipalName": "alice@contoso.com"}},
	}}

	summary, err := newOrchestrator(t, cfg, fetcher, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Uploaded)
	assert.Zero(t, summary.UploadFailures)
}

func TestOrchestrator_RetentionSweepRuns(t *testing.T) {
	cfg := testConfig(t, "UserDetail")
	cfg.Retention.Days = 30

	stale := filepath.Join(cfg.Export.Dir, "CopilotUsage_UserDetail_20200101_000000.csv")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))
	old := time.Now().AddDate(0, 0, -60)
	require.NoError(t, os.Chtimes(stale, old, old))

	fetcher := &fakeFetcher{batches: map[string][]report.RawRecord{
		"UserDetail": {{"userPrincipalName": "alice@contoso.com"}},
	}}

	summary, err := newOrchestrator(t, cfg, fetcher, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Swept)

	_, statErr := os.Stat(stale)
	assert.True(t, os.IsNotExist(statErr))

	// The file written by this run survives its own sweep
	_, statErr = os.Stat(summary.Files[0].Path)
	assert.NoError(t, statErr)
}

func TestOrchestrator_UnmodeledTypeExportsGenerically(t *testing.T) {
	cfg := testConfig(t, "getTeamsUserActivityUserDetail")
	fetcher := &fakeFetcher{batches: map[string][]report.RawRecord{
		"getTeamsUserActivityUserDetail": {
			{"userId": "u1", "meetingCount": float64(3)},
			{"userId": "u2"},
		},
	}}

	summary, err := newOrchestrator(t, cfg, fetcher, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Files, 1)
	assert.Equal(t, report.ReportType("getTeamsUserActivityUserDetail"), summary.Files[0].ReportType)
	assert.Equal(t, 2, summary.Files[0].RowCount)
}

func TestOrchestrator_XLSXMirror(t *testing.T) {
	cfg := testConfig(t, "UserDetail")
	cfg.Export.XLSX = true

	fetcher := &fakeFetcher{batches: map[string][]report.RawRecord{
		"UserDetail": {{"userPrincipalName": "alice@contoso.com"}},
	}}

	summary, err := newOrchestrator(t, cfg, fetcher, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Files, 1)

	matches, err := filepath.Glob(filepath.Join(cfg.Export.Dir, "CopilotUsage_Workbook_*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
