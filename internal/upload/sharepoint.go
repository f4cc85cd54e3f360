// Package upload pushes completed export files into a SharePoint document
// library through the Graph drive API. Upload outcomes are reported as a
// boolean: a failed upload is logged and never fatal, and the pipeline does
// not interpret the result further.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"copilotusage/internal/config"
)

// Uploader uploads local files into a drive folder.
type Uploader struct {
	http    *http.Client
	cred    azcore.TokenCredential
	baseURL string
	siteID  string
	driveID string
	folder  string
	logger  *slog.Logger
}

// NewUploader creates an uploader for the configured document library.
func NewUploader(graph config.GraphConfig, cfg config.UploadConfig, cred azcore.TokenCredential, logger *slog.Logger) *Uploader {
	return &Uploader{
		http:    &http.Client{Timeout: config.DefaultHTTPTimeout},
		cred:    cred,
		baseURL: strings.TrimRight(graph.Endpoint, "/"),
		siteID:  cfg.SiteID,
		driveID: cfg.DriveID,
		folder:  strings.Trim(cfg.Folder, "/"),
		logger:  logger,
	}
}

// Upload puts one local file into the target folder, overwriting any file
// of the same name. It returns true on success; every failure is logged and
// returned as false.
func (u *Uploader) Upload(ctx context.Context, localPath string) bool {
	file, err := os.Open(localPath)
	if err != nil {
		u.logger.Error("Upload failed to open local file",
			slog.String("path", localPath),
			slog.String("error", err.Error()))
		return false
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		u.logger.Error("Upload failed to stat local file",
			slog.String("path", localPath),
			slog.String("error", err.Error()))
		return false
	}

	token, err := u.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{config.GraphScope},
	})
	if err != nil {
		u.logger.Error("Upload failed to acquire token",
			slog.String("error", err.Error()))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.itemURL(filepath.Base(localPath)), file)
	if err != nil {
		u.logger.Error("Upload failed to build request",
			slog.String("error", err.Error()))
		return false
	}
	req.ContentLength = info.Size()
	req.Header.Set("Authorization", "Bearer "+token.Token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := u.http.Do(req)
	if err != nil {
		u.logger.Error("Upload request failed",
			slog.String("path", localPath),
			slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		u.logger.Error("Upload rejected by drive API",
			slog.String("path", localPath),
			slog.Int("status", resp.StatusCode))
		return false
	}

	u.logger.Info("File uploaded",
		slog.String("file", filepath.Base(localPath)),
		slog.String("folder", u.folder),
		slog.Int64("size_bytes", info.Size()))
	return true
}

// itemURL builds the simple-upload URL for a file name inside the target
// folder.
func (u *Uploader) itemURL(name string) string {
	remote := url.PathEscape(name)
	if u.folder != "" {
		remote = u.folder + "/" + remote
	}
	return fmt.Sprintf("%s/sites/%s/drives/%s/root:/%s:/content",
		u.baseURL, u.siteID, u.driveID, remote)
}

// Close releases the idle connections held by the uploader's transport.
func (u *Uploader) Close() {
	u.http.CloseIdleConnections()
}
