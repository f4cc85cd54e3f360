// Package fetch implements the Graph reports client the export pipeline
// consumes. It owns transport policy: bearer-token auth via azidentity,
// a request rate limiter for the throttled reports API, and one bounded
// retry on 429 honoring Retry-After.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"golang.org/x/time/rate"

	"copilotusage/internal/config"
	"copilotusage/internal/report"
)

// reportPaths maps the modeled report types to their Graph report function
// names. Unmodeled types hit the endpoint under their own name and flatten
// through the generic fallback.
var reportPaths = map[report.ReportType]string{
	report.UserDetail:        "microsoft365CopilotUsageUserDetail",
	report.UserCountsSummary: "microsoft365CopilotUserCountSummary",
	report.UserCountsTrend:   "microsoft365CopilotUserCountTrend",
}

// Client fetches usage report batches from the Graph reporting API.
type Client struct {
	http    *http.Client
	cred    azcore.TokenCredential
	baseURL string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a reports client. The credential is shared with the
// uploader so the whole run holds a single Graph session.
func NewClient(cfg config.GraphConfig, cred azcore.TokenCredential, logger *slog.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: config.DefaultHTTPTimeout},
		cred:    cred,
		baseURL: strings.TrimRight(cfg.Endpoint, "/"),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logger,
	}
}

// responsePage is one page of a Graph collection response.
type responsePage struct {
	Value    []report.RawRecord `json:"value"`
	NextLink string             `json:"@odata.nextLink"`
}

// Fetch returns the raw records for one report type over the given lookback
// period. Lookback days are clamped to the periods the API accepts. An
// empty batch is returned as an empty slice, not an error.
func (c *Client) Fetch(ctx context.Context, reportType string, periodDays int) ([]report.RawRecord, error) {
	path, ok := reportPaths[report.ReportType(reportType)]
	if !ok {
		path = reportType
	}

	url := fmt.Sprintf("%s/reports/%s(period='D%d')?$format=application/json",
		c.baseURL, path, ClampPeriod(periodDays))

	var records []report.RawRecord
	for url != "" {
		page, err := c.getPage(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", reportType, err)
		}
		records = append(records, page.Value...)
		url = page.NextLink
	}

	c.logger.Info("Report fetched",
		slog.String("report_type", reportType),
		slog.Int("record_count", len(records)))
	return records, nil
}

// getPage performs one authenticated GET, retrying once on 429.
func (c *Client) getPage(ctx context.Context, url string) (*responsePage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		delay := retryAfter(resp)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		c.logger.Warn("Reports API throttled, retrying once",
			slog.String("url", url),
			slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		resp, err = c.do(ctx, url)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("reports API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page responsePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode report payload: %w", err)
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	token, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{config.GraphScope},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.Token)
	req.Header.Set("Accept", "application/json")

	return c.http.Do(req)
}

// Close releases the idle connections held by the client's transport.
// Called on every exit path of a run.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// ClampPeriod maps an arbitrary lookback to the nearest period the reports
// API accepts, rounding up.
func ClampPeriod(days int) int {
	for _, p := range config.ValidLookbackDays {
		if days <= p {
			return p
		}
	}
	return config.ValidLookbackDays[len(config.ValidLookbackDays)-1]
}

// retryAfter reads the Retry-After header, defaulting to 10s.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 10 * time.Second
}
