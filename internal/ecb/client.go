// ABOUTME: Rate-limited HTTP client for the ECB SDMX REST data API
// ABOUTME: Retries transient failures with backoff and supports an offline local-data mode

package ecb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/datalens/ecb-dashboard/internal/config"
)

const userAgent = "ecb-dashboard/1.0"

var (
	// ErrSeriesNotFound means the API has no data for the series key and
	// range. The ECB answers 404 both for unknown keys and for empty ranges.
	ErrSeriesNotFound = errors.New("series not found")

	// ErrRateLimited means the API rejected the request with 429.
	ErrRateLimited = errors.New("rate limited by ECB API")
)

// Client fetches SDMX-JSON series from the ECB data API. A token-bucket
// limiter keeps the request rate under the configured per-minute budget.
type Client struct {
	cfg     config.ECBConfig
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a client from the ecb configuration section.
func NewClient(cfg config.ECBConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	perMinute := cfg.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		logger:  logger.With("component", "ecb"),
	}
}

// FetchSeries retrieves one catalog series for the given inclusive period
// range. Bounds use API date format (YYYY-MM-DD); either may be empty to
// leave that side of the range open. In local-data mode the series is read
// from disk instead of the API.
func (c *Client) FetchSeries(ctx context.Context, spec config.SeriesSpec, start, end string) (*SeriesData, error) {
	if c.cfg.UseLocalData {
		return c.fetchLocal(spec)
	}

	raw, err := c.FetchRaw(ctx, spec, start, end)
	if err != nil {
		return nil, err
	}
	return parseDocument(raw, spec.FullKey())
}

// FetchRaw retrieves the SDMX-JSON document for a series without parsing it.
// The fetch subcommand uses this to populate the local data directory.
func (c *Client) FetchRaw(ctx context.Context, spec config.SeriesSpec, start, end string) ([]byte, error) {
	reqURL := c.buildURL(spec, start, end)

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.RetryDelay * (1 << (attempt - 1))
			c.logger.Debug("retrying ECB request", "series", spec.Name, "attempt", attempt+1, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limit: %w", err)
		}

		body, err := c.doRequest(ctx, reqURL, spec)
		if err == nil {
			return body, nil
		}
		// Missing series and rate-limit rejections will not improve with
		// another attempt.
		if errors.Is(err, ErrSeriesNotFound) || errors.Is(err, ErrRateLimited) {
			return nil, err
		}

		lastErr = err
		c.logger.Warn("ECB request failed", "series", spec.Name, "attempt", attempt+1, "error", err)
	}

	return nil, fmt.Errorf("fetching %s after %d attempts: %w", spec.FullKey(), c.cfg.MaxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, reqURL string, spec config.SeriesSpec) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("fetching ECB series", "series", spec.Name, "url", reqURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", spec.FullKey(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response for %s: %w", spec.FullKey(), err)
		}
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrSeriesNotFound, spec.FullKey())
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, spec.FullKey())
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d for %s: %s",
			resp.StatusCode, spec.FullKey(), strings.TrimSpace(string(snippet)))
	}
}

// buildURL assembles {base}/data/{resource}/{key}?format=jsondata with the
// optional period bounds.
func (c *Client) buildURL(spec config.SeriesSpec, start, end string) string {
	q := url.Values{}
	q.Set("format", "jsondata")
	if start != "" {
		q.Set("startPeriod", start)
	}
	if end != "" {
		q.Set("endPeriod", end)
	}
	base := strings.TrimSuffix(c.cfg.BaseURL, "/")
	return fmt.Sprintf("%s/data/%s/%s?%s", base, spec.Resource, spec.Key, q.Encode())
}

// fetchLocal reads a previously downloaded SDMX-JSON document for the
// series. The fetch subcommand writes one file per catalog name.
func (c *Client) fetchLocal(spec config.SeriesSpec) (*SeriesData, error) {
	path := filepath.Join(c.cfg.LocalDataDir, spec.Name+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no local data at %s", ErrSeriesNotFound, path)
		}
		return nil, fmt.Errorf("reading local data for %s: %w", spec.Name, err)
	}

	c.logger.Debug("loaded series from local data", "series", spec.Name, "path", path)
	return parseDocument(raw, spec.FullKey())
}
