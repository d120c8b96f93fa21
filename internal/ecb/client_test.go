// ABOUTME: Tests for the ECB API client
// ABOUTME: Covers request shape, retry behavior, error mapping, and local-data mode

package ecb

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalens/ecb-dashboard/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClientConfig keeps retries fast and the limiter effectively open so
// tests never sleep on the token bucket.
func testClientConfig(baseURL string) config.ECBConfig {
	return config.ECBConfig{
		BaseURL:            baseURL,
		MaxRetries:         3,
		RateLimitPerMinute: 1_000_000,
		Timeout:            5 * time.Second,
		RetryDelay:         time.Millisecond,
	}
}

func eurUSDSpec(t *testing.T) config.SeriesSpec {
	t.Helper()
	spec, ok := config.FindSeries("EUR_USD_DAILY")
	require.True(t, ok, "EUR_USD_DAILY missing from catalog")
	return spec
}

func TestFetchSeries_Success(t *testing.T) {
	var gotPath, gotQuery, gotAccept, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sdmxFixture))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), testLogger())
	data, err := client.FetchSeries(context.Background(), eurUSDSpec(t), "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	assert.Equal(t, "/data/EXR/D.USD.EUR.SP00.A", gotPath)
	assert.Equal(t, "endPeriod=2024-01-31&format=jsondata&startPeriod=2024-01-01", gotQuery)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "ecb-dashboard/1.0", gotAgent)

	assert.Equal(t, "EXR.D.USD.EUR.SP00.A", data.SeriesKey)
	assert.Equal(t, "US dollar/Euro", data.Title)
	assert.Len(t, data.Observations, 3)
}

func TestFetchSeries_NotFoundDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no results found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), testLogger())
	_, err := client.FetchSeries(context.Background(), eurUSDSpec(t), "", "")

	require.ErrorIs(t, err, ErrSeriesNotFound)
	assert.Contains(t, err.Error(), "EXR.D.USD.EUR.SP00.A")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchSeries_RateLimitedDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), testLogger())
	_, err := client.FetchSeries(context.Background(), eurUSDSpec(t), "", "")

	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchSeries_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sdmxFixture))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), testLogger())
	data, err := client.FetchSeries(context.Background(), eurUSDSpec(t), "", "")

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, data.Observations, 3)
}

func TestFetchSeries_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "try later", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), testLogger())
	_, err := client.FetchSeries(context.Background(), eurUSDSpec(t), "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Contains(t, err.Error(), "unexpected status 503")
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchSeries_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testClientConfig(srv.URL)
	cfg.RetryDelay = time.Minute // cancellation must win over the backoff sleep

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	client := NewClient(cfg, testLogger())
	_, err := client.FetchSeries(ctx, eurUSDSpec(t), "", "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetchSeries_LocalData(t *testing.T) {
	dir := t.TempDir()
	spec := eurUSDSpec(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, spec.Name+".json"), []byte(sdmxFixture), 0o644))

	cfg := testClientConfig("http://unreachable.invalid")
	cfg.UseLocalData = true
	cfg.LocalDataDir = dir

	client := NewClient(cfg, testLogger())
	data, err := client.FetchSeries(context.Background(), spec, "", "")

	require.NoError(t, err)
	assert.Equal(t, "EXR.D.USD.EUR.SP00.A", data.SeriesKey)
	assert.Len(t, data.Observations, 3)
}

func TestFetchSeries_LocalDataMissing(t *testing.T) {
	cfg := testClientConfig("http://unreachable.invalid")
	cfg.UseLocalData = true
	cfg.LocalDataDir = t.TempDir()

	client := NewClient(cfg, testLogger())
	_, err := client.FetchSeries(context.Background(), eurUSDSpec(t), "", "")

	require.ErrorIs(t, err, ErrSeriesNotFound)
}

func TestFetchRaw_ReturnsBodyVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sdmxFixture))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL), testLogger())
	raw, err := client.FetchRaw(context.Background(), eurUSDSpec(t), "", "")

	require.NoError(t, err)
	assert.Equal(t, sdmxFixture, string(raw))
}

func TestBuildURL(t *testing.T) {
	client := NewClient(testClientConfig("https://data-api.ecb.europa.eu/service/"), testLogger())
	spec := eurUSDSpec(t)

	tests := []struct {
		name  string
		start string
		end   string
		want  string
	}{
		{
			name:  "both bounds",
			start: "2024-01-01",
			end:   "2024-06-30",
			want:  "https://data-api.ecb.europa.eu/service/data/EXR/D.USD.EUR.SP00.A?endPeriod=2024-06-30&format=jsondata&startPeriod=2024-01-01",
		},
		{
			name:  "start only",
			start: "2024-01-01",
			want:  "https://data-api.ecb.europa.eu/service/data/EXR/D.USD.EUR.SP00.A?format=jsondata&startPeriod=2024-01-01",
		},
		{
			name: "open range",
			want: "https://data-api.ecb.europa.eu/service/data/EXR/D.USD.EUR.SP00.A?format=jsondata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.buildURL(spec, tt.start, tt.end))
		})
	}
}
