// ABOUTME: JSON API handlers for chart data, refresh triggers, and health
// ABOUTME: Chart endpoints return view models the page scripts render with Plotly

package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/datalens/ecb-dashboard/internal/charts"
	"github.com/datalens/ecb-dashboard/internal/config"
	"github.com/datalens/ecb-dashboard/internal/data"
	"github.com/datalens/ecb-dashboard/internal/store"
)

// refreshCategories maps URL path segments to catalog categories.
var refreshCategories = map[string]string{
	"exchange-rates": config.CategoryExchangeRate,
	"inflation":      config.CategoryInflation,
	"interest-rates": config.CategoryInterestRate,
}

// seriesResponse is the body of the per-indicator chart endpoints.
type seriesResponse struct {
	Success         bool          `json:"success"`
	Chart           *charts.Chart `json:"chart,omitempty"`
	LatestRate      *float64      `json:"latest_rate,omitempty"`
	TargetDeviation *float64      `json:"target_deviation,omitempty"`
	DataPoints      int           `json:"data_points,omitempty"`
	LastUpdated     *time.Time    `json:"last_updated,omitempty"`
	SeriesTitle     string        `json:"series_title,omitempty"`
	Unit            string        `json:"unit,omitempty"`
	Error           string        `json:"error,omitempty"`
	Message         string        `json:"message,omitempty"`
}

// handleAPIDashboard returns the summary tiles plus the overview chart.
func (h *Handler) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.source.Data()
	if !ok {
		h.serviceUnavailable(w)
		return
	}

	dash, err := svc.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard assembly failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to load dashboard data",
		})
		return
	}

	// Window errors leave their panel blank rather than failing the page.
	exchange, _ := svc.ExchangeRates(r.Context(), 0)
	inflation, _ := svc.Inflation(r.Context(), 0)
	interest, _ := svc.InterestRates(r.Context(), 0)

	h.writeJSON(w, http.StatusOK, struct {
		Success   bool                  `json:"success"`
		Dashboard *data.DashboardData   `json:"dashboard"`
		Chart     *charts.OverviewChart `json:"chart"`
		Timestamp time.Time             `json:"timestamp"`
	}{
		Success:   true,
		Dashboard: dash,
		Chart:     charts.Overview(exchange, inflation, interest),
		Timestamp: time.Now().UTC(),
	})
}

// handleAPIExchangeRates returns the EUR/USD chart for the trailing days
// (query days=N, default 365).
func (h *Handler) handleAPIExchangeRates(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.source.Data()
	if !ok {
		h.serviceUnavailable(w)
		return
	}

	window, err := svc.ExchangeRates(r.Context(), intQuery(r, "days"))
	if err != nil {
		h.seriesError(w, err, "No exchange rate data available", "Exchange rates API error")
		return
	}

	h.writeSeries(w, window, charts.ExchangeRate(window), "No exchange rate data available", "EUR per USD", nil)
}

// handleAPIInflation returns the HICP chart for the trailing months
// (query months=N, default from config).
func (h *Handler) handleAPIInflation(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.source.Data()
	if !ok {
		h.serviceUnavailable(w)
		return
	}

	window, err := svc.Inflation(r.Context(), intQuery(r, "months"))
	if err != nil {
		h.seriesError(w, err, "No inflation data available", "Inflation API error")
		return
	}

	var deviation *float64
	if latest := window.Latest(); latest != nil {
		d := latest.Value - data.InflationTarget
		deviation = &d
	}

	h.writeSeries(w, window, charts.Inflation(window), "No inflation data available", "Percent", deviation)
}

// handleAPIInterestRates returns the policy rate chart for the trailing
// days (query days=N, default 365).
func (h *Handler) handleAPIInterestRates(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.source.Data()
	if !ok {
		h.serviceUnavailable(w)
		return
	}

	window, err := svc.InterestRates(r.Context(), intQuery(r, "days"))
	if err != nil {
		h.seriesError(w, err, "No interest rate data available", "Interest rates API error")
		return
	}

	h.writeSeries(w, window, charts.InterestRate(window), "No interest rate data available", "Percent", nil)
}

// handleAPIRefresh refreshes every series in one category.
func (h *Handler) handleAPIRefresh(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.source.Data()
	if !ok {
		h.serviceUnavailable(w)
		return
	}

	pathCategory := r.PathValue("category")
	category, ok := refreshCategories[pathCategory]
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":     false,
			"error":       "Invalid data type: " + pathCategory,
			"valid_types": []string{"exchange-rates", "inflation", "interest-rates"},
		})
		return
	}

	h.logger.Info("refreshing category", "category", category)
	result, err := svc.Refresh(r.Context(), category, true)
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Data refresh failed",
		})
		return
	}

	if result.Failed > 0 {
		h.writeJSON(w, http.StatusOK, map[string]any{
			"success":   false,
			"error":     firstError(result),
			"results":   result.Results,
			"timestamp": time.Now().UTC(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"message":            pathCategory + " data refreshed successfully",
		"observations_count": totalFetched(result),
		"timestamp":          time.Now().UTC(),
	})
}

// handleAPIRefreshAll refreshes every dashboard series.
func (h *Handler) handleAPIRefreshAll(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.source.Data()
	if !ok {
		h.serviceUnavailable(w)
		return
	}

	h.logger.Info("refreshing all dashboard series")
	result := svc.RefreshAll(r.Context(), true)

	h.writeJSON(w, http.StatusOK, struct {
		Success         bool                `json:"success"`
		TotalSeries     int                 `json:"total_series"`
		Successful      int                 `json:"successful"`
		Failed          int                 `json:"failed"`
		DurationSeconds float64             `json:"duration_seconds"`
		Results         []data.SeriesResult `json:"results"`
		Timestamp       time.Time           `json:"timestamp"`
	}{
		Success:         result.Successful > 0,
		TotalSeries:     result.Total,
		Successful:      result.Successful,
		Failed:          result.Failed,
		DurationSeconds: result.Duration().Seconds(),
		Results:         result.Results,
		Timestamp:       time.Now().UTC(),
	})
}

// handleHealth reports liveness without requiring a session.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, struct {
		Status         string    `json:"status"`
		Application    string    `json:"application"`
		Version        string    `json:"version"`
		DBState        string    `json:"db_state"`
		ActiveSessions int       `json:"active_sessions"`
		Timestamp      time.Time `json:"timestamp"`
	}{
		Status:         "healthy",
		Application:    "ecb-dashboard",
		Version:        h.config.Version,
		DBState:        h.status.State().String(),
		ActiveSessions: h.gate.ActiveSessions(),
		Timestamp:      time.Now().UTC(),
	})
}

// writeSeries sends the standard chart response for a windowed read.
func (h *Handler) writeSeries(w http.ResponseWriter, window *data.SeriesWindow, chart *charts.Chart, noData, unitFallback string, deviation *float64) {
	latest := window.Latest()
	if latest == nil {
		h.writeJSON(w, http.StatusOK, seriesResponse{
			Error:   noData,
			Message: "Try refreshing the data first",
		})
		return
	}

	unit := window.Series.Unit
	if unit == "" {
		unit = unitFallback
	}

	h.writeJSON(w, http.StatusOK, seriesResponse{
		Success:         true,
		Chart:           chart,
		LatestRate:      &latest.Value,
		TargetDeviation: deviation,
		DataPoints:      len(window.Observations),
		LastUpdated:     &window.Series.LastUpdated,
		SeriesTitle:     window.Series.Name,
		Unit:            unit,
	})
}

// seriesError distinguishes a never-fetched series from a real failure.
func (h *Handler) seriesError(w http.ResponseWriter, err error, noData, logMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		h.writeJSON(w, http.StatusOK, seriesResponse{
			Error:   noData,
			Message: "Try refreshing the data first",
		})
		return
	}

	h.logger.Error(logMsg, "error", err)
	h.writeJSON(w, http.StatusInternalServerError, seriesResponse{
		Error: logMsg,
	})
}

// serviceUnavailable is returned when an API is hit while the store is
// sealed. The session middleware makes this unreachable in practice, but
// the store can also fail to open.
func (h *Handler) serviceUnavailable(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error": "Services not initialized",
	})
}

func intQuery(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

func totalFetched(result *data.RefreshResult) int {
	total := 0
	for _, r := range result.Results {
		total += r.Fetched
	}
	return total
}

func firstError(result *data.RefreshResult) string {
	for _, r := range result.Results {
		if !r.Success && r.Error != "" {
			return r.Error
		}
	}
	return "Data refresh failed"
}
