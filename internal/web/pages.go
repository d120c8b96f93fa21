// ABOUTME: Session-gated page handlers for the dashboard UI
// ABOUTME: Indicator pages share one template parameterized per series

package web

import (
	"net/http"
)

// handleDashboardPage renders the main dashboard.
func (h *Handler) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w)
}

// handleExchangeRatesPage renders the dedicated EUR/USD page.
func (h *Handler) handleExchangeRatesPage(w http.ResponseWriter, r *http.Request) {
	h.renderSeriesPage(w, seriesPageData{
		Title:       "Exchange Rates",
		Heading:     "EUR/USD Exchange Rate",
		Description: "Daily euro foreign exchange reference rate against the US dollar.",
		APIPath:     "/api/exchange-rates",
		RefreshPath: "/api/refresh/exchange-rates",
		RangeParam:  "days",
		RangeValues: []int{30, 90, 180, 365, 1095},
		RangeLabels: []string{"30 days", "3 months", "6 months", "1 year", "3 years"},
	})
}

// handleInflationPage renders the dedicated HICP inflation page.
func (h *Handler) handleInflationPage(w http.ResponseWriter, r *http.Request) {
	h.renderSeriesPage(w, seriesPageData{
		Title:       "Inflation",
		Heading:     "Inflation Rate (HICP)",
		Description: "Euro area annual rate of change of the Harmonised Index of Consumer Prices.",
		APIPath:     "/api/inflation",
		RefreshPath: "/api/refresh/inflation",
		RangeParam:  "months",
		RangeValues: []int{12, 24, 60, 120},
		RangeLabels: []string{"1 year", "2 years", "5 years", "10 years"},
	})
}

// handleInterestRatesPage renders the dedicated policy rate page.
func (h *Handler) handleInterestRatesPage(w http.ResponseWriter, r *http.Request) {
	h.renderSeriesPage(w, seriesPageData{
		Title:       "Interest Rates",
		Heading:     "ECB Deposit Facility Rate",
		Description: "The rate banks receive for overnight deposits with the Eurosystem.",
		APIPath:     "/api/interest-rates",
		RefreshPath: "/api/refresh/interest-rates",
		RangeParam:  "days",
		RangeValues: []int{365, 1095, 1825, 3650},
		RangeLabels: []string{"1 year", "3 years", "5 years", "10 years"},
	})
}
