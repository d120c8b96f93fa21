// ABOUTME: Web UI package for the ECB financial dashboard
// ABOUTME: Provides PIN authentication routes, gated pages, and the JSON API

package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/datalens/ecb-dashboard/internal/auth"
	"github.com/datalens/ecb-dashboard/internal/data"
	"github.com/datalens/ecb-dashboard/internal/vault"
)

const (
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "ecb_dashboard_session"

	// SessionHeaderName is the header API clients can send instead of the
	// cookie.
	SessionHeaderName = "X-Session-Token"
)

// DataSource yields the live data service. It reports false while the
// store is sealed; the composition root swaps the service in after a
// successful login and out again on logout.
type DataSource interface {
	Data() (*data.Service, bool)
}

// StoreStatus reports the at-rest state of the database for the health
// endpoint.
type StoreStatus interface {
	State() vault.State
}

// Config holds web handler configuration.
type Config struct {
	// Version is reported by the health endpoint.
	Version string
}

// Handler serves the dashboard UI and API.
type Handler struct {
	gate   *auth.Gate
	source DataSource
	status StoreStatus
	config Config
	logger *slog.Logger
}

// New creates a web handler around the access gate and data source.
func New(gate *auth.Gate, source DataSource, status StoreStatus, cfg Config, logger *slog.Logger) *Handler {
	return &Handler{
		gate:   gate,
		source: source,
		status: status,
		config: cfg,
		logger: logger.With("component", "web"),
	}
}

// Routes registers all dashboard routes on the given mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	// Public routes (no session required)
	mux.HandleFunc("GET /auth/login", h.handleLoginPage)
	mux.HandleFunc("POST /auth/validate", h.handleValidate)
	mux.HandleFunc("GET /auth/check-session", h.handleCheckSession)
	mux.HandleFunc("POST /auth/logout", h.handleLogout)
	mux.HandleFunc("GET /health", h.handleHealth)

	// Protected pages
	mux.HandleFunc("GET /{$}", h.requireSession(h.handleDashboardPage))
	mux.HandleFunc("GET /exchange-rates", h.requireSession(h.handleExchangeRatesPage))
	mux.HandleFunc("GET /inflation", h.requireSession(h.handleInflationPage))
	mux.HandleFunc("GET /interest-rates", h.requireSession(h.handleInterestRatesPage))
	mux.HandleFunc("GET /help", h.requireSession(h.handleHelpPage))

	// Protected JSON API
	mux.HandleFunc("GET /api/dashboard", h.requireSession(h.handleAPIDashboard))
	mux.HandleFunc("GET /api/exchange-rates", h.requireSession(h.handleAPIExchangeRates))
	mux.HandleFunc("GET /api/inflation", h.requireSession(h.handleAPIInflation))
	mux.HandleFunc("GET /api/interest-rates", h.requireSession(h.handleAPIInterestRates))
	mux.HandleFunc("POST /api/refresh/{category}", h.requireSession(h.handleAPIRefresh))
	mux.HandleFunc("POST /api/refresh-all", h.requireSession(h.handleAPIRefreshAll))

	// Everything else renders the error page
	mux.HandleFunc("/", h.handleNotFound)

	h.logger.Info("dashboard routes registered")
}

// writeJSON encodes v as the response body with the given status.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("failed to encode response", "error", err)
	}
}

// handleNotFound renders the error page for unmatched paths.
func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.renderErrorPage(w, http.StatusNotFound, "Page not found")
}
