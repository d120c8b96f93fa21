// ABOUTME: Template rendering functions for the dashboard UI
// ABOUTME: Loads templates from embedded filesystem and renders them

package web

import (
	"html/template"
	"net/http"
)

// Template data types
type loginPageData struct {
	Title     string
	PINLength int
}

type dashboardPageData struct {
	Title string
}

type seriesPageData struct {
	Title       string
	Heading     string
	Description string
	APIPath     string
	RefreshPath string
	RangeParam  string
	RangeValues []int
	RangeLabels []string
}

type helpPageData struct {
	Title   string
	Topics  []helpTopic
	Content template.HTML
}

type errorPageData struct {
	Title string
	Error string
}

// renderLoginPage renders the PIN entry page.
func (h *Handler) renderLoginPage(w http.ResponseWriter) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/login.html"))

	data := loginPageData{
		Title:     "Unlock",
		PINLength: 6,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render login page", "error", err)
	}
}

// renderDashboard renders the main dashboard page.
func (h *Handler) renderDashboard(w http.ResponseWriter) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/dashboard.html"))

	data := dashboardPageData{
		Title: "Dashboard",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
	}
}

// renderSeriesPage renders one indicator page.
func (h *Handler) renderSeriesPage(w http.ResponseWriter, data seriesPageData) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/series.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render series page", "page", data.Title, "error", err)
	}
}

// renderHelpPage renders the help page with converted markdown content.
func (h *Handler) renderHelpPage(w http.ResponseWriter, data helpPageData) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/help.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render help page", "error", err)
	}
}

// renderErrorPage renders the error page with the given status.
func (h *Handler) renderErrorPage(w http.ResponseWriter, status int, message string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/error.html"))

	data := errorPageData{
		Title: "Error",
		Error: message,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render error page", "error", err)
	}
}
