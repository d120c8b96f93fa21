// ABOUTME: Authentication route handlers for PIN login and logout
// ABOUTME: Sets the session cookie and mirrors the token in the JSON body

package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/datalens/ecb-dashboard/internal/auth"
)

// validateResponse is the body of POST /auth/validate. On success the
// token rides in both the cookie and the body so non-browser clients can
// use the X-Session-Token header instead.
type validateResponse struct {
	Success          bool   `json:"success"`
	SessionToken     string `json:"session_token,omitempty"`
	Message          string `json:"message,omitempty"`
	Error            string `json:"error,omitempty"`
	LockedOut        bool   `json:"locked_out,omitempty"`
	RemainingMinutes int    `json:"remaining_minutes,omitempty"`
}

// handleLoginPage renders the PIN entry page.
func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go straight to the dashboard
	if _, ok := h.gate.CheckSession(sessionToken(r)); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.renderLoginPage(w)
}

// handleValidate checks the submitted PIN and creates a session. The
// request body can be a form post or JSON {"pin": "..."}.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	pin, err := parsePIN(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, validateResponse{
			Error: "Invalid request body",
		})
		return
	}

	result := h.gate.Login(pin, clientID(r))

	switch result.Outcome {
	case auth.OutcomeSuccess:
		h.setSessionCookie(w, r, result.Token)
		h.writeJSON(w, http.StatusOK, validateResponse{
			Success:      true,
			SessionToken: result.Token,
			Message:      result.Message,
		})

	case auth.OutcomeLockedOut:
		h.writeJSON(w, http.StatusUnauthorized, validateResponse{
			Error:            result.Message,
			LockedOut:        true,
			RemainingMinutes: int(result.RemainingLockout.Minutes()),
		})

	case auth.OutcomeInvalidCredential:
		h.writeJSON(w, http.StatusUnauthorized, validateResponse{
			Error: result.Message,
		})

	default:
		h.writeJSON(w, http.StatusInternalServerError, validateResponse{
			Error: result.Message,
		})
	}
}

// handleCheckSession reports whether the presented token is still valid.
func (h *Handler) handleCheckSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.gate.CheckSession(sessionToken(r))
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]any{"valid": false})
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Valid   bool         `json:"valid"`
		Session auth.Session `json:"session"`
	}{
		Valid:   true,
		Session: sess,
	})
}

// handleLogout destroys the session and seals the store.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		h.gate.Logout(token)
	}

	// Clear session cookie
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

// setSessionCookie attaches the session token to the browser.
func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// parsePIN reads the PIN from a JSON body or a form post.
func parsePIN(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			PIN string `json:"pin"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", err
		}
		return strings.TrimSpace(body.PIN), nil
	}

	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.FormValue("pin")), nil
}
