// ABOUTME: Session middleware and client identity extraction
// ABOUTME: API routes get 401 JSON on auth failure, pages get a redirect

package web

import (
	"net"
	"net/http"
	"strings"

	"github.com/datalens/ecb-dashboard/internal/auth"
)

// requireSession wraps a handler to require a valid session. The token is
// validated with a sliding refresh, and the session snapshot is attached
// to the request context.
func (h *Handler) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := h.gate.CheckSession(sessionToken(r))
		if !ok {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				h.writeJSON(w, http.StatusUnauthorized, map[string]any{
					"success":  false,
					"error":    "Authentication required",
					"redirect": "/auth/login",
				})
				return
			}
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}

		next(w, r.WithContext(auth.WithSession(r.Context(), sess)))
	}
}

// sessionToken extracts the bearer token from the request. An explicit
// header wins over the cookie so API clients can override a stale one.
func sessionToken(r *http.Request) string {
	if token := r.Header.Get(SessionHeaderName); token != "" {
		return token
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// clientID identifies the caller for lockout tracking and session records.
// Behind a reverse proxy the first X-Forwarded-For entry is the client;
// otherwise the connection's remote address is used.
func clientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
