// ABOUTME: Tests for the session middleware and client identity extraction
// ABOUTME: Covers token precedence, API vs page failure modes, and proxies

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datalens/ecb-dashboard/internal/auth"
)

func TestClientID_RemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:54321"

	if got := clientID(r); got != "192.0.2.7" {
		t.Errorf("clientID = %q, want 192.0.2.7", got)
	}
}

func TestClientID_RemoteAddrWithoutPort(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7"

	if got := clientID(r); got != "192.0.2.7" {
		t.Errorf("clientID = %q, want 192.0.2.7", got)
	}
}

func TestClientID_ForwardedFor(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"single value", "203.0.113.9", "203.0.113.9"},
		{"proxy chain keeps first", "203.0.113.9, 10.0.0.1, 10.0.0.2", "203.0.113.9"},
		{"spaces trimmed", "  203.0.113.9 , 10.0.0.1", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = "10.0.0.1:9999"
			r.Header.Set("X-Forwarded-For", tt.header)

			if got := clientID(r); got != tt.want {
				t.Errorf("clientID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionToken_HeaderWinsOverCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(SessionHeaderName, "header-token")
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})

	if got := sessionToken(r); got != "header-token" {
		t.Errorf("sessionToken = %q, want header-token", got)
	}
}

func TestSessionToken_CookieFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})

	if got := sessionToken(r); got != "cookie-token" {
		t.Errorf("sessionToken = %q, want cookie-token", got)
	}
}

func TestSessionToken_Missing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	if got := sessionToken(r); got != "" {
		t.Errorf("sessionToken = %q, want empty", got)
	}
}

func TestRequireSession_APIGets401JSON(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/api/dashboard", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["error"] != "Authentication required" {
		t.Errorf("error = %v", body["error"])
	}
	if body["redirect"] != "/auth/login" {
		t.Errorf("redirect = %v", body["redirect"])
	}
}

func TestRequireSession_AttachesSessionToContext(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	var captured auth.Session
	var ok bool
	wrapped := env.handler.requireSession(func(w http.ResponseWriter, r *http.Request) {
		captured, ok = auth.SessionFromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(SessionHeaderName, token)
	wrapped(httptest.NewRecorder(), r)

	if !ok {
		t.Fatal("session should be attached to the request context")
	}
	if captured.ClientID != "192.0.2.1" {
		t.Errorf("ClientID = %q", captured.ClientID)
	}
}

func TestRequireSession_RefreshesSlidingWindow(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	before, ok := env.sessions.Info(token)
	if !ok {
		t.Fatal("session should exist")
	}

	env.get("/", token)

	after, ok := env.sessions.Info(token)
	if !ok {
		t.Fatal("session should still exist")
	}
	if after.LastActivity.Before(before.LastActivity) {
		t.Error("request should refresh last activity")
	}
}
