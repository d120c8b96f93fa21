// ABOUTME: Tests for the server orchestrator lifecycle
// ABOUTME: Exercises the real unlock/lock flow over HTTP against a temp store

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/datalens/ecb-dashboard/internal/config"
	"github.com/datalens/ecb-dashboard/internal/web"
)

// testConfig creates a minimal config with an available port and a temp
// database path.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find available port: %v", err)
	}
	httpAddr := ln.Addr().String()
	ln.Close()

	return &config.Config{
		Server: config.ServerConfig{
			HTTPAddr: httpAddr,
		},
		Database: config.DatabaseConfig{
			Path: filepath.Join(t.TempDir(), "dashboard.db"),
		},
		Security: config.SecurityConfig{
			PINHash:         config.DefaultPINHash,
			MaxAttempts:     5,
			SessionTimeout:  30 * time.Minute,
			LockoutDuration: 15 * time.Minute,
		},
		ECB: config.ECBConfig{
			BaseURL:            "http://127.0.0.1:1", // never reached in these tests
			DefaultRangeMonths: 12,
			RateLimitPerMinute: 10,
			Timeout:            time.Second,
		},
	}
}

// testLogger creates a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServerNew(t *testing.T) {
	cfg := testConfig(t)

	srv, err := New(cfg, "test", testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer srv.gate.Close()

	if srv.gate == nil {
		t.Error("gate should not be nil")
	}
	if _, ok := srv.Data(); ok {
		t.Error("data service should be absent while the store is sealed")
	}
}

func TestServerRunAndShutdown(t *testing.T) {
	cfg := testConfig(t)

	srv, err := New(cfg, "test", testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() returned unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("server did not shut down in time")
	}
}

func TestHealthEndpoint(t *testing.T) {
	cfg := testConfig(t)

	srv, err := New(cfg, "1.2.3", testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx := t.Context()
	go func() {
		_ = srv.Run(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get("http://" + cfg.Server.HTTPAddr + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
	if body["version"] != "1.2.3" {
		t.Errorf("version = %v, want 1.2.3", body["version"])
	}
	if body["db_state"] != "no_store" {
		t.Errorf("db_state = %v, want no_store on a fresh path", body["db_state"])
	}
}

// TestLoginLifecycle walks the full store lifecycle over HTTP: first login
// creates the plaintext store, logout seals it, a second login decrypts it
// again.
func TestLoginLifecycle(t *testing.T) {
	cfg := testConfig(t)
	plainPath := cfg.Database.Path
	cipherPath := cfg.Database.Path + ".encrypted"

	srv, err := New(cfg, "test", testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx := t.Context()
	go func() {
		_ = srv.Run(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	base := "http://" + cfg.Server.HTTPAddr

	// First login: no store yet, one gets created unlocked.
	token := login(t, base)
	if _, ok := srv.Data(); !ok {
		t.Fatal("data service should be live after login")
	}
	if !fileExists(plainPath) {
		t.Error("plaintext store should exist after first login")
	}
	if fileExists(cipherPath) {
		t.Error("no ciphertext expected before the first logout")
	}

	// Logout seals the store.
	logout(t, base, token)
	if _, ok := srv.Data(); ok {
		t.Fatal("data service should be gone after logout")
	}
	if fileExists(plainPath) {
		t.Error("plaintext store should be removed on logout")
	}
	if !fileExists(cipherPath) {
		t.Error("ciphertext should exist after logout")
	}

	// Second login decrypts the sealed store.
	token = login(t, base)
	if !fileExists(plainPath) {
		t.Error("plaintext store should be restored on re-login")
	}
	logout(t, base, token)
}

func login(t *testing.T, base string) string {
	t.Helper()

	resp, err := http.Post(base+"/auth/validate", "application/json",
		bytes.NewReader([]byte(`{"pin":"112233"}`)))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Success      bool   `json:"success"`
		SessionToken string `json:"session_token"`
		Error        string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if !body.Success {
		t.Fatalf("login failed: %s", body.Error)
	}
	return body.SessionToken
}

func logout(t *testing.T, base string, token string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, base+"/auth/logout", nil)
	if err != nil {
		t.Fatalf("building logout request: %v", err)
	}
	req.Header.Set(web.SessionHeaderName, token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("logout request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
