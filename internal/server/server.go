// ABOUTME: Server orchestrator wiring vault, gate, data services, and HTTP
// ABOUTME: Manages lazy store startup on unlock and graceful shutdown

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/datalens/ecb-dashboard/internal/auth"
	"github.com/datalens/ecb-dashboard/internal/config"
	"github.com/datalens/ecb-dashboard/internal/data"
	"github.com/datalens/ecb-dashboard/internal/ecb"
	"github.com/datalens/ecb-dashboard/internal/store"
	"github.com/datalens/ecb-dashboard/internal/vault"
	"github.com/datalens/ecb-dashboard/internal/web"
)

// Server owns the dashboard process: the vault holding the encrypted
// store, the gate in front of it, and the HTTP stack. The SQLite store and
// data service only exist while the vault is unlocked; the gate's hooks
// open and close them around the encryption lifecycle.
type Server struct {
	config      *config.Config
	vault       *vault.Vault
	gate        *auth.Gate
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger

	mu      sync.RWMutex
	store   *store.SQLiteStore
	dataSvc *data.Service
}

// New creates a Server from the given configuration. The store is not
// opened here; it stays sealed until the first successful login.
func New(cfg *config.Config, version string, logger *slog.Logger) (*Server, error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	v := vault.New(cfg.Database.Path, logger)
	if err := v.CleanupBackup(); err != nil {
		logger.Warn("removing leftover backup failed", "error", err)
	}

	srv := &Server{
		config: cfg,
		vault:  v,
		logger: logger.With("component", "server"),
	}

	sessions := auth.NewSessions(cfg.Security.SessionTimeout)
	lockouts := auth.NewLockoutTracker(cfg.Security.MaxAttempts, cfg.Security.LockoutDuration)
	srv.gate = auth.NewGate(cfg.Security.PINHash, lockouts, sessions, v, auth.Hooks{
		OnUnlock: srv.startServices,
		OnLock:   srv.stopServices,
	}, logger)

	handler := web.New(srv.gate, srv, v, web.Config{Version: version}, logger)
	mux := http.NewServeMux()
	handler.Routes(mux)

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server configured", "db_state", v.State().String(), "addr", cfg.Server.HTTPAddr)
	return srv, nil
}

// Data returns the live data service, or false while the store is sealed.
func (s *Server) Data() (*data.Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataSvc, s.dataSvc != nil
}

// startServices opens the plaintext store and builds the data service on
// top of it. Runs under the gate's lock after a successful unlock.
func (s *Server) startServices() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataSvc != nil {
		return nil
	}

	st, err := store.NewSQLiteStore(s.config.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	client := ecb.NewClient(s.config.ECB, s.logger)
	s.store = st
	s.dataSvc = data.New(st, client, s.vault, s.config.ECB, s.logger)

	s.logger.Info("data services started")
	return nil
}

// stopServices checkpoints and closes the store before the vault removes
// the plaintext. Runs under the gate's lock on logout and shutdown.
func (s *Server) stopServices() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Checkpoint(ctx); err != nil {
		s.logger.Warn("checkpoint before lock failed", "error", err)
	}

	err := s.store.Close()
	s.store = nil
	s.dataSvc = nil
	if err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	s.logger.Info("data services stopped")
	return nil
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if serving fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := s.startServer(ln)
	serverErr := s.waitForShutdownSignal(ctx, errCh)

	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// setupListener creates the listener based on configuration (Tailscale or TCP).
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled",
				"http_addr", s.config.Server.HTTPAddr)
		}
		return s.setupTailscaleListener(ctx)
	}

	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

func (s *Server) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (s *Server) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is
// already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "ecb-dashboard", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable (get one at https://login.tailscale.com/admin/settings/keys)")
	}
	return authKey, nil
}

// setupTailscaleListener brings up a tsnet node and returns the HTTP listener.
func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	s.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	s.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := s.tsnetServer.Up(ctx)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}

	s.logTailscaleStatus(tsCfg.Hostname, status)
	return s.createTailscaleListener(tsCfg)
}

// logTailscaleStatus logs info about the tailscale node status.
func (s *Server) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		s.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	s.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// createTailscaleListener creates the appropriate listener based on config.
func (s *Server) createTailscaleListener(tsCfg config.TailscaleConfig) (net.Listener, error) {
	switch {
	case tsCfg.Funnel:
		s.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := s.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale funnel port: %w", err)
		}
		return ln, nil
	case tsCfg.HTTPS:
		return s.createTailscaleTLSListener()
	default:
		ln, err := s.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}
}

// createTailscaleTLSListener creates a TLS listener using Tailscale's auto-provisioned certs.
func (s *Server) createTailscaleTLSListener() (net.Listener, error) {
	s.logger.Info("enabling HTTPS with Tailscale certs on :443")
	ln, err := s.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
	}
	lc, err := s.tsnetServer.LocalClient()
	if err != nil {
		_ = ln.Close()
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("getting tailscale local client: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		GetCertificate: lc.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}), nil
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server, seals the store, and releases the
// tailscale node. The gate's Close runs the lock hook, so the store is
// checkpointed and closed before the vault re-encrypts it.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))

	s.gate.Close()

	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
