// ABOUTME: Access gate composing lockout, PIN verification, vault and sessions
// ABOUTME: Collapses internal failures into four client-facing outcomes

package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/datalens/ecb-dashboard/internal/vault"
)

// Outcome classifies a login attempt for the client-facing layer.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeInvalidCredential
	OutcomeLockedOut
	OutcomeServiceError
)

// LoginResult is what the HTTP layer turns into a response. Message is
// always safe to show to the client; internal detail stays in the logs.
// RemainingLockout is nonzero only for OutcomeLockedOut.
type LoginResult struct {
	Outcome          Outcome
	Token            string
	Message          string
	RemainingLockout time.Duration
}

// Vault is the encrypted-store lifecycle the gate sequences around PIN
// validation.
type Vault interface {
	IsEncrypted() bool
	Decrypt(pin string) error
	RetainKey(pin string)
	Reseal() error
	Lock() error
	HasKey() bool
}

// Hooks let the composition root react to the store becoming readable or
// going away. Both must be idempotent; OnLock runs before the plaintext is
// removed so open handles can be flushed and closed.
type Hooks struct {
	OnUnlock func() error
	OnLock   func() error
}

// dummyPINHash is a valid bcrypt hash of a non-PIN string. A gate built
// with an empty hash compares against it, so the rejection takes the same
// bcrypt time as a real mismatch instead of revealing the misconfiguration.
// The format check keeps its preimage out of the candidate space.
const dummyPINHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Gate sequences the lockout tracker, PIN verifier, vault and session
// registry into the single entry point the HTTP layer talks to. Store
// transitions are serialized behind the gate's mutex; the expensive bcrypt
// comparison runs outside it.
type Gate struct {
	mu       sync.Mutex
	pinHash  string
	lockouts *LockoutTracker
	sessions *Sessions
	vault    Vault
	hooks    Hooks
	logger   *slog.Logger
}

// NewGate creates a Gate verifying candidates against pinHash.
func NewGate(pinHash string, lockouts *LockoutTracker, sessions *Sessions, v Vault, hooks Hooks, logger *slog.Logger) *Gate {
	if pinHash == "" {
		pinHash = dummyPINHash
	}
	return &Gate{
		pinHash:  pinHash,
		lockouts: lockouts,
		sessions: sessions,
		vault:    v,
		hooks:    hooks,
		logger:   logger.With("component", "gate"),
	}
}

// Login runs the full credential flow: lockout check, PIN format and hash
// verification, store unlock, service startup, session creation. A client
// locked out gets no hash comparison at all. Whether the hash mismatched or
// the store failed to decrypt is never revealed to the client.
func (g *Gate) Login(pin, clientID string) LoginResult {
	if g.lockouts.IsLockedOut(clientID) {
		remaining := g.lockouts.RemainingLockout(clientID)
		g.logger.Warn("login attempt from locked out client", "client", clientID)
		return LoginResult{
			Outcome:          OutcomeLockedOut,
			Message:          fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", int(remaining.Minutes())),
			RemainingLockout: remaining,
		}
	}

	if !ValidPINFormat(pin) {
		g.lockouts.RecordFailure(clientID)
		g.logger.Warn("malformed PIN submitted", "client", clientID)
		return LoginResult{
			Outcome: OutcomeInvalidCredential,
			Message: fmt.Sprintf("PIN must be exactly %d digits", PINLength),
		}
	}

	if !VerifyPIN(pin, g.pinHash) {
		count := g.lockouts.RecordFailure(clientID)
		if g.lockouts.IsLockedOut(clientID) {
			remaining := g.lockouts.RemainingLockout(clientID)
			g.logger.Warn("client locked out after repeated failures", "client", clientID, "failures", count)
			return LoginResult{
				Outcome:          OutcomeLockedOut,
				Message:          fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", int(remaining.Minutes())),
				RemainingLockout: remaining,
			}
		}
		left := g.lockouts.MaxAttempts() - count
		g.logger.Warn("failed PIN validation", "client", clientID, "attempts_left", left)
		return LoginResult{
			Outcome: OutcomeInvalidCredential,
			Message: fmt.Sprintf("Invalid PIN. %d attempts remaining.", left),
		}
	}

	g.lockouts.ClearSuccess(clientID)

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.vault.HasKey() {
		if g.vault.IsEncrypted() {
			if err := g.vault.Decrypt(pin); err != nil {
				g.logger.Error("store decryption failed", "error", err)
				if errors.Is(err, vault.ErrCannotDecrypt) || errors.Is(err, vault.ErrInvalidStore) {
					return LoginResult{
						Outcome: OutcomeInvalidCredential,
						Message: "Invalid PIN - cannot access secure data",
					}
				}
				return LoginResult{
					Outcome: OutcomeServiceError,
					Message: "Authentication error occurred",
				}
			}
		} else {
			// Store was never encrypted; hold the key so logout can seal it.
			g.vault.RetainKey(pin)
		}
	}

	if g.hooks.OnUnlock != nil {
		if err := g.hooks.OnUnlock(); err != nil {
			g.logger.Error("service startup after unlock failed", "error", err)
			g.sealAndLock()
			return LoginResult{
				Outcome: OutcomeServiceError,
				Message: "Failed to initialize application services",
			}
		}
	}

	token, err := g.sessions.Create(clientID)
	if err != nil {
		g.logger.Error("session creation failed", "error", err)
		return LoginResult{
			Outcome: OutcomeServiceError,
			Message: "Authentication error occurred",
		}
	}

	g.logger.Info("successful authentication", "client", clientID)
	return LoginResult{
		Outcome: OutcomeSuccess,
		Token:   token,
		Message: "Authentication successful",
	}
}

// CheckSession validates a bearer token, refreshing its sliding window, and
// returns a display snapshot on success.
func (g *Gate) CheckSession(token string) (Session, bool) {
	if token == "" || !g.sessions.Validate(token) {
		return Session{}, false
	}
	return g.sessions.Info(token)
}

// ActiveSessions reports how many sessions are currently live.
func (g *Gate) ActiveSessions() int {
	return g.sessions.Count()
}

// Logout destroys the session and seals the store. The session is removed
// even when sealing fails; the client is logged out either way.
func (g *Gate) Logout(token string) {
	g.sessions.Destroy(token)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hooks.OnLock != nil {
		if err := g.hooks.OnLock(); err != nil {
			g.logger.Error("service shutdown before lock failed", "error", err)
		}
	}
	g.sealAndLock()
	g.logger.Info("user logged out")
}

// Close seals the store and stops session maintenance. Called once at
// process shutdown.
func (g *Gate) Close() {
	g.mu.Lock()
	if g.hooks.OnLock != nil {
		if err := g.hooks.OnLock(); err != nil {
			g.logger.Error("service shutdown before lock failed", "error", err)
		}
	}
	g.sealAndLock()
	g.mu.Unlock()

	g.sessions.Close()
}

// sealAndLock re-wraps the plaintext store with the retained key, then
// removes the plaintext. Without a retained key this process never unlocked
// anything, so nothing is sealed and nothing is deleted: removing the only
// copy of a never-encrypted database is not a lock, it is data loss. If the
// reseal fails, the plaintext stays too.
func (g *Gate) sealAndLock() {
	if !g.vault.HasKey() {
		return
	}
	if err := g.vault.Reseal(); err != nil {
		g.logger.Error("resealing store failed, leaving plaintext in place", "error", err)
		return
	}
	if err := g.vault.Lock(); err != nil {
		g.logger.Error("locking store failed", "error", err)
	}
}
