// ABOUTME: In-memory registry of authenticated session tokens
// ABOUTME: Sliding expiration refreshed on every successful validation

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// sweepInterval is how often the background sweep reaps expired sessions
// that no validation happened to touch.
const sweepInterval = 5 * time.Minute

// Session is a point-in-time snapshot of one authenticated session.
type Session struct {
	Token         string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	LastActivity  time.Time `json:"last_activity"`
	ClientID      string    `json:"client_ip"`
	Authenticated bool      `json:"authenticated"`
}

type sessionRecord struct {
	createdAt    time.Time
	lastActivity time.Time
	clientID     string
}

// Sessions is the in-memory registry of authenticated session tokens.
// Sessions are not persisted; a process restart logs everyone out.
type Sessions struct {
	mu      sync.RWMutex
	active  map[string]*sessionRecord
	timeout time.Duration
	cancel  context.CancelFunc
}

// NewSessions creates a registry with the given sliding timeout and starts
// the background sweep.
func NewSessions(timeout time.Duration) *Sessions {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sessions{
		active:  make(map[string]*sessionRecord),
		timeout: timeout,
		cancel:  cancel,
	}
	go s.sweepLoop(ctx)
	return s
}

// Close stops the background sweep.
func (s *Sessions) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Create mints an unguessable URL-safe token for clientID and records a new
// session under it.
func (s *Sessions) Create(clientID string) (string, error) {
	token, err := generateToken(32)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.active[token] = &sessionRecord{
		createdAt:    now,
		lastActivity: now,
		clientID:     clientID,
	}
	return token, nil
}

// Validate reports whether token belongs to a live session. A successful
// check refreshes the sliding window, so polling keeps a session alive; an
// expired session is destroyed on sight.
func (s *Sessions) Validate(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.active[token]
	if !ok {
		return false
	}
	if time.Since(rec.lastActivity) > s.timeout {
		delete(s.active, token)
		return false
	}
	rec.lastActivity = time.Now()
	return true
}

// Destroy removes the session for token. Returns false if the token was
// already absent; callers should not treat that as an error.
func (s *Sessions) Destroy(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[token]; !ok {
		return false
	}
	delete(s.active, token)
	return true
}

// Info returns a display snapshot of the session without refreshing its
// activity window.
func (s *Sessions) Info(token string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.active[token]
	if !ok {
		return Session{}, false
	}
	return Session{
		Token:         token,
		CreatedAt:     rec.createdAt,
		LastActivity:  rec.lastActivity,
		ClientID:      rec.clientID,
		Authenticated: true,
	}, true
}

// Count returns the number of live sessions.
func (s *Sessions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}

func (s *Sessions) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepExpired()
		}
	}
}

// SweepExpired destroys every session whose sliding window has lapsed and
// returns how many were removed. Validation already reaps expired sessions
// lazily; the sweep bounds memory for tokens nobody presents again.
func (s *Sessions) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, rec := range s.active {
		if time.Since(rec.lastActivity) > s.timeout {
			delete(s.active, token)
			removed++
		}
	}
	return removed
}

// generateToken returns a URL-safe token built from the given number of
// cryptographically random bytes.
func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
