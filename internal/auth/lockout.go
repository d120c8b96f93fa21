// ABOUTME: Per-client failed-attempt tracking with time-boxed lockout
// ABOUTME: Records self-expire when checked after the lockout window elapses

package auth

import (
	"sync"
	"time"
)

// lockoutRecord tracks failed PIN attempts from one client.
type lockoutRecord struct {
	count        int
	firstAttempt time.Time
	lastAttempt  time.Time
	lockedUntil  time.Time // zero until count reaches the threshold
}

// LockoutTracker counts failed PIN attempts per client identifier and locks
// a client out once the threshold is reached. Lockout is keyed purely by
// client identity, not by attempt content, so it throttles brute-force
// guessing from one source. State lives in memory only; a restart resets it.
type LockoutTracker struct {
	mu          sync.Mutex
	attempts    map[string]*lockoutRecord
	maxAttempts int
	duration    time.Duration
}

// NewLockoutTracker creates a tracker that locks a client out for duration
// after maxAttempts consecutive failures.
func NewLockoutTracker(maxAttempts int, duration time.Duration) *LockoutTracker {
	return &LockoutTracker{
		attempts:    make(map[string]*lockoutRecord),
		maxAttempts: maxAttempts,
		duration:    duration,
	}
}

// IsLockedOut reports whether clientID is currently locked out. An expired
// lockout record is deleted on sight, so records self-expire without a
// background sweep.
func (t *LockoutTracker) IsLockedOut(clientID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.attempts[clientID]
	if !ok || rec.lockedUntil.IsZero() {
		return false
	}
	if time.Now().After(rec.lockedUntil) {
		delete(t.attempts, clientID)
		return false
	}
	return true
}

// RemainingLockout returns how much lockout time clientID has left, or zero
// when the client is not locked out.
func (t *LockoutTracker) RemainingLockout(clientID string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.attempts[clientID]
	if !ok || rec.lockedUntil.IsZero() {
		return 0
	}
	remaining := time.Until(rec.lockedUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordFailure counts one failed attempt for clientID and returns the
// updated count. The attempt that reaches the threshold starts the lockout
// clock.
func (t *LockoutTracker) RecordFailure(clientID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.attempts[clientID]
	if !ok {
		rec = &lockoutRecord{firstAttempt: time.Now()}
		t.attempts[clientID] = rec
	}
	rec.count++
	rec.lastAttempt = time.Now()

	if rec.count >= t.maxAttempts && rec.lockedUntil.IsZero() {
		rec.lockedUntil = time.Now().Add(t.duration)
	}
	return rec.count
}

// ClearSuccess wipes the failure history for clientID after a successful
// validation.
func (t *LockoutTracker) ClearSuccess(clientID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, clientID)
}

// MaxAttempts returns the configured failure threshold.
func (t *LockoutTracker) MaxAttempts() int {
	return t.maxAttempts
}
