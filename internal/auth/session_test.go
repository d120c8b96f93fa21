// ABOUTME: Tests for session issuance, validation and expiry
// ABOUTME: Exercises sliding refresh, idempotent destroy and the sweeper

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(t *testing.T) *Sessions {
	t.Helper()
	s := NewSessions(30 * time.Minute)
	t.Cleanup(s.Close)
	return s
}

// ageSession rewinds a session's last activity so expiry paths can be
// exercised without sleeping.
func ageSession(s *Sessions, token string, age time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.active[token]; ok {
		rec.lastActivity = time.Now().Add(-age)
	}
}

func TestSessions_CreateAndValidate(t *testing.T) {
	s := newTestSessions(t)

	token, err := s.Create("10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.GreaterOrEqual(t, len(token), 43, "token should encode at least 256 bits")

	assert.True(t, s.Validate(token))
	assert.Equal(t, 1, s.Count())
}

func TestSessions_TokensUnique(t *testing.T) {
	s := newTestSessions(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := s.Create("10.0.0.1")
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token issued")
		seen[token] = true
	}
}

func TestSessions_ValidateUnknownToken(t *testing.T) {
	s := newTestSessions(t)

	assert.False(t, s.Validate("no-such-token"))
	assert.False(t, s.Validate(""))
}

func TestSessions_ValidateExpired(t *testing.T) {
	s := newTestSessions(t)

	token, err := s.Create("10.0.0.1")
	require.NoError(t, err)

	ageSession(s, token, 31*time.Minute)

	assert.False(t, s.Validate(token))
	assert.Equal(t, 0, s.Count(), "expired session removed on sight")
}

func TestSessions_ValidateRefreshesActivity(t *testing.T) {
	s := newTestSessions(t)

	token, err := s.Create("10.0.0.1")
	require.NoError(t, err)

	ageSession(s, token, 29*time.Minute)
	require.True(t, s.Validate(token), "session within timeout should validate")

	info, ok := s.Info(token)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), info.LastActivity, time.Second,
		"validation should slide the activity window forward")
}

func TestSessions_InfoDoesNotRefresh(t *testing.T) {
	s := newTestSessions(t)

	token, err := s.Create("10.0.0.1")
	require.NoError(t, err)

	ageSession(s, token, 10*time.Minute)

	info, ok := s.Info(token)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", info.ClientID)
	assert.True(t, info.Authenticated)

	after, ok := s.Info(token)
	require.True(t, ok)
	assert.Equal(t, info.LastActivity, after.LastActivity, "Info must not touch activity")
}

func TestSessions_InfoUnknownToken(t *testing.T) {
	s := newTestSessions(t)

	_, ok := s.Info("no-such-token")
	assert.False(t, ok)
}

func TestSessions_DestroyIdempotent(t *testing.T) {
	s := newTestSessions(t)

	token, err := s.Create("10.0.0.1")
	require.NoError(t, err)

	assert.True(t, s.Destroy(token))
	assert.False(t, s.Destroy(token), "second destroy finds nothing")
	assert.False(t, s.Validate(token))
	assert.Equal(t, 0, s.Count())
}

func TestSessions_SweepExpired(t *testing.T) {
	s := newTestSessions(t)

	fresh, err := s.Create("10.0.0.1")
	require.NoError(t, err)
	stale1, err := s.Create("10.0.0.2")
	require.NoError(t, err)
	stale2, err := s.Create("10.0.0.3")
	require.NoError(t, err)

	ageSession(s, stale1, time.Hour)
	ageSession(s, stale2, time.Hour)

	assert.Equal(t, 2, s.SweepExpired())
	assert.Equal(t, 1, s.Count())
	assert.True(t, s.Validate(fresh))
}

func TestSessions_CloseStopsSweeper(t *testing.T) {
	s := NewSessions(30 * time.Minute)

	token, err := s.Create("10.0.0.1")
	require.NoError(t, err)

	s.Close()

	// Existing sessions stay readable; Close only stops the background sweep
	assert.True(t, s.Validate(token))
}
