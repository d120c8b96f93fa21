// ABOUTME: Tests for failed-attempt tracking and lockout windows
// ABOUTME: Covers thresholds, expiry cleanup and concurrent recording

package auth

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLockout_ThresholdTriggersLockout(t *testing.T) {
	lt := NewLockoutTracker(5, 15*time.Minute)

	for i := 1; i <= 4; i++ {
		count := lt.RecordFailure("client-a")
		if count != i {
			t.Fatalf("failure %d: count = %d", i, count)
		}
		if lt.IsLockedOut("client-a") {
			t.Fatalf("locked out after only %d failures", i)
		}
	}

	lt.RecordFailure("client-a")
	if !lt.IsLockedOut("client-a") {
		t.Error("should be locked out after 5 failures")
	}

	remaining := lt.RemainingLockout("client-a")
	if remaining <= 0 || remaining > 15*time.Minute {
		t.Errorf("remaining lockout = %v, want within (0, 15m]", remaining)
	}
}

func TestLockout_ClearSuccess(t *testing.T) {
	lt := NewLockoutTracker(5, 15*time.Minute)

	lt.RecordFailure("client-a")
	lt.RecordFailure("client-a")
	lt.ClearSuccess("client-a")

	if lt.IsLockedOut("client-a") {
		t.Error("cleared client should not be locked out")
	}
	if count := lt.RecordFailure("client-a"); count != 1 {
		t.Errorf("count after clear = %d, want 1", count)
	}
}

func TestLockout_ExpiredEntryRemoved(t *testing.T) {
	lt := NewLockoutTracker(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		lt.RecordFailure("client-a")
	}
	if !lt.IsLockedOut("client-a") {
		t.Fatal("should be locked out")
	}

	// Age the lockout past its window
	lt.mu.Lock()
	lt.attempts["client-a"].lockedUntil = time.Now().Add(-time.Second)
	lt.mu.Unlock()

	if lt.IsLockedOut("client-a") {
		t.Error("expired lockout should have lifted")
	}

	lt.mu.Lock()
	_, present := lt.attempts["client-a"]
	lt.mu.Unlock()
	if present {
		t.Error("expired record should be dropped entirely")
	}
}

func TestLockout_WindowNotExtendedByLaterFailures(t *testing.T) {
	lt := NewLockoutTracker(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		lt.RecordFailure("client-a")
	}
	lt.mu.Lock()
	until := lt.attempts["client-a"].lockedUntil
	lt.mu.Unlock()

	lt.RecordFailure("client-a")

	lt.mu.Lock()
	after := lt.attempts["client-a"].lockedUntil
	lt.mu.Unlock()
	if !after.Equal(until) {
		t.Errorf("lockout deadline moved from %v to %v", until, after)
	}
}

func TestLockout_ClientsIndependent(t *testing.T) {
	lt := NewLockoutTracker(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		lt.RecordFailure("client-a")
	}

	if lt.IsLockedOut("client-b") {
		t.Error("client-b should be unaffected by client-a's failures")
	}
	if !lt.IsLockedOut("client-a") {
		t.Error("client-a should be locked out")
	}
}

func TestLockout_RemainingZeroWhenNotLocked(t *testing.T) {
	lt := NewLockoutTracker(5, 15*time.Minute)

	if d := lt.RemainingLockout("unknown"); d != 0 {
		t.Errorf("RemainingLockout for unknown client = %v, want 0", d)
	}

	lt.RecordFailure("client-a")
	if d := lt.RemainingLockout("client-a"); d != 0 {
		t.Errorf("RemainingLockout below threshold = %v, want 0", d)
	}
}

func TestLockout_ConcurrentFailures(t *testing.T) {
	lt := NewLockoutTracker(1000, 15*time.Minute)

	const (
		goroutines = 20
		perRoutine = 10
	)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perRoutine; j++ {
				lt.RecordFailure("shared-client")
			}
		}()
	}
	wg.Wait()

	lt.mu.Lock()
	count := lt.attempts["shared-client"].count
	lt.mu.Unlock()
	if count != goroutines*perRoutine {
		t.Errorf("concurrent failure count = %d, want %d", count, goroutines*perRoutine)
	}
}

func TestLockout_ConcurrentMixedAccess(t *testing.T) {
	lt := NewLockoutTracker(5, 15*time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("client-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				lt.RecordFailure(id)
				lt.IsLockedOut(id)
				lt.RemainingLockout(id)
				if j%5 == 0 {
					lt.ClearSuccess(id)
				}
			}
		}()
	}
	wg.Wait()
}
