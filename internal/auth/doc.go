// Package auth implements the PIN-gated access layer for ecb-dashboard.
//
// # Components
//
// The package is built from four small pieces, composed by the Gate:
//
//   - PIN verification: a submitted PIN is checked for format (exactly six
//     decimal digits) and then compared against a stored bcrypt hash.
//     Verification is deliberately slow (cost factor 12) to resist brute
//     force.
//
//   - LockoutTracker: counts failed attempts per client identifier and
//     locks a client out for a configured window (default 15 minutes after
//     5 failures). Malformed PINs count as failures. State is in-memory
//     only; a restart clears it.
//
//   - Sessions: an in-memory registry of bearer tokens with sliding
//     expiration (default 30 minutes). Every successful validation
//     refreshes the window, so an active client stays logged in
//     indefinitely. Tokens carry 256 bits of entropy and are URL-safe.
//
//   - Gate: the composition root. Login sequences lockout check, format
//     check, hash verification, store decryption and session creation, and
//     collapses every internal failure into one of four client-facing
//     outcomes: success, invalid credential, locked out, or service error.
//
// # Login Flow
//
//	result := gate.Login(pin, clientID)
//	switch result.Outcome {
//	case auth.OutcomeSuccess:        // result.Token is the bearer credential
//	case auth.OutcomeInvalidCredential:
//	case auth.OutcomeLockedOut:
//	case auth.OutcomeServiceError:
//	}
//
// The gate never tells a client whether the PIN hash matched but the store
// failed to decrypt; both surface as the same invalid-credential message.
//
// # Session Checks
//
// Protected handlers are wrapped by middleware that calls
// Gate.CheckSession, which validates and refreshes the session, then
// attaches the snapshot to the request context:
//
//	sess, ok := auth.SessionFromContext(r.Context())
package auth
