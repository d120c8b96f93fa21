// ABOUTME: PIN format validation and bcrypt verification for the access gate
// ABOUTME: Verification is constant-time and never panics on malformed hashes

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PINLength is the required number of decimal digits in a PIN.
const PINLength = 6

// pinHashCost matches the work factor the stock configuration hash was
// generated with.
const pinHashCost = 12

// ValidPINFormat reports whether pin is exactly six decimal digits.
// Callers must check this before handing the candidate to VerifyPIN.
func ValidPINFormat(pin string) bool {
	if len(pin) != PINLength {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// VerifyPIN compares a candidate PIN against the stored bcrypt hash.
// A malformed hash yields false rather than an error; the caller logs.
func VerifyPIN(pin, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pin)) == nil
}

// HashPIN generates a bcrypt hash suitable for the security.pin_hash setting.
func HashPIN(pin string) (string, error) {
	if !ValidPINFormat(pin) {
		return "", fmt.Errorf("PIN must be exactly %d digits", PINLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), pinHashCost)
	if err != nil {
		return "", fmt.Errorf("hashing PIN: %w", err)
	}
	return string(hash), nil
}
