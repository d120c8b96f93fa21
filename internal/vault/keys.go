// ABOUTME: PIN-to-key derivation for the encrypted store
// ABOUTME: PBKDF2-SHA256 over a fixed salt yields a deterministic Fernet key

package vault

import (
	"crypto/sha256"

	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/pbkdf2"
)

// kdfIterations is the PBKDF2 work factor. It is the only brake on an
// offline brute force of the six-digit PIN space by an attacker holding
// the ciphertext.
const kdfIterations = 100000

// kdfSalt is fixed and shared across installations so the key is
// re-derivable from the PIN alone, with no stored key material. Changing
// it changes the on-disk format.
var kdfSalt = []byte("ecb_financial_visualizer_salt_2024")

// DeriveKey derives the store encryption key from a PIN. Deterministic:
// the same PIN always yields the same key.
func DeriveKey(pin string) *fernet.Key {
	raw := pbkdf2.Key([]byte(pin), kdfSalt, kdfIterations, 32, sha256.New)
	var key fernet.Key
	copy(key[:], raw)
	return &key
}
