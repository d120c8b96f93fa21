// Package vault implements encrypted-at-rest storage for the dashboard's
// SQLite database.
//
// # File-Presence State Machine
//
// The store exists in exactly one of three states, derived purely from
// which files are on disk:
//
//	no_store   neither file exists (first run)
//	locked     only database.db.encrypted exists
//	unlocked   only database.db exists
//
// There is no metadata flag recording "is encrypted"; presence is the
// state. Both files coexist during an active session, since Decrypt keeps
// the ciphertext; the retained key marks that as unlocked. When both files
// are found without a key, the encrypted form wins and the plaintext is
// treated as residue of an abnormal termination.
//
// # Key Derivation
//
// The encryption key is derived from the operator's PIN with
// PBKDF2-SHA256 (100,000 iterations) over a fixed salt, producing a
// 32-byte Fernet key. Derivation is deterministic so no key material is
// ever stored; the PIN is the only secret.
//
// # Lifecycle
//
//	Encrypt(pin)  unlocked -> locked, with backup/rollback
//	Decrypt(pin)  locked -> plaintext restored, ciphertext kept, key retained
//	Reseal()      refresh ciphertext from plaintext with the retained key
//	Lock()        remove plaintext, wipe the retained key
//
// Decrypt keeping the ciphertext means a crash mid-session can lose at most
// the writes since the last Reseal; the data service reseals after every
// refresh. Lock never touches the ciphertext, so a logout is Reseal
// followed by Lock.
//
// The ciphertext is a standard Fernet token: versioned, IV-carrying, and
// HMAC-authenticated, so tampering or a wrong key is detected instead of
// yielding garbage.
package vault
