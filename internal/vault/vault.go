// ABOUTME: Encrypted-at-rest lifecycle for the SQLite store file
// ABOUTME: File presence is the state machine: ciphertext, plaintext, or neither

package vault

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/fernet/fernet-go"
	_ "modernc.org/sqlite"
)

// Vault errors
var (
	// ErrCannotDecrypt means the Fernet token failed authentication: wrong
	// PIN or tampered ciphertext. The two cases are deliberately
	// indistinguishable.
	ErrCannotDecrypt = errors.New("invalid PIN - cannot decrypt database")

	// ErrInvalidStore means decryption produced bytes that are not a usable
	// database; the plaintext was discarded.
	ErrInvalidStore = errors.New("decrypted file is not a valid database")

	// ErrNoKey means a reseal was requested before any unlock retained a key.
	ErrNoKey = errors.New("no encryption key retained")
)

// State describes which form of the store exists on disk.
type State int

const (
	// StateNoStore means neither file exists yet (first run).
	StateNoStore State = iota
	// StateLocked means the encrypted artifact is present and authoritative.
	StateLocked
	// StateUnlocked means only the plaintext store is present.
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateNoStore:
		return "no_store"
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// Vault manages the encrypted/plaintext file pair for the store, plus the
// transient backup used during encryption. All operations are serialized
// behind one mutex: they are multi-step sequences over shared filesystem
// state and must never interleave.
type Vault struct {
	mu         sync.Mutex
	plainPath  string
	cipherPath string
	backupPath string
	key        *fernet.Key // retained after a successful unlock, wiped by Lock
	logger     *slog.Logger
}

// New creates a Vault for the store at dbPath. The encrypted artifact and
// the transient backup live alongside it.
func New(dbPath string, logger *slog.Logger) *Vault {
	return &Vault{
		plainPath:  dbPath,
		cipherPath: dbPath + ".encrypted",
		backupPath: dbPath + ".backup",
		logger:     logger.With("component", "vault"),
	}
}

// State inspects file presence and returns the store's current state.
// Both files coexist legitimately during a session: Decrypt leaves the
// ciphertext in place and Reseal refreshes it. The retained key is the
// tiebreaker: with it the plaintext is live, without it the plaintext is
// residue of an abnormal termination, the encrypted form wins, and the
// anomaly is logged.
func (v *Vault) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

// stateLocked is State without the lock; callers hold v.mu.
func (v *Vault) stateLocked() State {
	cipherExists := fileExists(v.cipherPath)
	plainExists := fileExists(v.plainPath)

	switch {
	case cipherExists && !plainExists:
		return StateLocked
	case plainExists && !cipherExists:
		return StateUnlocked
	case !cipherExists && !plainExists:
		return StateNoStore
	default:
		if v.key != nil {
			return StateUnlocked
		}
		v.logger.Warn("both encrypted and plaintext store files exist, treating store as locked")
		return StateLocked
	}
}

// IsEncrypted reports whether the store is locked behind the ciphertext.
func (v *Vault) IsEncrypted() bool {
	return v.State() == StateLocked
}

// Encrypt wraps the plaintext store with a key derived from pin, ending in
// the locked state. From no_store it succeeds as a no-op: there is nothing
// to wrap yet. From locked it is also a no-op. On any failure after the
// backup exists, the plaintext is restored and the partial ciphertext
// removed, so the operation either ends locked or leaves the store
// unchanged.
func (v *Vault) Encrypt(pin string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch v.stateLocked() {
	case StateNoStore:
		v.logger.Info("no store file exists yet, it will be wrapped once created")
		return nil
	case StateLocked:
		v.logger.Info("store is already encrypted")
		return nil
	}

	if err := copyFile(v.plainPath, v.backupPath); err != nil {
		return fmt.Errorf("creating store backup: %w", err)
	}

	key := DeriveKey(pin)

	plaintext, err := os.ReadFile(v.plainPath)
	if err != nil {
		v.rollbackEncrypt()
		return fmt.Errorf("reading store: %w", err)
	}

	token, err := fernet.EncryptAndSign(plaintext, key)
	if err != nil {
		v.rollbackEncrypt()
		return fmt.Errorf("encrypting store: %w", err)
	}

	if err := os.WriteFile(v.cipherPath, token, 0600); err != nil {
		v.rollbackEncrypt()
		return fmt.Errorf("writing encrypted store: %w", err)
	}

	if err := os.Remove(v.plainPath); err != nil {
		v.rollbackEncrypt()
		return fmt.Errorf("removing plaintext store: %w", err)
	}

	v.removeBackup()
	v.logger.Info("store encrypted")
	return nil
}

// Decrypt unwraps the encrypted store with a key derived from pin, writing
// the plaintext alongside the untouched ciphertext, and retains the key for
// the later reseal. An authentication failure is ErrCannotDecrypt, distinct
// from I/O errors. Decrypted bytes that do not form a usable database are
// deleted again and reported as ErrInvalidStore.
func (v *Vault) Decrypt(pin string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stateLocked() != StateLocked {
		v.logger.Info("store is not encrypted")
		return nil
	}

	key := DeriveKey(pin)

	token, err := os.ReadFile(v.cipherPath)
	if err != nil {
		return fmt.Errorf("reading encrypted store: %w", err)
	}

	plaintext := fernet.VerifyAndDecrypt(token, -1, []*fernet.Key{key})
	if plaintext == nil {
		v.logger.Error("store decryption failed: wrong key or corrupted ciphertext")
		return ErrCannotDecrypt
	}

	if err := os.WriteFile(v.plainPath, plaintext, 0600); err != nil {
		return fmt.Errorf("writing plaintext store: %w", err)
	}

	if err := v.verifyStore(); err != nil {
		if rmErr := os.Remove(v.plainPath); rmErr != nil {
			v.logger.Error("removing invalid plaintext store", "error", rmErr)
		}
		return err
	}

	v.key = key
	v.logger.Info("store decrypted")
	return nil
}

// Reseal refreshes the encrypted artifact from the current plaintext using
// the retained key, leaving the plaintext in place. Runs after data writes
// and before the plaintext is removed at logout, so data created during a
// session survives it. The ciphertext is replaced via a temp file rename
// and is never half-written. No-op when there is no plaintext to wrap.
func (v *Vault) Reseal() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.key == nil {
		return ErrNoKey
	}
	if !fileExists(v.plainPath) {
		return nil
	}

	plaintext, err := os.ReadFile(v.plainPath)
	if err != nil {
		return fmt.Errorf("reading store: %w", err)
	}

	token, err := fernet.EncryptAndSign(plaintext, v.key)
	if err != nil {
		return fmt.Errorf("encrypting store: %w", err)
	}

	tmpPath := v.cipherPath + ".tmp"
	if err := os.WriteFile(tmpPath, token, 0600); err != nil {
		return fmt.Errorf("writing encrypted store: %w", err)
	}
	if err := os.Rename(tmpPath, v.cipherPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing encrypted store: %w", err)
	}

	v.logger.Debug("store resealed")
	return nil
}

// Lock removes the plaintext store and wipes the retained key. The
// encrypted artifact is untouched; callers reseal first when session writes
// must survive. No-op when no plaintext exists.
func (v *Vault) Lock() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.key = nil

	// SQLite side files hold plaintext pages too; remove them with the store.
	for _, p := range []string{v.plainPath + "-wal", v.plainPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing store side file: %w", err)
		}
	}

	if err := os.Remove(v.plainPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing plaintext store: %w", err)
	}
	v.logger.Info("store locked")
	return nil
}

// RetainKey derives and holds the key for pin without touching any files.
// Used when a login finds the store not yet encrypted, so the logout-time
// reseal can still wrap it.
func (v *Vault) RetainKey(pin string) {
	key := DeriveKey(pin)
	v.mu.Lock()
	v.key = key
	v.mu.Unlock()
}

// HasKey reports whether a derived key is currently held in memory.
func (v *Vault) HasKey() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.key != nil
}

// CleanupBackup removes a leftover backup file if one exists.
func (v *Vault) CleanupBackup() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.Remove(v.backupPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing backup file: %w", err)
	}
	return nil
}

// Status reports the on-disk situation of the store files.
type Status struct {
	State         string `json:"state"`
	IsEncrypted   bool   `json:"is_encrypted"`
	EncryptedSize int64  `json:"encrypted_size"`
	PlaintextSize int64  `json:"decrypted_size"`
	BackupExists  bool   `json:"backup_exists"`
}

// Status returns a display snapshot of the store files.
func (v *Vault) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()

	state := v.stateLocked()
	return Status{
		State:         state.String(),
		IsEncrypted:   state == StateLocked,
		EncryptedSize: fileSize(v.cipherPath),
		PlaintextSize: fileSize(v.plainPath),
		BackupExists:  fileExists(v.backupPath),
	}
}

// verifyStore probes the freshly written plaintext for the expected schema.
// A token that authenticated but unwrapped into garbage would otherwise
// surface as a confusing crash much deeper in the stack.
func (v *Vault) verifyStore() error {
	db, err := sql.Open("sqlite", v.plainPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStore, err)
	}
	defer db.Close()

	for _, table := range []string{"financial_series", "observations"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			v.logger.Warn("store verification failed", "table", table, "error", err)
			return ErrInvalidStore
		}
	}
	return nil
}

// rollbackEncrypt undoes a partial encrypt: the half-written ciphertext is
// removed and the plaintext restored from the backup. The backup itself is
// kept if the restore fails; it is then the only good copy.
func (v *Vault) rollbackEncrypt() {
	if err := os.Remove(v.cipherPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		v.logger.Error("removing partial ciphertext during rollback", "error", err)
	}
	if v.restoreBackup() {
		v.removeBackup()
	}
}

func (v *Vault) restoreBackup() bool {
	if !fileExists(v.backupPath) {
		return false
	}
	if err := copyFile(v.backupPath, v.plainPath); err != nil {
		v.logger.Error("restoring store from backup", "error", err)
		return false
	}
	v.logger.Info("store restored from backup")
	return true
}

func (v *Vault) removeBackup() {
	if err := os.Remove(v.backupPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		v.logger.Error("removing backup file", "error", err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0600)
}
