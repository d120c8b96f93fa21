// Package store provides persistent storage for financial time series using SQLite.
//
// # Data Models
//
//   - Series: One SDMX time series (key, name, frequency, unit, agency)
//     with a last_updated watermark driving refresh staleness checks
//   - Observation: A dated value within a series; periods are ISO strings
//     whose lexicographic order is chronological within one series
//   - FetchRecord: One fetch attempt against the upstream API, success or
//     failure, backing the dashboard's "last refreshed" display
//
// # Refresh Semantics
//
// The upstream feed always returns the full requested window, so a refresh
// replaces a series' observations wholesale: UpsertSeries refreshes the
// metadata row, then ReplaceObservations swaps the value set inside one
// transaction. Partial refreshes never leave a mixed window behind.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// The database file is the plaintext half of the vault's encrypted store
// pair. It is only opened after the access gate has unlocked the vault,
// and must be closed before the vault deletes the plaintext again. Because
// WAL keeps recent commits in a -wal side file, Checkpoint must run before
// the file is snapshotted for re-encryption.
//
// # Error Handling
//
// ErrNotFound is returned when a requested entity does not exist. All
// methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore with a t.TempDir() path for integration tests; the
// schema is created automatically.
package store
