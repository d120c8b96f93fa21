// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides series/observation persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS financial_series (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			series_key    TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			frequency     TEXT NOT NULL,
			unit          TEXT,
			source_agency TEXT NOT NULL DEFAULT 'ECB',
			last_updated  TEXT NOT NULL,
			created_at    TEXT NOT NULL,

			CHECK (frequency IN ('DAILY', 'MONTHLY', 'ANNUAL'))
		);

		CREATE INDEX IF NOT EXISTS idx_series_key ON financial_series(series_key);

		CREATE TABLE IF NOT EXISTS observations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			series_id  INTEGER NOT NULL REFERENCES financial_series(id) ON DELETE CASCADE,
			period     TEXT NOT NULL,
			value      REAL NOT NULL,
			status     TEXT,
			created_at TEXT NOT NULL,

			UNIQUE (series_id, period)
		);

		CREATE INDEX IF NOT EXISTS idx_observations_series ON observations(series_id);
		CREATE INDEX IF NOT EXISTS idx_observations_period ON observations(period);

		CREATE TABLE IF NOT EXISTS data_fetch_log (
			id                 TEXT PRIMARY KEY,
			series_key         TEXT NOT NULL,
			fetch_timestamp    TEXT NOT NULL,
			success            TEXT NOT NULL,
			observations_count INTEGER NOT NULL DEFAULT 0,
			error_message      TEXT,

			CHECK (success IN ('success', 'error'))
		);

		CREATE INDEX IF NOT EXISTS idx_fetch_log_series ON data_fetch_log(series_key);
		CREATE INDEX IF NOT EXISTS idx_fetch_log_ts ON data_fetch_log(fetch_timestamp DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// Stats returns row counts and the most recently updated series.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM financial_series`).Scan(&stats.SeriesCount); err != nil {
		return nil, fmt.Errorf("counting series: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM observations`).Scan(&stats.ObservationCount); err != nil {
		return nil, fmt.Errorf("counting observations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT series_key, name, last_updated
		FROM financial_series
		ORDER BY last_updated DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, fmt.Errorf("querying latest updates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var u SeriesUpdate
		var updatedStr string
		if err := rows.Scan(&u.SeriesKey, &u.Name, &updatedStr); err != nil {
			return nil, fmt.Errorf("scanning update row: %w", err)
		}
		u.LastUpdated, err = parseTimestamp(updatedStr)
		if err != nil {
			return nil, err
		}
		stats.LatestUpdates = append(stats.LatestUpdates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating update rows: %w", err)
	}

	return stats, nil
}

// Health verifies the underlying database connection is usable.
func (s *SQLiteStore) Health(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	return nil
}

// Checkpoint flushes the write-ahead log into the main database file.
// Callers must run this before snapshotting the file for encryption,
// otherwise recent writes would only exist in the -wal side file.
func (s *SQLiteStore) Checkpoint(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpointing WAL: %w", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	s.logger.Debug("closing SQLite store")
	return s.db.Close()
}
