// ABOUTME: Fetch log store methods recording upstream API fetch attempts
// ABOUTME: Backs the dashboard's last-refresh display and fetch troubleshooting

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordFetch appends one fetch attempt to the log. Failed attempts are
// recorded with their error message so fetch problems survive restarts.
// A missing ID is filled in with a fresh UUID.
func (s *SQLiteStore) RecordFetch(ctx context.Context, rec *FetchRecord) error {
	query := `
		INSERT INTO data_fetch_log (id, series_key, fetch_timestamp, success, observations_count, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	outcome := "error"
	if rec.Success {
		outcome = "success"
	}

	var errMsg any
	if rec.ErrorMessage != "" {
		errMsg = rec.ErrorMessage
	}

	if _, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.SeriesKey,
		formatTimestamp(rec.FetchedAt),
		outcome,
		rec.ObservationCount,
		errMsg,
	); err != nil {
		return fmt.Errorf("inserting fetch record: %w", err)
	}

	s.logger.Debug("recorded fetch", "series_key", rec.SeriesKey, "success", rec.Success, "count", rec.ObservationCount)
	return nil
}

// LastSuccessfulFetch returns when any series last fetched successfully.
// ErrNotFound means no successful fetch has ever been recorded.
func (s *SQLiteStore) LastSuccessfulFetch(ctx context.Context) (time.Time, error) {
	query := `
		SELECT fetch_timestamp
		FROM data_fetch_log
		WHERE success = 'success'
		ORDER BY fetch_timestamp DESC
		LIMIT 1
	`

	var tsStr string
	err := s.db.QueryRowContext(ctx, query).Scan(&tsStr)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying last fetch: %w", err)
	}

	return parseTimestamp(tsStr)
}
