// ABOUTME: Observation store methods for dated series values
// ABOUTME: Refresh replaces a series' observations wholesale inside one transaction

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReplaceObservations atomically swaps the full observation set of a
// series. The upstream feed always returns the complete window, so a
// delete-and-reinsert keeps the local copy exactly in step with it.
func (s *SQLiteStore) ReplaceObservations(ctx context.Context, seriesID int64, obs []*Observation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM observations WHERE series_id = ?`,
		seriesID,
	); err != nil {
		return fmt.Errorf("clearing observations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (series_id, period, value, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := formatTimestamp(time.Now())
	for _, o := range obs {
		// Empty status is stored as NULL, matching unreported SDMX status
		var status any
		if o.Status != "" {
			status = o.Status
		}

		if _, err := stmt.ExecContext(ctx, seriesID, o.Period, o.Value, status, now); err != nil {
			return fmt.Errorf("inserting observation %s: %w", o.Period, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing observations: %w", err)
	}

	s.logger.Debug("replaced observations", "series_id", seriesID, "count", len(obs))
	return nil
}

// Observations returns a series' observations ordered by period.
// fromPeriod and toPeriod bound the window inclusively and must use the
// same period format as the series ("2024-01-02" daily, "2024-01"
// monthly); empty means unbounded on that side. Period strings sort
// chronologically within a series, so a plain string comparison is the
// range filter.
func (s *SQLiteStore) Observations(ctx context.Context, seriesKey, fromPeriod, toPeriod string) ([]*Observation, error) {
	series, err := s.GetSeries(ctx, seriesKey)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, series_id, period, value, status, created_at
		FROM observations
		WHERE series_id = ?
		  AND (? = '' OR period >= ?)
		  AND (? = '' OR period <= ?)
		ORDER BY period
	`

	rows, err := s.db.QueryContext(ctx, query, series.ID, fromPeriod, fromPeriod, toPeriod, toPeriod)
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectObservations(rows)
}

// LatestObservations returns up to n most recent observations of a
// series, newest first.
func (s *SQLiteStore) LatestObservations(ctx context.Context, seriesKey string, n int) ([]*Observation, error) {
	series, err := s.GetSeries(ctx, seriesKey)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, series_id, period, value, status, created_at
		FROM observations
		WHERE series_id = ?
		ORDER BY period DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, series.ID, n)
	if err != nil {
		return nil, fmt.Errorf("querying latest observations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectObservations(rows)
}

func collectObservations(rows *sql.Rows) ([]*Observation, error) {
	var obs []*Observation
	for rows.Next() {
		o, err := scanObservationRow(rows)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating observation rows: %w", err)
	}

	return obs, nil
}

// scanObservationRow scans an observation from sql.Rows.
func scanObservationRow(rows *sql.Rows) (*Observation, error) {
	var o Observation
	var status sql.NullString
	var createdStr string

	err := rows.Scan(
		&o.ID,
		&o.SeriesID,
		&o.Period,
		&o.Value,
		&status,
		&createdStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning observation row: %w", err)
	}

	if status.Valid {
		o.Status = status.String
	}
	if o.CreatedAt, err = parseTimestamp(createdStr); err != nil {
		return nil, err
	}

	return &o, nil
}
