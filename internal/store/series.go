// ABOUTME: Series metadata store methods for financial time series
// ABOUTME: Upsert keeps one row per SDMX series key and refreshes metadata on re-fetch

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Timestamps are stored as RFC3339 strings in UTC.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// UpsertSeries inserts the series if its key is new, otherwise refreshes
// name, unit and last_updated on the existing row. The series ID is
// populated on return either way. Frequency is fixed at first insert.
func (s *SQLiteStore) UpsertSeries(ctx context.Context, series *Series) error {
	now := time.Now()
	if series.SourceAgency == "" {
		series.SourceAgency = "ECB"
	}

	var existingID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM financial_series WHERE series_key = ?`,
		series.SeriesKey,
	).Scan(&existingID)

	if errors.Is(err, sql.ErrNoRows) {
		query := `
			INSERT INTO financial_series (series_key, name, frequency, unit, source_agency, last_updated, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		res, err := s.db.ExecContext(ctx, query,
			series.SeriesKey,
			series.Name,
			series.Frequency,
			series.Unit,
			series.SourceAgency,
			formatTimestamp(now),
			formatTimestamp(now),
		)
		if err != nil {
			return fmt.Errorf("inserting series: %w", err)
		}
		series.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting series id: %w", err)
		}
		series.LastUpdated = now
		series.CreatedAt = now

		s.logger.Debug("created series", "series_key", series.SeriesKey, "id", series.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking series: %w", err)
	}

	query := `UPDATE financial_series SET name = ?, unit = ?, last_updated = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query,
		series.Name,
		series.Unit,
		formatTimestamp(now),
		existingID,
	); err != nil {
		return fmt.Errorf("updating series: %w", err)
	}

	series.ID = existingID
	series.LastUpdated = now

	s.logger.Debug("refreshed series metadata", "series_key", series.SeriesKey, "id", series.ID)
	return nil
}

// GetSeries retrieves a series by its full SDMX key.
func (s *SQLiteStore) GetSeries(ctx context.Context, seriesKey string) (*Series, error) {
	query := `
		SELECT id, series_key, name, frequency, unit, source_agency, last_updated, created_at
		FROM financial_series
		WHERE series_key = ?
	`

	return scanSeries(s.db.QueryRowContext(ctx, query, seriesKey))
}

// ListSeries returns all stored series ordered by key.
func (s *SQLiteStore) ListSeries(ctx context.Context) ([]*Series, error) {
	query := `
		SELECT id, series_key, name, frequency, unit, source_agency, last_updated, created_at
		FROM financial_series
		ORDER BY series_key
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []*Series
	for rows.Next() {
		sr, err := scanSeriesRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, sr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating series rows: %w", err)
	}

	return list, nil
}

// scanSeries scans a single series row from a sql.Row.
func scanSeries(row *sql.Row) (*Series, error) {
	var sr Series
	var unit sql.NullString
	var updatedStr, createdStr string

	err := row.Scan(
		&sr.ID,
		&sr.SeriesKey,
		&sr.Name,
		&sr.Frequency,
		&unit,
		&sr.SourceAgency,
		&updatedStr,
		&createdStr,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning series: %w", err)
	}

	if unit.Valid {
		sr.Unit = unit.String
	}
	if sr.LastUpdated, err = parseTimestamp(updatedStr); err != nil {
		return nil, err
	}
	if sr.CreatedAt, err = parseTimestamp(createdStr); err != nil {
		return nil, err
	}

	return &sr, nil
}

// scanSeriesRow scans a series from sql.Rows (for list queries).
func scanSeriesRow(rows *sql.Rows) (*Series, error) {
	var sr Series
	var unit sql.NullString
	var updatedStr, createdStr string

	err := rows.Scan(
		&sr.ID,
		&sr.SeriesKey,
		&sr.Name,
		&sr.Frequency,
		&unit,
		&sr.SourceAgency,
		&updatedStr,
		&createdStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning series row: %w", err)
	}

	if unit.Valid {
		sr.Unit = unit.String
	}
	if sr.LastUpdated, err = parseTimestamp(updatedStr); err != nil {
		return nil, err
	}
	if sr.CreatedAt, err = parseTimestamp(createdStr); err != nil {
		return nil, err
	}

	return &sr, nil
}
