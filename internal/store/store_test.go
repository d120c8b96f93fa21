// ABOUTME: Tests for SQLite store setup and series metadata operations
// ABOUTME: Covers schema creation, upsert semantics, stats and health checks

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func eurUsdSeries() *Series {
	return &Series{
		SeriesKey: "EXR.D.USD.EUR.SP00.A",
		Name:      "US dollar/Euro",
		Frequency: "DAILY",
		Unit:      "USD",
	}
}

func TestUpsertSeries_Create(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	series := eurUsdSeries()
	require.NoError(t, store.UpsertSeries(ctx, series))
	assert.NotZero(t, series.ID, "insert should populate the ID")

	retrieved, err := store.GetSeries(ctx, "EXR.D.USD.EUR.SP00.A")
	require.NoError(t, err)
	assert.Equal(t, series.ID, retrieved.ID)
	assert.Equal(t, "US dollar/Euro", retrieved.Name)
	assert.Equal(t, "DAILY", retrieved.Frequency)
	assert.Equal(t, "USD", retrieved.Unit)
	assert.Equal(t, "ECB", retrieved.SourceAgency, "agency defaults to ECB")
	assert.False(t, retrieved.LastUpdated.IsZero())
	assert.False(t, retrieved.CreatedAt.IsZero())
}

func TestUpsertSeries_UpdateExisting(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := eurUsdSeries()
	require.NoError(t, store.UpsertSeries(ctx, first))

	second := eurUsdSeries()
	second.Name = "US dollar/Euro spot rate"
	second.Unit = "USD per EUR"
	require.NoError(t, store.UpsertSeries(ctx, second))

	assert.Equal(t, first.ID, second.ID, "upsert must reuse the existing row")

	retrieved, err := store.GetSeries(ctx, "EXR.D.USD.EUR.SP00.A")
	require.NoError(t, err)
	assert.Equal(t, "US dollar/Euro spot rate", retrieved.Name)
	assert.Equal(t, "USD per EUR", retrieved.Unit)
	assert.False(t, retrieved.LastUpdated.Before(retrieved.CreatedAt))

	all, err := store.ListSeries(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "no duplicate rows after re-upsert")
}

func TestGetSeries_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetSeries(context.Background(), "EXR.D.XXX.EUR.SP00.A")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSeries(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertSeries(ctx, &Series{
		SeriesKey: "ICP.M.U2.N.000000.4.ANR",
		Name:      "HICP inflation",
		Frequency: "MONTHLY",
		Unit:      "Percent",
	}))
	require.NoError(t, store.UpsertSeries(ctx, eurUsdSeries()))

	all, err := store.ListSeries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "EXR.D.USD.EUR.SP00.A", all[0].SeriesKey, "ordered by key")
	assert.Equal(t, "ICP.M.U2.N.000000.4.ANR", all[1].SeriesKey)
}

func TestStats(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	empty, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.SeriesCount)
	assert.Zero(t, empty.ObservationCount)
	assert.Empty(t, empty.LatestUpdates)

	series := eurUsdSeries()
	require.NoError(t, store.UpsertSeries(ctx, series))
	require.NoError(t, store.ReplaceObservations(ctx, series.ID, []*Observation{
		{Period: "2024-01-02", Value: 1.0956},
		{Period: "2024-01-03", Value: 1.0919},
	}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SeriesCount)
	assert.Equal(t, 2, stats.ObservationCount)
	require.Len(t, stats.LatestUpdates, 1)
	assert.Equal(t, "EXR.D.USD.EUR.SP00.A", stats.LatestUpdates[0].SeriesKey)
	assert.Equal(t, "US dollar/Euro", stats.LatestUpdates[0].Name)
}

func TestHealth(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.Health(context.Background()))
}

func TestCheckpoint(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	series := eurUsdSeries()
	require.NoError(t, store.UpsertSeries(ctx, series))
	require.NoError(t, store.Checkpoint(ctx))

	// Data written before the checkpoint stays readable
	retrieved, err := store.GetSeries(ctx, series.SeriesKey)
	require.NoError(t, err)
	assert.Equal(t, series.ID, retrieved.ID)
}

func TestTimestampRoundTrip(t *testing.T) {
	original := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

	parsed, err := parseTimestamp(formatTimestamp(original))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(original))

	_, err = parseTimestamp("not-a-timestamp")
	assert.Error(t, err)
}
