// ABOUTME: Store interface and data types for financial time series persistence
// ABOUTME: Defines Series, Observation, FetchRecord structs and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Observation status codes as delivered by the SDMX feed.
const (
	StatusNormal      = "A"
	StatusBreak       = "B"
	StatusEstimated   = "E"
	StatusForecast    = "F"
	StatusMissing     = "M"
	StatusProvisional = "P"
)

// Series represents one financial time series and its metadata.
// SeriesKey is the full SDMX identifier, e.g. "EXR.D.USD.EUR.SP00.A".
type Series struct {
	ID           int64
	SeriesKey    string
	Name         string
	Frequency    string // "DAILY", "MONTHLY", "ANNUAL"
	Unit         string
	SourceAgency string // defaults to "ECB"
	LastUpdated  time.Time
	CreatedAt    time.Time
}

// Observation is a single dated value within a series.
type Observation struct {
	ID        int64
	SeriesID  int64
	Period    string // "2024-01-15" daily, "2024-01" monthly, "2024" annual
	Value     float64
	Status    string // SDMX status code, empty when not reported
	CreatedAt time.Time
}

// FetchRecord logs one fetch attempt against the upstream API.
type FetchRecord struct {
	ID               string // UUID v4
	SeriesKey        string
	FetchedAt        time.Time
	Success          bool
	ObservationCount int
	ErrorMessage     string // empty on success
}

// SeriesUpdate is a row in the Stats latest-updates list.
type SeriesUpdate struct {
	SeriesKey   string    `json:"series_key"`
	Name        string    `json:"name"`
	LastUpdated time.Time `json:"last_updated"`
}

// Stats summarizes what the store currently holds.
type Stats struct {
	SeriesCount      int            `json:"series_count"`
	ObservationCount int            `json:"total_observations"`
	LatestUpdates    []SeriesUpdate `json:"latest_updates"`
}

// Store defines the interface for series and observation persistence
type Store interface {
	// Series metadata
	UpsertSeries(ctx context.Context, series *Series) error
	GetSeries(ctx context.Context, seriesKey string) (*Series, error)
	ListSeries(ctx context.Context) ([]*Series, error)

	// Observations
	ReplaceObservations(ctx context.Context, seriesID int64, obs []*Observation) error
	Observations(ctx context.Context, seriesKey, fromPeriod, toPeriod string) ([]*Observation, error)
	LatestObservations(ctx context.Context, seriesKey string, n int) ([]*Observation, error)

	// Fetch log
	RecordFetch(ctx context.Context, rec *FetchRecord) error
	LastSuccessfulFetch(ctx context.Context) (time.Time, error)

	// Maintenance
	Stats(ctx context.Context) (*Stats, error)
	Health(ctx context.Context) error
	Checkpoint(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}
