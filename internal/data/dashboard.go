// ABOUTME: Dashboard summary assembly and windowed observation reads
// ABOUTME: Latest values, percent changes, and the 2% inflation target deviation

package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datalens/ecb-dashboard/internal/config"
	"github.com/datalens/ecb-dashboard/internal/store"
)

// InflationTarget is the ECB's medium-term inflation target in percent.
const InflationTarget = 2.0

// defaultDays is the display window for daily series when none is given.
const defaultDays = 365

// SeriesSummary is one dashboard tile: the latest observation of a series
// with its display metadata.
type SeriesSummary struct {
	SeriesKey   string    `json:"series_key"`
	Title       string    `json:"title"`
	Unit        string    `json:"unit"`
	Period      string    `json:"period"`
	Value       float64   `json:"value"`
	LastUpdated time.Time `json:"last_updated"`
}

// ExchangeRateSummary adds the percent change against the previous
// observation. ChangePercent is nil with fewer than two observations.
type ExchangeRateSummary struct {
	SeriesSummary
	ChangePercent *float64 `json:"change_percent,omitempty"`
}

// InflationSummary adds the distance from the ECB's 2% target.
type InflationSummary struct {
	SeriesSummary
	TargetDeviation float64 `json:"target_deviation"`
}

// DashboardData is the overview the dashboard page renders. Sections are
// nil until their series has been fetched at least once.
type DashboardData struct {
	ExchangeRate *ExchangeRateSummary `json:"exchange_rate,omitempty"`
	Inflation    *InflationSummary    `json:"inflation,omitempty"`
	InterestRate *SeriesSummary       `json:"interest_rate,omitempty"`
	LastRefresh  *time.Time           `json:"last_refresh,omitempty"`
	Stats        *store.Stats         `json:"stats,omitempty"`
}

// SeriesWindow is one series with the observations inside a display range.
type SeriesWindow struct {
	Series       *store.Series
	Observations []*store.Observation
}

// Latest returns the newest observation in the window, or nil when empty.
func (w *SeriesWindow) Latest() *store.Observation {
	if len(w.Observations) == 0 {
		return nil
	}
	return w.Observations[len(w.Observations)-1]
}

// Dashboard assembles the overview from store reads only; it never fetches.
func (s *Service) Dashboard(ctx context.Context) (*DashboardData, error) {
	dash := &DashboardData{}

	series, obs, err := s.latest(ctx, "EUR_USD_DAILY", 2)
	switch {
	case err == nil:
		fx := &ExchangeRateSummary{SeriesSummary: summarize(series, obs[0])}
		if len(obs) > 1 && obs[1].Value != 0 {
			change := (obs[0].Value - obs[1].Value) / obs[1].Value * 100
			fx.ChangePercent = &change
		}
		dash.ExchangeRate = fx
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	series, obs, err = s.latest(ctx, "INFLATION_MONTHLY", 1)
	switch {
	case err == nil:
		dash.Inflation = &InflationSummary{
			SeriesSummary:   summarize(series, obs[0]),
			TargetDeviation: obs[0].Value - InflationTarget,
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	series, obs, err = s.latest(ctx, "ECB_MAIN_RATE", 1)
	switch {
	case err == nil:
		rate := summarize(series, obs[0])
		dash.InterestRate = &rate
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	if last, err := s.store.LastSuccessfulFetch(ctx); err == nil {
		dash.LastRefresh = &last
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	dash.Stats = stats

	return dash, nil
}

// ExchangeRates returns the EUR/USD window covering the trailing days.
func (s *Service) ExchangeRates(ctx context.Context, days int) (*SeriesWindow, error) {
	if days <= 0 {
		days = defaultDays
	}
	from := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	return s.Observations(ctx, "EUR_USD_DAILY", from, "")
}

// Inflation returns the HICP window covering the trailing months.
func (s *Service) Inflation(ctx context.Context, months int) (*SeriesWindow, error) {
	if months <= 0 {
		months = s.cfg.DefaultRangeMonths
	}
	from := time.Now().UTC().AddDate(0, -months, 0).Format("2006-01")
	return s.Observations(ctx, "INFLATION_MONTHLY", from, "")
}

// InterestRates returns the deposit facility rate window covering the
// trailing days.
func (s *Service) InterestRates(ctx context.Context, days int) (*SeriesWindow, error) {
	if days <= 0 {
		days = defaultDays
	}
	from := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	return s.Observations(ctx, "ECB_MAIN_RATE", from, "")
}

// Observations returns a catalog series with its observation window.
// Bounds are inclusive period strings in the series' own format; an empty
// from defaults to the trailing configured range.
func (s *Service) Observations(ctx context.Context, name, from, to string) (*SeriesWindow, error) {
	spec, ok := config.FindSeries(name)
	if !ok {
		return nil, fmt.Errorf("unknown series %q", name)
	}
	if from == "" {
		from = defaultFrom(spec.Frequency, s.cfg.DefaultRangeMonths)
	}

	series, err := s.store.GetSeries(ctx, spec.FullKey())
	if err != nil {
		return nil, err
	}
	obs, err := s.store.Observations(ctx, spec.FullKey(), from, to)
	if err != nil {
		return nil, err
	}

	return &SeriesWindow{Series: series, Observations: obs}, nil
}

// Stats reports what the store currently holds.
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	return s.store.Stats(ctx)
}

// latest returns a series and up to depth most recent observations,
// newest first. ErrNotFound covers both an unknown series and one with no
// observations yet.
func (s *Service) latest(ctx context.Context, name string, depth int) (*store.Series, []*store.Observation, error) {
	spec, ok := config.FindSeries(name)
	if !ok {
		return nil, nil, fmt.Errorf("unknown series %q", name)
	}

	series, err := s.store.GetSeries(ctx, spec.FullKey())
	if err != nil {
		return nil, nil, err
	}
	obs, err := s.store.LatestObservations(ctx, spec.FullKey(), depth)
	if err != nil {
		return nil, nil, err
	}
	if len(obs) == 0 {
		return nil, nil, store.ErrNotFound
	}
	return series, obs, nil
}

func summarize(series *store.Series, latest *store.Observation) SeriesSummary {
	return SeriesSummary{
		SeriesKey:   series.SeriesKey,
		Title:       series.Name,
		Unit:        series.Unit,
		Period:      latest.Period,
		Value:       latest.Value,
		LastUpdated: series.LastUpdated,
	}
}

// defaultFrom returns the start period covering the trailing n months in
// the period format matching the series frequency.
func defaultFrom(frequency string, n int) string {
	if n <= 0 {
		n = 12
	}
	start := time.Now().UTC().AddDate(0, -n, 0)
	if frequency == "MONTHLY" {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}
