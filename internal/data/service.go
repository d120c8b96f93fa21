// ABOUTME: Data service orchestrating ECB fetches into the observation store
// ABOUTME: Refresh flows with staleness checks, fetch logging, and vault resealing

package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/datalens/ecb-dashboard/internal/config"
	"github.com/datalens/ecb-dashboard/internal/ecb"
	"github.com/datalens/ecb-dashboard/internal/store"
)

// staleAfter is how old a series may get before a refresh refetches it.
const staleAfter = time.Hour

// Fetcher is the ECB client surface the service consumes.
type Fetcher interface {
	FetchSeries(ctx context.Context, spec config.SeriesSpec, start, end string) (*ecb.SeriesData, error)
}

// Resealer refreshes the encrypted copy of the store after writes.
// Satisfied by *vault.Vault; nil disables resealing.
type Resealer interface {
	HasKey() bool
	Reseal() error
}

// SeriesResult reports the outcome of refreshing one series.
type SeriesResult struct {
	SeriesName string `json:"series_name"`
	SeriesKey  string `json:"series_key"`
	Success    bool   `json:"success"`
	Skipped    bool   `json:"skipped,omitempty"`
	Fetched    int    `json:"observations_count"`
	Error      string `json:"error_message,omitempty"`
}

// RefreshResult summarizes one refresh run. Series skipped as fresh do not
// appear in Results.
type RefreshResult struct {
	Total      int            `json:"total_series"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	Results    []SeriesResult `json:"results"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    time.Time      `json:"end_time"`
}

// Duration is the wall time the run took.
func (r *RefreshResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Service coordinates the ECB client, the observation store, and the vault.
type Service struct {
	store   store.Store
	fetcher Fetcher
	sealer  Resealer
	cfg     config.ECBConfig
	logger  *slog.Logger
}

// New creates a data service. sealer may be nil when no vault is in play.
func New(st store.Store, fetcher Fetcher, sealer Resealer, cfg config.ECBConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   st,
		fetcher: fetcher,
		sealer:  sealer,
		cfg:     cfg,
		logger:  logger.With("component", "data"),
	}
}

// RefreshAll refreshes the dashboard series, skipping ones updated within
// the staleness window unless force is set.
func (s *Service) RefreshAll(ctx context.Context, force bool) *RefreshResult {
	return s.refresh(ctx, config.DashboardSeries(), force)
}

// Refresh refreshes every catalog series in the given category.
func (s *Service) Refresh(ctx context.Context, category string, force bool) (*RefreshResult, error) {
	specs := config.SeriesByCategory(category)
	if len(specs) == 0 {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	return s.refresh(ctx, specs, force), nil
}

// RefreshSeries refreshes a single catalog series by name.
func (s *Service) RefreshSeries(ctx context.Context, name string, force bool) (SeriesResult, error) {
	spec, ok := config.FindSeries(name)
	if !ok {
		return SeriesResult{}, fmt.Errorf("unknown series %q", name)
	}

	if !force && !s.shouldRefresh(ctx, spec) {
		s.logger.Info("skipping series, recently updated", "series", spec.Name)
		return SeriesResult{SeriesName: spec.Name, SeriesKey: spec.FullKey(), Skipped: true}, nil
	}

	res := s.refreshOne(ctx, spec)
	if res.Success {
		s.reseal(ctx)
	}
	return res, nil
}

// ShouldRefresh reports whether the named series is missing or stale.
func (s *Service) ShouldRefresh(ctx context.Context, name string) bool {
	spec, ok := config.FindSeries(name)
	if !ok {
		return false
	}
	return s.shouldRefresh(ctx, spec)
}

func (s *Service) refresh(ctx context.Context, specs []config.SeriesSpec, force bool) *RefreshResult {
	result := &RefreshResult{StartTime: time.Now().UTC()}

	for _, spec := range specs {
		if !force && !s.shouldRefresh(ctx, spec) {
			s.logger.Info("skipping series, recently updated", "series", spec.Name)
			continue
		}

		r := s.refreshOne(ctx, spec)
		result.Results = append(result.Results, r)
		result.Total++
		if r.Success {
			result.Successful++
		} else {
			result.Failed++
		}
	}

	result.EndTime = time.Now().UTC()
	if result.Successful > 0 {
		s.reseal(ctx)
	}

	s.logger.Info("data refresh completed",
		"successful", result.Successful, "failed", result.Failed, "duration", result.Duration())
	return result
}

// refreshOne fetches a series over the default range and replaces its
// stored observations. Both outcomes land in the fetch log.
func (s *Service) refreshOne(ctx context.Context, spec config.SeriesSpec) SeriesResult {
	res := SeriesResult{SeriesName: spec.Name, SeriesKey: spec.FullKey()}

	start, end := ecb.DefaultRange(s.cfg.DefaultRangeMonths)
	data, err := s.fetcher.FetchSeries(ctx, spec, start, end)
	if err != nil {
		s.logger.Error("fetching series failed", "series", spec.Name, "error", err)
		res.Error = err.Error()
		s.recordFetch(ctx, res)
		return res
	}

	count, err := s.storeSeries(ctx, spec, data)
	if err != nil {
		s.logger.Error("storing series failed", "series", spec.Name, "error", err)
		res.Error = err.Error()
		s.recordFetch(ctx, res)
		return res
	}

	res.Success = true
	res.Fetched = count
	s.recordFetch(ctx, res)
	return res
}

// storeSeries upserts the series metadata and swaps in the fetched
// observations. Catalog title and unit fill in when the response has none.
func (s *Service) storeSeries(ctx context.Context, spec config.SeriesSpec, data *ecb.SeriesData) (int, error) {
	title := data.Title
	if title == "" {
		title = spec.Title
	}
	unit := data.Unit
	if unit == "" {
		unit = spec.Unit
	}

	series := &store.Series{
		SeriesKey: spec.FullKey(),
		Name:      title,
		Frequency: spec.Frequency,
		Unit:      unit,
	}
	if err := s.store.UpsertSeries(ctx, series); err != nil {
		return 0, fmt.Errorf("upserting series: %w", err)
	}

	obs := make([]*store.Observation, len(data.Observations))
	for i, o := range data.Observations {
		obs[i] = &store.Observation{Period: o.Period, Value: o.Value, Status: o.Status}
	}
	if err := s.store.ReplaceObservations(ctx, series.ID, obs); err != nil {
		return 0, fmt.Errorf("replacing observations: %w", err)
	}

	return len(obs), nil
}

func (s *Service) shouldRefresh(ctx context.Context, spec config.SeriesSpec) bool {
	series, err := s.store.GetSeries(ctx, spec.FullKey())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("checking refresh status failed", "series", spec.Name, "error", err)
		}
		return true
	}
	return time.Since(series.LastUpdated) > staleAfter
}

func (s *Service) recordFetch(ctx context.Context, res SeriesResult) {
	rec := &store.FetchRecord{
		SeriesKey:        res.SeriesKey,
		FetchedAt:        time.Now().UTC(),
		Success:          res.Success,
		ObservationCount: res.Fetched,
		ErrorMessage:     res.Error,
	}
	if err := s.store.RecordFetch(ctx, rec); err != nil {
		s.logger.Warn("recording fetch outcome failed", "series", res.SeriesKey, "error", err)
	}
}

// reseal refreshes the encrypted store copy after successful writes. The
// WAL is checkpointed first so the main database file carries every
// committed write before it is snapshotted. Failures are logged rather
// than returned: the plaintext already holds the data and the logout path
// reseals again.
func (s *Service) reseal(ctx context.Context) {
	if s.sealer == nil || !s.sealer.HasKey() {
		return
	}
	if err := s.store.Checkpoint(ctx); err != nil {
		s.logger.Warn("checkpointing store before reseal failed", "error", err)
		return
	}
	if err := s.sealer.Reseal(); err != nil {
		s.logger.Warn("resealing store failed", "error", err)
	}
}
