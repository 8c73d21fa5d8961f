package scheduler

import (
	"fmt"

	"StockFetch/internal/export"
	"StockFetch/internal/fetcher"
	"StockFetch/internal/model"
	"StockFetch/internal/session"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// QueryFunc builds the query for a refresh. It runs on every tick so a
// rolling window tracks the current day.
type QueryFunc func() model.Query

// Scheduler re-runs one configured query on a cron schedule (watch mode).
// Ticks run serially; the session slot is replaced on every refresh.
type Scheduler struct {
	Cron     *cron.Cron
	Fetcher  *fetcher.Fetcher
	Session  *session.Cache
	Export   export.Writer
	Log      zerolog.Logger
	OnResult func(model.Query, model.PriceSeries)
}

// New creates a Scheduler.
func New(f *fetcher.Fetcher, cache *session.Cache, w export.Writer, log zerolog.Logger, onResult func(model.Query, model.PriceSeries)) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Fetcher:  f,
		Session:  cache,
		Export:   w,
		Log:      log,
		OnResult: onResult,
	}
}

// Register schedules the refresh task.
func (s *Scheduler) Register(spec string, q QueryFunc) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.refresh(q()) }); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Msg("watch scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.Log.Info().Msg("watch scheduler stopped")
}

// RunNow refreshes immediately (first load).
func (s *Scheduler) RunNow(q QueryFunc) {
	s.refresh(q())
}

func (s *Scheduler) refresh(q model.Query) {
	series := s.Fetcher.Fetch(q)
	s.Session.Put(q, series)
	if err := s.Export.WriteSeries(q, series); err != nil {
		s.Log.Error().Err(err).Str("symbol", q.Symbol).Msg("export refresh")
	}
	if s.OnResult != nil {
		s.OnResult(q, series)
	}
	s.Log.Info().Str("symbol", q.Symbol).Int("rows", len(series)).Msg("watch refresh")
}
