package gcal

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"slotbook/internal/events"
	"slotbook/internal/metrics"
	"slotbook/internal/model"
)

// Source is the busy-interval store key used for calendar imports.
const Source = "gcal"

// BusySource fetches busy spans for a time range.
type BusySource interface {
	BusyIntervals(ctx context.Context, from, to time.Time) ([]model.BusyInterval, error)
}

// BusyStore persists a freshly synced set of busy intervals.
type BusyStore interface {
	ReplaceBusyIntervals(ctx context.Context, source string, intervals []model.BusyInterval) error
}

// Syncer periodically imports busy intervals into the store.
type Syncer struct {
	source   BusySource
	store    BusyStore
	bus      *events.Bus
	interval time.Duration
	horizon  time.Duration
	logger   *zerolog.Logger
}

// NewSyncer creates a syncer. bus may be nil when nobody needs invalidation.
func NewSyncer(source BusySource, store BusyStore, bus *events.Bus, interval, horizon time.Duration, logger *zerolog.Logger) *Syncer {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if horizon <= 0 {
		horizon = 30 * 24 * time.Hour
	}
	return &Syncer{
		source:   source,
		store:    store,
		bus:      bus,
		interval: interval,
		horizon:  horizon,
		logger:   logger,
	}
}

// Run syncs once immediately, then on every tick until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	s.syncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *Syncer) syncOnce(ctx context.Context) {
	now := time.Now()
	intervals, err := s.source.BusyIntervals(ctx, now, now.Add(s.horizon))
	if err != nil {
		metrics.IncBusySync("fetch_error")
		s.logger.Error().Err(err).Msg("busy sync: fetch failed")
		return
	}

	if err := s.store.ReplaceBusyIntervals(ctx, Source, intervals); err != nil {
		metrics.IncBusySync("store_error")
		s.logger.Error().Err(err).Msg("busy sync: store failed")
		return
	}

	metrics.IncBusySync("ok")
	s.logger.Info().Int("intervals", len(intervals)).Msg("busy sync completed")

	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.TypeBusySynced, Payload: len(intervals)})
	}
}
