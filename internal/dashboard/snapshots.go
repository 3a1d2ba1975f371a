package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/weatherdash/weatherdash/internal/loadstate"
	"github.com/weatherdash/weatherdash/internal/weather"
	"github.com/weatherdash/weatherdash/internal/weather/backend"
)

// RefreshCurrentAll reloads the current snapshot of every target location.
//
// All targets are marked Loading together, fetched concurrently and merged
// together once every request has settled. One location's failure never
// delays or fails another's: a 404 becomes Empty, any other failure an
// Error carrying the backend's message. A key claimed by a newer batch while
// this one was in flight is left to the newer batch.
func (s *Store) RefreshCurrentAll(ctx context.Context, targets []weather.Location) {
	if len(targets) == 0 {
		return
	}

	ids := make([]string, len(targets))
	for i := range targets {
		ids[i] = targets[i].ID
	}

	s.mu.Lock()
	s.batchSeq++
	batch := s.batchSeq
	for _, id := range ids {
		s.snapshots[id] = snapshotSlot{entry: loadstate.Loading[weather.CurrentSnapshot](), batch: batch}
	}
	s.mu.Unlock()

	results := make([]loadstate.Entry[weather.CurrentSnapshot], len(ids))

	var g errgroup.Group
	g.SetLimit(s.bulkConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = s.fetchCurrent(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	stale := 0
	for i, id := range ids {
		if s.snapshots[id].batch != batch {
			stale++
			continue
		}
		s.snapshots[id] = snapshotSlot{entry: results[i], batch: batch}
	}

	s.logger.Debug().
		Uint64("batch", batch).
		Int("locations", len(ids)).
		Int("superseded", stale).
		Msg("current snapshots refreshed")
}

func (s *Store) fetchCurrent(ctx context.Context, id string) loadstate.Entry[weather.CurrentSnapshot] {
	snapshot, err := s.remote.GetCurrentWeather(ctx, id)
	switch {
	case err == nil:
		s.metrics.SnapshotFetched(OutcomeReady)
		return loadstate.Ready(*snapshot)
	case backend.IsNotFound(err):
		s.metrics.SnapshotFetched(OutcomeEmpty)
		return loadstate.Empty[weather.CurrentSnapshot]()
	default:
		s.metrics.SnapshotFetched(OutcomeError)
		s.logger.Warn().Err(err).Str("location_id", id).Msg("current snapshot fetch failed")
		return loadstate.Failed[weather.CurrentSnapshot](err.Error())
	}
}

// refreshCurrentInBackground starts RefreshCurrentAll without waiting for it.
func (s *Store) refreshCurrentInBackground(ctx context.Context, targets []weather.Location) {
	if len(targets) == 0 {
		return
	}
	s.spawn(ctx, "refresh-current", func(ctx context.Context) {
		s.RefreshCurrentAll(ctx, targets)
	})
}
