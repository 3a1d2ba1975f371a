package dashboard

import (
	"context"
	"fmt"

	"github.com/weatherdash/weatherdash/internal/weather"
)

// IngestAndRefresh asks the backend to ingest fresh observations, then
// re-reads the targets' snapshots and, when a location is selected, its
// hourly forecast. The re-read runs even if ingestion failed; the failure
// is reported through the seed hint and the returned error. Cycles never
// overlap: a call made while another is running waits for it.
func (s *Store) IngestAndRefresh(ctx context.Context, targets []weather.Location) error {
	if len(targets) == 0 {
		return nil
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	s.mu.Lock()
	s.ingesting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.ingesting = false
		s.mu.Unlock()
	}()

	ingestErr := s.remote.RunIngest(ctx)

	s.mu.Lock()
	if ingestErr != nil {
		s.hints.Seed = ingestErr.Error()
	} else {
		s.lastIngestAt = s.clock.Now()
	}
	s.mu.Unlock()

	if ingestErr != nil {
		s.metrics.IngestRan(OutcomeError)
		s.logger.Warn().Err(ingestErr).Int("locations", len(targets)).Msg("ingest failed, refreshing anyway")
	} else {
		s.metrics.IngestRan(OutcomeOK)
		s.logger.Info().Int("locations", len(targets)).Msg("ingest completed")
	}

	s.RefreshCurrentAll(ctx, targets)

	s.mu.Lock()
	var (
		req     hourlyRequest
		refetch bool
	)
	if s.selected != "" {
		req, refetch = s.beginHourlyLocked(s.selected), true
	}
	s.mu.Unlock()

	if refetch {
		s.fetchHourlyInBackground(ctx, req)
	}

	if ingestErr != nil {
		return fmt.Errorf("running ingest: %w", ingestErr)
	}
	return nil
}

// IngestAll runs IngestAndRefresh over the currently listed locations.
func (s *Store) IngestAll(ctx context.Context) error {
	s.mu.Lock()
	targets := append([]weather.Location(nil), s.locations...)
	s.mu.Unlock()

	return s.IngestAndRefresh(ctx, targets)
}
