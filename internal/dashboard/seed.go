package dashboard

import (
	"context"
	"fmt"

	"github.com/weatherdash/weatherdash/internal/weather"
	"github.com/weatherdash/weatherdash/internal/weather/backend"
)

// SeedTally counts the outcome of each preset entry.
type SeedTally struct {
	Created int `json:"created"`
	Existed int `json:"existed"`
	Failed  int `json:"failed"`
}

func (t SeedTally) String() string {
	msg := fmt.Sprintf("preset: created %d, existing %d", t.Created, t.Existed)
	if t.Failed > 0 {
		msg += fmt.Sprintf(", failed %d", t.Failed)
	}
	return msg
}

// SeedPreset creates every preset location one after another. Locations
// that already exist are counted, not treated as failures. The list is then
// reloaded, the tally becomes the seed hint, and when any locations are
// listed an ingest-and-refresh cycle is started in the background.
func (s *Store) SeedPreset(ctx context.Context, preset []weather.NewLocation) (SeedTally, error) {
	s.mu.Lock()
	if s.seeding {
		s.mu.Unlock()
		return SeedTally{}, ErrSeedInProgress
	}
	s.seeding = true
	s.hints.Seed = ""
	s.mu.Unlock()

	var tally SeedTally
	for _, city := range preset {
		_, err := s.remote.CreateLocation(ctx, city)
		switch {
		case err == nil:
			tally.Created++
			s.metrics.Seeded(OutcomeCreated)
		case backend.IsConflict(err):
			tally.Existed++
			s.metrics.Seeded(OutcomeExisted)
		default:
			tally.Failed++
			s.metrics.Seeded(OutcomeFailed)
			s.logger.Warn().Err(err).Str("name", city.Name).Msg("preset location not created")
		}
	}

	locations, err := s.RefreshLocations(ctx)

	s.mu.Lock()
	s.hints.Seed = tally.String()
	s.seeding = false
	s.lastSeed = &tally
	s.mu.Unlock()

	s.logger.Info().
		Int("created", tally.Created).
		Int("existed", tally.Existed).
		Int("failed", tally.Failed).
		Msg("preset seeded")

	if err != nil {
		return tally, err
	}

	if len(locations) > 0 {
		s.spawn(ctx, "seed-ingest", func(ctx context.Context) {
			_ = s.IngestAndRefresh(ctx, locations)
		})
	}

	return tally, nil
}
