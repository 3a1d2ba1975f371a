package dashboard

import (
	"context"

	"github.com/weatherdash/weatherdash/internal/loadstate"
	"github.com/weatherdash/weatherdash/internal/weather"
)

// Select makes id the active location and starts loading its hourly
// forecast in the background. An empty id clears the selection and resets
// the hourly slot to Idle. Selecting the already selected location is a
// no-op. Either way it overrides a created location still waiting to be
// selected.
func (s *Store) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	if id != "" && s.indexOf(id) < 0 {
		s.mu.Unlock()
		return ErrUnknownLocation
	}
	s.pendingSelect = ""
	if id == s.selected {
		s.mu.Unlock()
		return nil
	}
	req, ok := s.selectLocked(id)
	s.mu.Unlock()

	if ok {
		s.fetchHourlyInBackground(ctx, req)
	}
	return nil
}

// ReloadHourly fetches the selected location's forecast again and waits for
// it. It fails with ErrNoSelection when nothing is selected and with
// ErrHourlyInFlight while a fetch is already running.
func (s *Store) ReloadHourly(ctx context.Context) error {
	s.mu.Lock()
	if s.selected == "" {
		s.mu.Unlock()
		return ErrNoSelection
	}
	if s.hourly.IsLoading() {
		s.mu.Unlock()
		return ErrHourlyInFlight
	}
	req := s.beginHourlyLocked(s.selected)
	s.mu.Unlock()

	return s.fetchHourly(ctx, req)
}

// selectLocked changes the selection. It returns the hourly request to issue,
// or false when the selection was cleared.
func (s *Store) selectLocked(id string) (hourlyRequest, bool) {
	s.selected = id
	if id == "" {
		s.hourlyGen++
		s.hourly = loadstate.Idle[weather.HourlySeries]()
		s.hints.Hourly = ""
		return hourlyRequest{}, false
	}
	return s.beginHourlyLocked(id), true
}

// beginHourlyLocked supersedes any hourly fetch in flight and marks the slot
// Loading for id.
func (s *Store) beginHourlyLocked(id string) hourlyRequest {
	s.hourlyGen++
	s.hourly = loadstate.Loading[weather.HourlySeries]()
	s.hints.Hourly = ""
	return hourlyRequest{id: id, gen: s.hourlyGen}
}

// fetchHourly performs req and commits the result unless a newer request or
// a selection change superseded it in the meantime. The fetch error is
// returned either way.
func (s *Store) fetchHourly(ctx context.Context, req hourlyRequest) error {
	series, err := s.remote.GetHourlyWeather(ctx, req.id, s.hourlyHours)

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.gen != s.hourlyGen || req.id != s.selected {
		s.metrics.HourlyDiscarded()
		s.logger.Debug().
			Str("location_id", req.id).
			Uint64("generation", req.gen).
			Str("selected", s.selected).
			Msg("discarding superseded hourly response")
		return err
	}

	if err != nil {
		s.hourly = loadstate.Failed[weather.HourlySeries](err.Error())
		s.hints.Hourly = err.Error()
		return err
	}

	s.hourly = loadstate.Ready(*series)
	return nil
}

func (s *Store) fetchHourlyInBackground(ctx context.Context, req hourlyRequest) {
	s.spawn(ctx, "hourly", func(ctx context.Context) {
		_ = s.fetchHourly(ctx, req)
	})
}
