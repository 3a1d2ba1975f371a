package dashboard

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/weatherdash/weatherdash/internal/loadstate"
	"github.com/weatherdash/weatherdash/internal/weather"
)

// HintInvalidCoordinates is shown when the location form has non-numeric
// coordinates.
const HintInvalidCoordinates = "latitude and longitude must be numbers"

var validate = validator.New()

// locationForm is the raw create-location input.
type locationForm struct {
	Name      string
	Latitude  string `validate:"required,numeric"`
	Longitude string `validate:"required,numeric"`
}

// RefreshLocations reloads the location list from the backend.
//
// On success a location created since the last successful load is selected
// if listed. Otherwise the selection is kept if the selected location is
// still listed, moves to the first location, or is cleared when the list is
// empty. Current snapshots for the whole list are then refreshed in the
// background.
func (s *Store) RefreshLocations(ctx context.Context) ([]weather.Location, error) {
	s.mu.Lock()
	s.list = loadstate.Loading[[]weather.Location]()
	s.hints.Form = ""
	s.mu.Unlock()

	locations, err := s.remote.ListLocations(ctx)
	if err != nil {
		s.mu.Lock()
		s.list = loadstate.Failed[[]weather.Location](err.Error())
		s.hints.Form = err.Error()
		s.mu.Unlock()
		return nil, fmt.Errorf("listing locations: %w", err)
	}

	s.mu.Lock()
	s.locations = locations
	s.list = loadstate.Ready(locations)

	next := s.selected
	if s.pendingSelect != "" && s.indexOf(s.pendingSelect) >= 0 {
		next = s.pendingSelect
	}
	s.pendingSelect = ""
	if next == "" || s.indexOf(next) < 0 {
		next = ""
		if len(locations) > 0 {
			next = locations[0].ID
		}
	}

	var (
		req     hourlyRequest
		refetch bool
	)
	if next != s.selected {
		req, refetch = s.selectLocked(next)
	}
	s.mu.Unlock()

	s.refreshCurrentInBackground(ctx, locations)
	if refetch {
		s.fetchHourlyInBackground(ctx, req)
	}

	return locations, nil
}

// CreateLocation registers a location from raw form input. Coordinates must
// be decimal numbers; otherwise ErrInvalidCoordinates is returned and no
// request is made. On success the list is reloaded and the new location
// becomes the selection. If that reload fails, the next successful one
// selects it.
func (s *Store) CreateLocation(ctx context.Context, name, latitude, longitude string) (*weather.Location, error) {
	s.mu.Lock()
	s.hints.Form = ""
	s.mu.Unlock()

	in, err := parseLocationForm(locationForm{
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
	})
	if err != nil {
		s.mu.Lock()
		s.hints.Form = HintInvalidCoordinates
		s.mu.Unlock()
		return nil, err
	}

	created, err := s.remote.CreateLocation(ctx, in)
	if err != nil {
		s.mu.Lock()
		s.hints.Form = err.Error()
		s.mu.Unlock()
		return nil, fmt.Errorf("creating location: %w", err)
	}

	// The next successful list load selects it, whether that is the refresh
	// below or a later one.
	s.mu.Lock()
	s.pendingSelect = created.ID
	s.mu.Unlock()

	if _, err := s.RefreshLocations(ctx); err != nil {
		s.logger.Warn().Err(err).Str("location_id", created.ID).Msg("location created but list refresh failed")
		return created, nil
	}

	s.logger.Info().Str("location_id", created.ID).Str("name", created.Name).Msg("location created")
	return created, nil
}

func parseLocationForm(form locationForm) (weather.NewLocation, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Latitude = strings.TrimSpace(form.Latitude)
	form.Longitude = strings.TrimSpace(form.Longitude)

	if err := validate.Struct(form); err != nil {
		return weather.NewLocation{}, fmt.Errorf("%w: %s", weather.ErrInvalidCoordinates, err.Error())
	}

	lat, err := parseCoordinate(form.Latitude)
	if err != nil {
		return weather.NewLocation{}, err
	}
	lon, err := parseCoordinate(form.Longitude)
	if err != nil {
		return weather.NewLocation{}, err
	}

	return weather.NewLocation{Name: form.Name, Latitude: lat, Longitude: lon}, nil
}

func parseCoordinate(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", weather.ErrInvalidCoordinates, raw)
	}
	return v, nil
}
