package dashboard

import (
	"strings"
	"time"

	"github.com/weatherdash/weatherdash/internal/loadstate"
	"github.com/weatherdash/weatherdash/internal/weather"
)

// Hints are the user-facing messages left by the last operations.
type Hints struct {
	// Form is set by list and create failures.
	Form string
	// Seed is the preset tally or the last ingest failure.
	Seed string
	// Hourly is the last hourly fetch failure.
	Hourly string
	// Health is the last health check failure.
	Health string
}

// Card is one location with its current snapshot.
type Card struct {
	Location weather.Location
	Current  loadstate.Entry[weather.CurrentSnapshot]
	Selected bool
}

// Detail is the selected location and its forecast.
type Detail struct {
	Location weather.Location
	Current  loadstate.Entry[weather.CurrentSnapshot]
	Hourly   loadstate.Entry[weather.HourlySeries]
}

// View is a consistent copy of the store's state.
type View struct {
	Health          string
	HealthCheckedAt time.Time

	// List is the load state of the location list; Cards holds the last
	// committed list, filtered when a query was given.
	List          loadstate.State
	ListMessage   string
	Cards         []Card
	LocationCount int

	SelectedID string
	Detail     *Detail

	Hints        Hints
	Seeding      bool
	Ingesting    bool
	LastIngestAt time.Time
	LastSeed     *SeedTally
}

// View returns the current state. query filters the cards by a
// case-insensitive substring of the location name; blank shows all.
func (s *Store) View(query string) View {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Health:          s.health,
		HealthCheckedAt: s.healthCheckedAt,
		List:            s.list.State(),
		ListMessage:     s.list.Message(),
		LocationCount:   len(s.locations),
		SelectedID:      s.selected,
		Hints:           s.hints,
		Seeding:         s.seeding,
		Ingesting:       s.ingesting,
		LastIngestAt:    s.lastIngestAt,
	}
	if s.lastSeed != nil {
		tally := *s.lastSeed
		v.LastSeed = &tally
	}

	v.Cards = make([]Card, 0, len(s.locations))
	for _, loc := range s.locations {
		if query != "" && !strings.Contains(strings.ToLower(loc.Name), query) {
			continue
		}
		v.Cards = append(v.Cards, Card{
			Location: loc,
			Current:  s.snapshots[loc.ID].entry,
			Selected: loc.ID == s.selected,
		})
	}

	if i := s.indexOf(s.selected); i >= 0 {
		v.Detail = &Detail{
			Location: s.locations[i],
			Current:  s.snapshots[s.selected].entry,
			Hourly:   s.hourly,
		}
	}

	return v
}

// Snapshot returns the current entry for one location. Unknown ids are Idle.
func (s *Store) Snapshot(id string) loadstate.Entry[weather.CurrentSnapshot] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[id].entry
}

// Hourly returns the hourly slot and the id it belongs to.
func (s *Store) Hourly() (string, loadstate.Entry[weather.HourlySeries]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hourly
}
