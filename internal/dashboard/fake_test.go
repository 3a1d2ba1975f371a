package dashboard_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/weatherdash/weatherdash/internal/weather"
	"github.com/weatherdash/weatherdash/internal/weather/backend"
)

// fakeRemote is an in-memory backend. Calls for an id with a gate block
// until the gate is closed; each gate applies to one call only.
type fakeRemote struct {
	mu sync.Mutex

	health    *weather.Health
	healthErr error

	locations []weather.Location
	listErr   error
	createErr map[string]error
	nextID    int

	current     map[string]weather.CurrentSnapshot
	currentErr  map[string]error
	currentGate map[string]chan struct{}

	hourlyErr  error
	hourlyGate map[string]chan struct{}

	ingestErr   error
	ingestDelay time.Duration

	entered chan string

	createCalls  int
	currentCalls int
	hourlyCalls  []string
	ingestCalls  int
	ingestActive int
	ingestMax    int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		health:      &weather.Health{Status: "UP"},
		createErr:   make(map[string]error),
		current:     make(map[string]weather.CurrentSnapshot),
		currentErr:  make(map[string]error),
		currentGate: make(map[string]chan struct{}),
		hourlyGate:  make(map[string]chan struct{}),
		entered:     make(chan string, 16),
	}
}

func (f *fakeRemote) addLocation(name string, lat, lon float64) weather.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(weather.NewLocation{Name: name, Latitude: lat, Longitude: lon})
}

func (f *fakeRemote) addLocked(in weather.NewLocation) weather.Location {
	f.nextID++
	loc := weather.Location{
		ID:        fmt.Sprintf("loc-%d", f.nextID),
		Name:      in.Name,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		CreatedAt: "2024-07-01T00:00:00Z",
	}
	f.locations = append(f.locations, loc)
	return loc
}

func (f *fakeRemote) setCurrent(id string, temp float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code := 0
	f.current[id] = weather.CurrentSnapshot{
		LocationID:   id,
		ObservedAt:   "2024-07-01T03:00:00Z",
		TemperatureC: &temp,
		WeatherCode:  &code,
		Source:       "fake",
	}
}

func (f *fakeRemote) gateCurrent(id string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.currentGate[id] = gate
	return gate
}

func (f *fakeRemote) gateHourly(id string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.hourlyGate[id] = gate
	return gate
}

func (f *fakeRemote) wait(ctx context.Context, id string, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	f.entered <- id
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func apiError(status int, msg string) error {
	return &backend.APIError{Status: status, Message: msg}
}

func (f *fakeRemote) Health(context.Context) (*weather.Health, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return f.health, nil
}

func (f *fakeRemote) ListLocations(context.Context) ([]weather.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]weather.Location(nil), f.locations...), nil
}

func (f *fakeRemote) CreateLocation(_ context.Context, in weather.NewLocation) (*weather.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	if err := f.createErr[in.Name]; err != nil {
		return nil, err
	}
	for _, loc := range f.locations {
		if loc.Name == in.Name {
			return nil, apiError(http.StatusConflict, "Location already exists: "+in.Name)
		}
	}
	loc := f.addLocked(in)
	return &loc, nil
}

func (f *fakeRemote) RunIngest(context.Context) error {
	f.mu.Lock()
	f.ingestCalls++
	f.ingestActive++
	f.ingestMax = max(f.ingestMax, f.ingestActive)
	delay, err := f.ingestDelay, f.ingestErr
	f.mu.Unlock()

	time.Sleep(delay)

	f.mu.Lock()
	f.ingestActive--
	f.mu.Unlock()
	return err
}

func (f *fakeRemote) GetCurrentWeather(ctx context.Context, id string) (*weather.CurrentSnapshot, error) {
	f.mu.Lock()
	f.currentCalls++
	snapshot, ok := f.current[id]
	err := f.currentErr[id]
	gate := f.currentGate[id]
	delete(f.currentGate, id)
	f.mu.Unlock()

	if werr := f.wait(ctx, id, gate); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apiError(http.StatusNotFound, "No current weather for location")
	}
	return &snapshot, nil
}

func (f *fakeRemote) GetHourlyWeather(ctx context.Context, id string, hours int) (*weather.HourlySeries, error) {
	f.mu.Lock()
	f.hourlyCalls = append(f.hourlyCalls, id)
	err := f.hourlyErr
	gate := f.hourlyGate[id]
	delete(f.hourlyGate, id)
	f.mu.Unlock()

	if werr := f.wait(ctx, id, gate); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}

	t1, t2 := 20.0, 22.0
	return &weather.HourlySeries{
		LocationID: id,
		Hours:      hours,
		FetchedAt:  "2024-07-01T00:05:00Z",
		Points: []weather.HourlyPoint{
			{Time: "2024-07-01T00:00:00Z", TemperatureC: &t1},
			{Time: "2024-07-01T01:00:00Z", TemperatureC: &t2},
		},
	}, nil
}

func (f *fakeRemote) counts() (create, current, ingest int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, f.currentCalls, f.ingestCalls
}

func (f *fakeRemote) hourlyRequests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.hourlyCalls...)
}

// countingRecorder tallies recorded outcomes.
type countingRecorder struct {
	mu        sync.Mutex
	snapshots map[string]int
	seeds     map[string]int
	ingests   map[string]int
	discarded int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		snapshots: make(map[string]int),
		seeds:     make(map[string]int),
		ingests:   make(map[string]int),
	}
}

func (r *countingRecorder) SnapshotFetched(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[outcome]++
}

func (r *countingRecorder) Seeded(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeds[outcome]++
}

func (r *countingRecorder) IngestRan(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingests[outcome]++
}

func (r *countingRecorder) HourlyDiscarded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discarded++
}
