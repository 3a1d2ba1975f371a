// Package dashboard keeps the dashboard's view state in sync with the
// weather backend: the location list, one current snapshot per location,
// the selected location and its hourly forecast.
//
// All state lives in a Store. Commands mutate it under a single lock and
// only between network calls; readers take a consistent copy with View.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/weatherdash/weatherdash/internal/loadstate"
	"github.com/weatherdash/weatherdash/internal/weather"
)

// Store errors.
var (
	ErrUnknownLocation = errors.New("location is not in the current list")
	ErrNoSelection     = errors.New("no location selected")
	ErrHourlyInFlight  = errors.New("hourly forecast is already loading")
	ErrSeedInProgress  = errors.New("preset seeding is already running")
)

const (
	// DefaultBulkConcurrency bounds the snapshot requests in flight per batch.
	// It covers the whole preset batch so no card queues behind another.
	DefaultBulkConcurrency = 32

	// DefaultHourlyHours is the forecast horizon loaded for the selection.
	DefaultHourlyHours = 24

	// HealthUnknown is reported before the first health check.
	HealthUnknown = "unknown"

	// HealthUnreachable is reported when the health check itself failed.
	HealthUnreachable = "unreachable"
)

// Remote is the subset of the backend client the store depends on.
type Remote interface {
	Health(ctx context.Context) (*weather.Health, error)
	ListLocations(ctx context.Context) ([]weather.Location, error)
	CreateLocation(ctx context.Context, in weather.NewLocation) (*weather.Location, error)
	RunIngest(ctx context.Context) error
	GetCurrentWeather(ctx context.Context, locationID string) (*weather.CurrentSnapshot, error)
	GetHourlyWeather(ctx context.Context, locationID string, hours int) (*weather.HourlySeries, error)
}

// Recorder counts sync outcomes.
type Recorder interface {
	SnapshotFetched(outcome string)
	Seeded(outcome string)
	IngestRan(outcome string)
	HourlyDiscarded()
}

// Outcome labels passed to Recorder.
const (
	OutcomeReady   = "ready"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeCreated = "created"
	OutcomeExisted = "existed"
	OutcomeFailed  = "failed"
	OutcomeOK      = "ok"
)

// Config holds configuration for the store.
type Config struct {
	Remote Remote

	// BulkConcurrency bounds concurrent snapshot requests in one batch.
	// Default: 32
	BulkConcurrency int

	// HourlyHours is the forecast horizon for the selected location.
	// Default: 24
	HourlyHours int

	// Metrics receives sync outcomes (optional).
	Metrics Recorder

	// Clock stamps health checks and ingests. Default: real clock.
	Clock clockwork.Clock

	Logger zerolog.Logger
}

// snapshotSlot is one location's snapshot entry and the batch that last
// claimed it.
type snapshotSlot struct {
	entry loadstate.Entry[weather.CurrentSnapshot]
	batch uint64
}

// hourlyRequest identifies one hourly fetch. Its result is committed only if
// gen is still the latest generation and id is still selected.
type hourlyRequest struct {
	id  string
	gen uint64
}

// Store owns the dashboard's synchronized state.
type Store struct {
	remote          Remote
	metrics         Recorder
	clock           clockwork.Clock
	logger          zerolog.Logger
	bulkConcurrency int
	hourlyHours     int

	mu sync.Mutex

	health          string
	healthCheckedAt time.Time

	locations []weather.Location
	list      loadstate.Entry[[]weather.Location]

	snapshots map[string]snapshotSlot
	batchSeq  uint64

	selected  string
	hourly    loadstate.Entry[weather.HourlySeries]
	hourlyGen uint64

	// pendingSelect is a created location awaiting its first listing.
	pendingSelect string

	hints        Hints
	seeding      bool
	ingesting    bool
	lastIngestAt time.Time
	lastSeed     *SeedTally

	// ingestMu serializes ingest-and-refresh cycles.
	ingestMu sync.Mutex

	background sync.WaitGroup
}

// NewStore creates a store with nothing loaded.
func NewStore(cfg Config) *Store {
	if cfg.BulkConcurrency <= 0 {
		cfg.BulkConcurrency = DefaultBulkConcurrency
	}
	if cfg.HourlyHours <= 0 {
		cfg.HourlyHours = DefaultHourlyHours
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopRecorder{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &Store{
		remote:          cfg.Remote,
		metrics:         cfg.Metrics,
		clock:           cfg.Clock,
		logger:          cfg.Logger.With().Str("component", "dashboard").Logger(),
		bulkConcurrency: cfg.BulkConcurrency,
		hourlyHours:     cfg.HourlyHours,
		health:          HealthUnknown,
		snapshots:       make(map[string]snapshotSlot),
	}
}

// Wait blocks until every background task spawned so far has finished.
func (s *Store) Wait() {
	s.background.Wait()
}

// spawn runs fn in a tracked goroutine that keeps the caller's context
// values but not its cancellation.
func (s *Store) spawn(ctx context.Context, name string, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Interface("panic", r).Str("task", name).Msg("background task panicked")
			}
		}()
		fn(ctx)
	}()
}

// RefreshHealth re-checks the backend's health.
func (s *Store) RefreshHealth(ctx context.Context) error {
	s.mu.Lock()
	s.hints.Health = ""
	s.mu.Unlock()

	res, err := s.remote.Health(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.healthCheckedAt = s.clock.Now()
	if err != nil {
		s.health = HealthUnreachable
		s.hints.Health = err.Error()
		return err
	}
	s.health = res.Status
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.locations {
		if s.locations[i].ID == id {
			return i
		}
	}
	return -1
}

type nopRecorder struct{}

func (nopRecorder) SnapshotFetched(string) {}
func (nopRecorder) Seeded(string)          {}
func (nopRecorder) IngestRan(string)       {}
func (nopRecorder) HourlyDiscarded()       {}
