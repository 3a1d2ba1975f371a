// Package scheduler runs the ingest trigger on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrNoSpec is returned by New when no cron spec is configured.
var ErrNoSpec = errors.New("scheduler: empty cron spec")

// Job is the scheduled work.
type Job func(ctx context.Context) error

// Config holds the scheduler settings.
type Config struct {
	// Name identifies the job in logs.
	Name string
	// Spec is a five-field cron expression or a descriptor such as "@daily".
	Spec string
	Job  Job
	// Timeout bounds one run. Zero means no limit.
	Timeout time.Duration
	Clock   clockwork.Clock
	Logger  zerolog.Logger
}

// Status describes the most recent run.
type Status struct {
	Name      string    `json:"name"`
	Spec      string    `json:"spec"`
	Runs      int       `json:"runs"`
	Running   bool      `json:"running"`
	LastRunAt time.Time `json:"lastRunAt,omitzero"`
	LastError string    `json:"lastError,omitempty"`
	NextRunAt time.Time `json:"nextRunAt,omitzero"`
}

// Scheduler triggers a Job on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron    *cron.Cron
	entry   cron.EntryID
	name    string
	spec    string
	job     Job
	timeout time.Duration
	clock   clockwork.Clock
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	runs    int
	running bool
	lastRun time.Time
	lastErr error
}

// New parses the spec and registers the job. It does not start the schedule.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Spec == "" {
		return nil, ErrNoSpec
	}
	if cfg.Job == nil {
		return nil, errors.New("scheduler: nil job")
	}
	if cfg.Name == "" {
		cfg.Name = "ingest"
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	logger := cfg.Logger.With().Str("component", "scheduler").Str("job", cfg.Name).Logger()
	cronLogger := cronLog{logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		name:    cfg.Name,
		spec:    cfg.Spec,
		job:     cfg.Job,
		timeout: cfg.Timeout,
		clock:   cfg.Clock,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	s.cron = cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	id, err := s.cron.AddFunc(cfg.Spec, func() { _ = s.RunNow(s.ctx) })
	if err != nil {
		cancel()
		return nil, fmt.Errorf("parsing cron spec %q: %w", cfg.Spec, err)
	}
	s.entry = id

	return s, nil
}

// Start begins firing the job in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Str("spec", s.spec).Time("next_run", s.cron.Entry(s.entry).Next).Msg("scheduler started")
}

// Stop halts the schedule, cancels a running job and waits for it to return
// or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()

	select {
	case <-done.Done():
		s.logger.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s job: %w", s.name, ctx.Err())
	}
}

// RunNow runs the job once in the caller's goroutine and records the result.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	start := s.clock.Now()
	err := s.job(ctx)
	elapsed := s.clock.Since(start)

	s.mu.Lock()
	s.running = false
	s.runs++
	s.lastRun = start
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Dur("duration", elapsed).Msg("scheduled run failed")
		return err
	}
	s.logger.Info().Dur("duration", elapsed).Msg("scheduled run completed")
	return nil
}

// Status reports the run count, the last outcome and the next fire time.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	st := Status{
		Name:      s.name,
		Spec:      s.spec,
		Runs:      s.runs,
		Running:   s.running,
		LastRunAt: s.lastRun,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.mu.Unlock()

	st.NextRunAt = s.cron.Entry(s.entry).Next
	return st
}

// cronLog adapts zerolog to cron.Logger.
type cronLog struct {
	logger zerolog.Logger
}

func (l cronLog) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLog) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
