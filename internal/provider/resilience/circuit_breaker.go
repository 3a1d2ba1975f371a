// Package resilience wraps the HTTP client used for backend calls with a
// circuit breaker, a per-request timeout and an optional retry policy.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the breaker in logs and health reports.
	Name string

	// MaxRequests is the number of requests allowed through while half-open.
	// Size it to at least one fan-out batch.
	// Default: 8
	MaxRequests uint32

	// Interval is the cyclic period for clearing counts while closed.
	// Default: 0 (never cleared)
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	// Default: 30 seconds
	Timeout time.Duration

	// ReadyToTrip decides when to open. Defaults to DefaultReadyToTrip.
	ReadyToTrip func(counts gobreaker.Counts) bool

	// IsSuccessful decides which errors count against the breaker. Nil
	// counts every error, including *ServerError.
	IsSuccessful func(err error) bool

	// OnStateChange is called on every state transition.
	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

// DefaultCircuitBreakerConfig returns the breaker settings used for the
// weather backend.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  DefaultHalfOpenRequests,
		Timeout:      30 * time.Second,
		ReadyToTrip:  DefaultReadyToTrip,
		IsSuccessful: TransportFailuresOnly,
	}
}

// DefaultHalfOpenRequests matches the dashboard's default bulk concurrency.
const DefaultHalfOpenRequests = 32

// TransportFailuresOnly counts only connection errors and timeouts against
// the breaker. A 5xx answer and the caller's own cancellation are successes.
func TransportFailuresOnly(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}

// DefaultReadyToTrip opens the breaker after five consecutive failures.
func DefaultReadyToTrip(counts gobreaker.Counts) bool {
	return counts.ConsecutiveFailures >= 5
}

// NewCircuitBreaker creates a typed circuit breaker from cfg.
func NewCircuitBreaker[T any](cfg CircuitBreakerConfig) *gobreaker.CircuitBreaker[T] {
	readyToTrip := cfg.ReadyToTrip
	if readyToTrip == nil {
		readyToTrip = DefaultReadyToTrip
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: readyToTrip,
	}

	if cfg.IsSuccessful != nil {
		settings.IsSuccessful = cfg.IsSuccessful
	}

	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}

	return gobreaker.NewCircuitBreaker[T](settings)
}
