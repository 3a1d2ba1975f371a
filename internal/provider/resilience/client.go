package resilience

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Predefined errors for resilient operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a request.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming.
	Name string

	// Timeout bounds each individual HTTP call.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after a 5xx or a
	// network error. Zero sends every request exactly once.
	MaxRetries uint64

	// InitialInterval is the first retry backoff interval.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff interval.
	// Default: 5 seconds
	MaxInterval time.Duration

	// CircuitBreaker overrides the breaker settings.
	// If nil, uses DefaultCircuitBreakerConfig.
	CircuitBreaker *CircuitBreakerConfig

	// Registry, when set, has the new client registered under Name.
	Registry *Registry
}

// DefaultClientConfig returns the settings used for backend calls: one
// attempt per request behind a circuit breaker.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      0,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		CircuitBreaker:  &cbConfig,
	}
}

// Client is an HTTP client with circuit breaker protection.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	config         ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: NewCircuitBreaker[*http.Response](cbConfig), //nolint:bodyclose // type param, not response
		config:         cfg,
	}

	if cfg.Registry != nil {
		cfg.Registry.Register(client)
	}

	return client
}

// Do executes req through the circuit breaker. 5xx responses and network
// errors are retried up to MaxRetries times; whether they count against the
// breaker is up to its IsSuccessful setting. Any other response is returned
// as is. When retries are exhausted on a 5xx the last response is returned
// without an error.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	operation := func() error {
		if lastResp != nil {
			lastResp.Body.Close()
			lastResp = nil
		}

		attempt, err := rewind(req)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(attempt)
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= http.StatusInternalServerError {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		var serverErr *ServerError
		if lastResp != nil && errors.As(err, &serverErr) {
			return lastResp, nil
		}
		if lastResp != nil {
			lastResp.Body.Close()
		}
		return nil, err
	}

	return lastResp, nil
}

// rewind returns a request that is safe to send again, re-opening the body
// when the original has one.
func rewind(req *http.Request) (*http.Request, error) {
	attempt := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody || req.GetBody == nil {
		return attempt, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewinding request body: %w", err)
	}
	attempt.Body = body
	return attempt, nil
}

// ServerError represents an HTTP 5xx server error.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// Name returns the configured client name.
func (c *Client) Name() string {
	return c.config.Name
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.circuitBreaker.Counts()
}
