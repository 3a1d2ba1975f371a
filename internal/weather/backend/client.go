// Package backend is the HTTP client for the weather backend that owns
// locations, ingestion and stored observations.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/weatherdash/weatherdash/internal/provider/resilience"
	"github.com/weatherdash/weatherdash/internal/weather"
)

const (
	// ProviderName identifies the backend in health reports and metrics.
	ProviderName = "weather-backend"

	// DefaultBaseURL is where the backend listens in local development.
	DefaultBaseURL = "http://localhost:8081"

	// DefaultHours is the forecast horizon requested when none is given.
	DefaultHours = 24

	// MaxHours is the largest horizon the backend serves.
	MaxHours = 168

	tracerName = "github.com/weatherdash/weatherdash/internal/weather/backend"
)

// Recorder receives the duration and outcome of every backend call.
type Recorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	// BaseURL is the backend root, e.g. http://localhost:8081.
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client that never retries.
	HTTPClient *resilience.Client

	// Registry receives success and failure reports (optional).
	Registry *resilience.Registry

	// Metrics records request durations (optional).
	Metrics Recorder

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client talks to the weather backend.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	registry   *resilience.Registry
	metrics    Recorder
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// NewClient creates a backend client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		rc.Registry = cfg.Registry
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		registry:   cfg.Registry,
		metrics:    cfg.Metrics,
		tracer:     otel.Tracer(tracerName),
		logger:     cfg.Logger,
	}
}

// Health fetches the backend's health status.
func (c *Client) Health(ctx context.Context) (*weather.Health, error) {
	var out healthResponse
	if err := c.do(ctx, "health", http.MethodGet, "/actuator/health", nil, &out); err != nil {
		return nil, err
	}
	return &weather.Health{Status: out.Status}, nil
}

// ListLocations fetches every registered location.
func (c *Client) ListLocations(ctx context.Context) ([]weather.Location, error) {
	var out []locationResponse
	if err := c.do(ctx, "list_locations", http.MethodGet, "/api/v1/locations", nil, &out); err != nil {
		return nil, err
	}

	locations := make([]weather.Location, 0, len(out))
	for i := range out {
		locations = append(locations, out[i].toDomain())
	}
	return locations, nil
}

// CreateLocation registers a new location. A location that already exists
// yields an *APIError with status 409.
func (c *Client) CreateLocation(ctx context.Context, in weather.NewLocation) (*weather.Location, error) {
	body := createLocationRequest{
		Name:      in.Name,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}

	var out locationResponse
	if err := c.do(ctx, "create_location", http.MethodPost, "/api/v1/locations", body, &out); err != nil {
		return nil, err
	}

	loc := out.toDomain()
	return &loc, nil
}

// RunIngest asks the backend to pull fresh observations for every location.
func (c *Client) RunIngest(ctx context.Context) error {
	return c.do(ctx, "run_ingest", http.MethodPost, "/api/v1/ingest/run", nil, nil)
}

// GetCurrentWeather fetches the latest stored snapshot for a location.
// A location without a snapshot yields an *APIError with status 404.
func (c *Client) GetCurrentWeather(ctx context.Context, locationID string) (*weather.CurrentSnapshot, error) {
	path := "/api/v1/locations/" + url.PathEscape(locationID) + "/weather/current"

	var out currentResponse
	if err := c.do(ctx, "current_weather", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	snapshot := out.toDomain()
	return &snapshot, nil
}

// GetHourlyWeather fetches the hourly forecast for a location. hours is
// clamped to 1..MaxHours; zero means DefaultHours.
func (c *Client) GetHourlyWeather(ctx context.Context, locationID string, hours int) (*weather.HourlySeries, error) {
	hours = ClampHours(hours)

	path := "/api/v1/locations/" + url.PathEscape(locationID) + "/weather/hourly?hours=" + strconv.Itoa(hours)

	var out hourlyResponse
	if err := c.do(ctx, "hourly_weather", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	series := out.toDomain()
	return &series, nil
}

// ClampHours normalises a requested forecast horizon.
func ClampHours(hours int) int {
	switch {
	case hours == 0:
		return DefaultHours
	case hours < 1:
		return 1
	case hours > MaxHours:
		return MaxHours
	default:
		return hours
	}
}

// do performs one request. in is JSON encoded when non-nil; out is decoded
// from the body unless the response is empty.
func (c *Client) do(ctx context.Context, operation, method, path string, in, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "backend."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("provider.operation", operation),
		),
	)
	start := time.Now()

	defer func() {
		c.observe(operation, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, resp.Header.Get("Content-Type"), raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) observe(operation string, duration time.Duration, err error) {
	if c.metrics != nil {
		c.metrics.RecordRequest(ProviderName, operation, duration, err)
	}

	// 404 and 409 are answers, not backend failures.
	failed := err != nil && !IsNotFound(err) && !IsConflict(err)

	if c.registry != nil {
		if failed {
			c.registry.RecordFailure(c.httpClient.Name(), err)
		} else {
			c.registry.RecordSuccess(c.httpClient.Name())
		}
	}

	event := c.logger.Debug()
	if failed {
		event = c.logger.Warn().Err(err)
	}
	event.
		Str("operation", operation).
		Dur("duration", duration).
		Int("status", StatusOf(err)).
		Msg("backend call")
}
