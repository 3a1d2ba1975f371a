package middleware

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Metrics holds the OpenTelemetry instruments for inbound HTTP requests.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestTotal     metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
	responseSize     metric.Int64Histogram
}

// NewMetrics creates the HTTP server instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of HTTP requests currently being processed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http.server.response.body.size",
		metric.WithDescription("Size of HTTP server responses in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		requestsInFlight: requestsInFlight,
		responseSize:     responseSize,
	}, nil
}

// Middleware records duration, count and size per method, route and status.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			method := metric.WithAttributes(semconv.HTTPRequestMethodKey.String(r.Method))
			m.requestsInFlight.Add(r.Context(), 1, method)
			defer m.requestsInFlight.Add(r.Context(), -1, method)

			wrapped := newStatusWriter(w)
			next.ServeHTTP(wrapped, r)

			attrs := metric.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRoute(routePattern(r)),
				semconv.HTTPResponseStatusCode(wrapped.statusCode),
				attribute.Bool("error", wrapped.statusCode >= 400),
			)
			m.requestDuration.Record(r.Context(), time.Since(start).Seconds(), attrs)
			m.requestTotal.Add(r.Context(), 1, attrs)
			m.responseSize.Record(r.Context(), wrapped.written, attrs)
		})
	}
}

// ProviderMetrics records outbound calls to upstream services.
type ProviderMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// NewProviderMetrics creates the outbound call instruments.
func NewProviderMetrics() (*ProviderMetrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProviderMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// RecordRequest records one provider call.
func (m *ProviderMetrics) RecordRequest(provider, operation string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
		attribute.Bool("error", err != nil),
	)

	// Recorded after the call, whose context may already be cancelled.
	ctx := context.Background()
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
	m.requestTotal.Add(ctx, 1, attrs)
}
