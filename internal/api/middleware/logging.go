package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// statusWriter records the status code and body size written by a handler.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *statusWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func (rw *statusWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// routePattern returns the matched chi route, or the raw path outside a
// chi router. Only meaningful once the handler has run.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// Logger returns a middleware that logs one line per request. Server errors
// log at error level and client errors at warn.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newStatusWriter(w)

			next.ServeHTTP(wrapped, r)

			var event *zerolog.Event
			switch {
			case wrapped.statusCode >= 500:
				event = log.Error()
			case wrapped.statusCode >= 400:
				event = log.Warn()
			default:
				event = log.Info()
			}

			spanCtx := trace.SpanContextFromContext(r.Context())
			if spanCtx.IsValid() {
				event = event.
					Str("trace_id", spanCtx.TraceID().String()).
					Str("span_id", spanCtx.SpanID().String())
			}

			event.
				Str("request_id", GetRequestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", wrapped.statusCode).
				Int64("bytes", wrapped.written).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("request completed")
		})
	}
}
