// Package middleware provides HTTP middleware for the dashboard API.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const maxRequestIDLength = 128

// requestIDKey is the context key for the request ID.
type requestIDKey struct{}

// RequestID propagates a caller's X-Request-Id or generates one, stores it
// in the request context and echoes it in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if !validRequestID(requestID) {
			requestID = "req_" + uuid.NewString()
		}

		w.Header().Set("X-Request-Id", requestID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validRequestID accepts non-empty printable ASCII up to maxRequestIDLength.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
