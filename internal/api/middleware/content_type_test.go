package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weatherdash/weatherdash/internal/api/middleware"
)

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"json", http.MethodPost, "application/json", http.StatusOK},
		{"json with charset", http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{"missing content type", http.MethodPost, "", http.StatusOK},
		{"form body", http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"text on put", http.MethodPut, "text/plain", http.StatusUnsupportedMediaType},
		{"malformed", http.MethodPost, "application/", http.StatusUnsupportedMediaType},
		{"get ignores header", http.MethodGet, "text/plain", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequireJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/v1/locations", strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnsupportedMediaType {
				assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
			}
		})
	}
}
