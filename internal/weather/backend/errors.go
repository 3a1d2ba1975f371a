package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the backend. Status is the only
// machine-readable part; Message is for display.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// problem is the RFC 7807 envelope the backend uses for errors.
type problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func newAPIError(status int, contentType string, body []byte) *APIError {
	return &APIError{Status: status, Message: errorMessage(status, contentType, body)}
}

// errorMessage picks the most useful text for a failed response: the
// problem detail, then its title, then the raw body, then the status phrase.
func errorMessage(status int, contentType string, body []byte) string {
	if strings.Contains(strings.ToLower(contentType), "json") {
		var p problem
		if err := json.Unmarshal(body, &p); err == nil {
			if p.Detail != "" {
				return p.Detail
			}
			if p.Title != "" {
				return p.Title
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "request failed"
}

// StatusOf returns the HTTP status carried by err, or 0 when err is nil or
// did not come from a backend response.
func StatusOf(err error) int {
	if apiErr, ok := errorsAs(err); ok {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the backend.
func IsConflict(err error) bool {
	return StatusOf(err) == http.StatusConflict
}

func errorsAs(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
