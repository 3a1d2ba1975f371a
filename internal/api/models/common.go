// Package models provides request and response bodies for the dashboard API.
package models

import (
	"fmt"
	"time"
)

// HealthStatus represents the health status of a service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp is a time.Time that marshals as RFC 3339.
type Timestamp time.Time

// NewTimestamp returns nil for the zero time.
func NewTimestamp(t time.Time) *Timestamp {
	if t.IsZero() {
		return nil
	}
	ts := Timestamp(t)
	return &ts
}

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string, got %s", s)
	}
	parsed, err := time.Parse(time.RFC3339, s[1:len(s)-1])
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
