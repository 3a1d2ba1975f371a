// Package weather holds the dashboard's weather domain types and the pure
// helpers that turn them into display values.
package weather

import (
	"errors"
	"math"
)

// Weather errors.
var (
	ErrInvalidCoordinates = errors.New("latitude and longitude must be decimal numbers")
)

// Location is a tracked geographic point. The canonical list lives in the
// backend; the dashboard only mirrors it.
type Location struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64

	// CreatedAt is the raw ISO-8601 instant as reported by the backend.
	CreatedAt string
}

// NewLocation is the input for registering a location with the backend.
type NewLocation struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// CurrentSnapshot is the most recent observation stored for a location.
// Numeric fields are nil when the backend has no value for them.
type CurrentSnapshot struct {
	LocationID           string
	ObservedAt           string
	TemperatureC         *float64
	ApparentTemperatureC *float64
	PrecipitationMm      *float64
	WeatherCode          *int
	Source               string
}

// HourlyPoint is one hour of forecast data.
type HourlyPoint struct {
	Time                 string
	TemperatureC         *float64
	ApparentTemperatureC *float64
	WeatherCode          *int
}

// TemperatureStats summarises a series. All fields are nil for a series
// without values.
type TemperatureStats struct {
	Min *float64
	Max *float64
	Avg *float64
}

// HourlySeries is the forecast for a location over a requested horizon.
// It is always replaced as a whole.
type HourlySeries struct {
	LocationID          string
	Hours               int
	FetchedAt           string
	Points              []HourlyPoint
	Temperature         TemperatureStats
	ApparentTemperature TemperatureStats
}

// Health is the backend's health probe result.
type Health struct {
	Status string
}

// Finite reports whether v holds a usable number.
func Finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
