package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/weatherdash/weatherdash/internal/weather"
)

// Slot is a loadable value: state is idle, loading, ready, empty or error.
type Slot[T any] struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	Data    *T     `json:"data,omitempty"`
}

// Location is a tracked location.
type Location struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CreatedAt string  `json:"createdAt"`
}

// Current is a current-conditions snapshot with display values.
type Current struct {
	LocationID           string         `json:"locationId"`
	ObservedAt           string         `json:"observedAt"`
	ObservedAtKST        string         `json:"observedAtKst"`
	TemperatureC         *float64       `json:"temperatureC"`
	ApparentTemperatureC *float64       `json:"apparentTemperatureC"`
	PrecipitationMm      *float64       `json:"precipitationMm"`
	WeatherCode          *int           `json:"weatherCode"`
	Source               string         `json:"source"`
	Visual               weather.Visual `json:"visual"`
	Display              CurrentDisplay `json:"display"`
}

// CurrentDisplay holds pre-formatted strings; missing values render as "-".
type CurrentDisplay struct {
	Temperature         string `json:"temperature"`
	ApparentTemperature string `json:"apparentTemperature"`
	Precipitation       string `json:"precipitation"`
}

// Card is one entry of the location list.
type Card struct {
	Location Location      `json:"location"`
	Current  Slot[Current] `json:"current"`
	Selected bool          `json:"selected"`
}

// HourlyPoint is one forecast hour.
type HourlyPoint struct {
	Time                 string         `json:"time"`
	HourKST              string         `json:"hourKst"`
	TemperatureC         *float64       `json:"temperatureC"`
	ApparentTemperatureC *float64       `json:"apparentTemperatureC"`
	WeatherCode          *int           `json:"weatherCode"`
	Visual               weather.Visual `json:"visual"`
}

// Stats summarises a series, pre-formatted.
type Stats struct {
	Min string `json:"min"`
	Max string `json:"max"`
	Avg string `json:"avg"`
}

// Hourly is the forecast of the selected location.
type Hourly struct {
	LocationID          string        `json:"locationId"`
	Hours               int           `json:"hours"`
	FetchedAt           string        `json:"fetchedAt"`
	FetchedAtKST        string        `json:"fetchedAtKst"`
	Points              []HourlyPoint `json:"points"`
	Temperature         Stats         `json:"temperature"`
	ApparentTemperature Stats         `json:"apparentTemperature"`
	ChartURL            string        `json:"chartUrl,omitempty"`
}

// Detail is the selected location with its current and hourly slots.
type Detail struct {
	Location Location      `json:"location"`
	Current  Slot[Current] `json:"current"`
	Hourly   Slot[Hourly]  `json:"hourly"`
}

// BackendHealth is the last backend probe.
type BackendHealth struct {
	Status    string     `json:"status"`
	CheckedAt *Timestamp `json:"checkedAt,omitempty"`
}

// ListState is the load state of the location list.
type ListState struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	Total   int    `json:"total"`
}

// Hints are user-facing messages from the last operations.
type Hints struct {
	Form   string `json:"form,omitempty"`
	Seed   string `json:"seed,omitempty"`
	Hourly string `json:"hourly,omitempty"`
	Health string `json:"health,omitempty"`
}

// Busy flags long-running operations so views can disable their triggers.
type Busy struct {
	Seeding   bool `json:"seeding"`
	Ingesting bool `json:"ingesting"`
}

// SeedTally counts the outcome of seeding a preset.
type SeedTally struct {
	Created int    `json:"created"`
	Existed int    `json:"existed"`
	Failed  int    `json:"failed"`
	Summary string `json:"summary"`
}

// State is the full dashboard view.
type State struct {
	Health       BackendHealth `json:"health"`
	List         ListState     `json:"list"`
	Query        string        `json:"query,omitempty"`
	Locations    []Card        `json:"locations"`
	SelectedID   *string       `json:"selectedId"`
	Detail       *Detail       `json:"detail"`
	Hints        Hints         `json:"hints"`
	Busy         Busy          `json:"busy"`
	LastIngestAt *Timestamp    `json:"lastIngestAt,omitempty"`
	LastSeed     *SeedTally    `json:"lastSeed,omitempty"`
}

// Coordinate is a latitude or longitude as typed by the user. It accepts a
// JSON string or number and keeps the raw text for validation.
type Coordinate string

// UnmarshalJSON implements json.Unmarshaler for Coordinate.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Coordinate(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("coordinate must be a number or string: %w", err)
		}
		*c = Coordinate(n.String())
	}
	return nil
}

// CreateLocationRequest is the body of POST /v1/locations.
type CreateLocationRequest struct {
	Name      string     `json:"name"`
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

// SelectRequest is the body of PUT /v1/selection. A null or empty
// locationId clears the selection.
type SelectRequest struct {
	LocationID *string `json:"locationId"`
}

// LocationList is the response of POST /v1/locations:refresh.
type LocationList struct {
	Items []Location `json:"items"`
}

// IngestResult is the response of POST /v1/ingest.
type IngestResult struct {
	Locations    int        `json:"locations"`
	LastIngestAt *Timestamp `json:"lastIngestAt,omitempty"`
}
