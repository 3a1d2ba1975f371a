package backend

import "github.com/weatherdash/weatherdash/internal/weather"

// Wire types for the backend's JSON API.

type healthResponse struct {
	Status string `json:"status"`
}

type createLocationRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type locationResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CreatedAt string  `json:"createdAt"`
}

func (r *locationResponse) toDomain() weather.Location {
	return weather.Location{
		ID:        r.ID,
		Name:      r.Name,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		CreatedAt: r.CreatedAt,
	}
}

type currentResponse struct {
	LocationID           string   `json:"locationId"`
	ObservedAt           string   `json:"observedAt"`
	TemperatureC         *float64 `json:"temperatureC"`
	ApparentTemperatureC *float64 `json:"apparentTemperatureC"`
	PrecipitationMm      *float64 `json:"precipitationMm"`
	WeatherCode          *int     `json:"weatherCode"`
	Source               string   `json:"source"`
}

func (r *currentResponse) toDomain() weather.CurrentSnapshot {
	return weather.CurrentSnapshot{
		LocationID:           r.LocationID,
		ObservedAt:           r.ObservedAt,
		TemperatureC:         r.TemperatureC,
		ApparentTemperatureC: r.ApparentTemperatureC,
		PrecipitationMm:      r.PrecipitationMm,
		WeatherCode:          r.WeatherCode,
		Source:               r.Source,
	}
}

type hourlyPoint struct {
	Time                 string   `json:"time"`
	TemperatureC         *float64 `json:"temperatureC"`
	ApparentTemperatureC *float64 `json:"apparentTemperatureC"`
	WeatherCode          *int     `json:"weatherCode"`
}

type stats struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
	Avg *float64 `json:"avg"`
}

func (s stats) toDomain() weather.TemperatureStats {
	return weather.TemperatureStats{Min: s.Min, Max: s.Max, Avg: s.Avg}
}

type hourlyResponse struct {
	LocationID          string        `json:"locationId"`
	Hours               int           `json:"hours"`
	FetchedAt           string        `json:"fetchedAt"`
	Points              []hourlyPoint `json:"points"`
	Temperature         stats         `json:"temperature"`
	ApparentTemperature stats         `json:"apparentTemperature"`
}

func (r *hourlyResponse) toDomain() weather.HourlySeries {
	points := make([]weather.HourlyPoint, 0, len(r.Points))
	for _, p := range r.Points {
		points = append(points, weather.HourlyPoint{
			Time:                 p.Time,
			TemperatureC:         p.TemperatureC,
			ApparentTemperatureC: p.ApparentTemperatureC,
			WeatherCode:          p.WeatherCode,
		})
	}

	return weather.HourlySeries{
		LocationID:          r.LocationID,
		Hours:               r.Hours,
		FetchedAt:           r.FetchedAt,
		Points:              points,
		Temperature:         r.Temperature.toDomain(),
		ApparentTemperature: r.ApparentTemperature.toDomain(),
	}
}
