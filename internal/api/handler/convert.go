package handler

import (
	"github.com/weatherdash/weatherdash/internal/api/models"
	"github.com/weatherdash/weatherdash/internal/dashboard"
	"github.com/weatherdash/weatherdash/internal/loadstate"
	"github.com/weatherdash/weatherdash/internal/weather"
)

const chartPath = "/v1/hourly/chart.svg"

func toState(v dashboard.View, query string) models.State {
	st := models.State{
		Health: models.BackendHealth{
			Status:    v.Health,
			CheckedAt: models.NewTimestamp(v.HealthCheckedAt),
		},
		List: models.ListState{
			State:   v.List.String(),
			Message: v.ListMessage,
			Total:   v.LocationCount,
		},
		Query:     query,
		Locations: make([]models.Card, 0, len(v.Cards)),
		Hints: models.Hints{
			Form:   v.Hints.Form,
			Seed:   v.Hints.Seed,
			Hourly: v.Hints.Hourly,
			Health: v.Hints.Health,
		},
		Busy: models.Busy{
			Seeding:   v.Seeding,
			Ingesting: v.Ingesting,
		},
		LastIngestAt: models.NewTimestamp(v.LastIngestAt),
	}

	for _, c := range v.Cards {
		st.Locations = append(st.Locations, models.Card{
			Location: toLocation(c.Location),
			Current:  slot(c.Current, toCurrent),
			Selected: c.Selected,
		})
	}

	if v.SelectedID != "" {
		id := v.SelectedID
		st.SelectedID = &id
	}
	if v.Detail != nil {
		st.Detail = &models.Detail{
			Location: toLocation(v.Detail.Location),
			Current:  slot(v.Detail.Current, toCurrent),
			Hourly:   slot(v.Detail.Hourly, toHourly),
		}
	}
	if v.LastSeed != nil {
		tally := toTally(*v.LastSeed)
		st.LastSeed = &tally
	}

	return st
}

func slot[T, D any](e loadstate.Entry[T], convert func(T) D) models.Slot[D] {
	s := models.Slot[D]{
		State:   e.State().String(),
		Message: e.Message(),
	}
	if data, ok := e.Data(); ok {
		d := convert(data)
		s.Data = &d
	}
	return s
}

func toLocation(l weather.Location) models.Location {
	return models.Location{
		ID:        l.ID,
		Name:      l.Name,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		CreatedAt: l.CreatedAt,
	}
}

func toCurrent(c weather.CurrentSnapshot) models.Current {
	return models.Current{
		LocationID:           c.LocationID,
		ObservedAt:           c.ObservedAt,
		ObservedAtKST:        weather.FormatKST(c.ObservedAt),
		TemperatureC:         c.TemperatureC,
		ApparentTemperatureC: c.ApparentTemperatureC,
		PrecipitationMm:      c.PrecipitationMm,
		WeatherCode:          c.WeatherCode,
		Source:               c.Source,
		Visual:               weather.Describe(c.WeatherCode),
		Display: models.CurrentDisplay{
			Temperature:         weather.FormatNumber(c.TemperatureC, "°", 1),
			ApparentTemperature: weather.FormatNumber(c.ApparentTemperatureC, "°", 1),
			Precipitation:       weather.FormatNumber(c.PrecipitationMm, "mm", 1),
		},
	}
}

func toHourly(h weather.HourlySeries) models.Hourly {
	out := models.Hourly{
		LocationID:          h.LocationID,
		Hours:               h.Hours,
		FetchedAt:           h.FetchedAt,
		FetchedAtKST:        weather.FormatKST(h.FetchedAt),
		Points:              make([]models.HourlyPoint, 0, len(h.Points)),
		Temperature:         toStats(h.Temperature),
		ApparentTemperature: toStats(h.ApparentTemperature),
	}
	if len(h.Points) >= 2 {
		out.ChartURL = chartPath
	}
	for _, p := range h.Points {
		out.Points = append(out.Points, models.HourlyPoint{
			Time:                 p.Time,
			HourKST:              weather.FormatHour(p.Time),
			TemperatureC:         p.TemperatureC,
			ApparentTemperatureC: p.ApparentTemperatureC,
			WeatherCode:          p.WeatherCode,
			Visual:               weather.Describe(p.WeatherCode),
		})
	}
	return out
}

func toStats(s weather.TemperatureStats) models.Stats {
	return models.Stats{
		Min: weather.FormatNumber(s.Min, "°", 1),
		Max: weather.FormatNumber(s.Max, "°", 1),
		Avg: weather.FormatNumber(s.Avg, "°", 1),
	}
}

func toTally(t dashboard.SeedTally) models.SeedTally {
	return models.SeedTally{
		Created: t.Created,
		Existed: t.Existed,
		Failed:  t.Failed,
		Summary: t.String(),
	}
}
