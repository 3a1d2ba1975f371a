package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherdash/weatherdash/internal/dashboard"
	"github.com/weatherdash/weatherdash/internal/loadstate"
	"github.com/weatherdash/weatherdash/internal/weather"
)

func ptr[T any](v T) *T { return &v }

func TestToCurrent_FormatsDisplayValues(t *testing.T) {
	c := toCurrent(weather.CurrentSnapshot{
		LocationID:      "loc-1",
		ObservedAt:      "2024-07-01T03:00:00Z",
		TemperatureC:    ptr(21.46),
		PrecipitationMm: ptr(0.0),
		WeatherCode:     ptr(61),
	})

	assert.Equal(t, "2024-07-01 12:00", c.ObservedAtKST)
	assert.Equal(t, "21.5°", c.Display.Temperature)
	assert.Equal(t, "-", c.Display.ApparentTemperature)
	assert.Equal(t, "0.0mm", c.Display.Precipitation)
	assert.Equal(t, weather.KindRain, c.Visual.Kind)
}

func TestToHourly_ChartURLNeedsTwoPoints(t *testing.T) {
	one := toHourly(weather.HourlySeries{
		Points: []weather.HourlyPoint{{Time: "2024-07-01T00:00", TemperatureC: ptr(20.0)}},
	})
	assert.Empty(t, one.ChartURL)
	assert.Equal(t, "-", one.Temperature.Min)

	two := toHourly(weather.HourlySeries{
		Points: []weather.HourlyPoint{
			{Time: "2024-07-01T00:00", TemperatureC: ptr(20.0)},
			{Time: "2024-07-01T01:00", TemperatureC: ptr(19.0)},
		},
		Temperature: weather.TemperatureStats{Min: ptr(19.0), Max: ptr(20.0), Avg: ptr(19.5)},
	})
	assert.Equal(t, chartPath, two.ChartURL)
	require.Len(t, two.Points, 2)
	assert.Equal(t, "01:00", two.Points[1].HourKST)
	assert.Equal(t, "19.5°", two.Temperature.Avg)
	assert.Equal(t, weather.KindUnknown, two.Points[0].Visual.Kind)
}

func TestSlot(t *testing.T) {
	ready := slot(loadstate.Ready(weather.CurrentSnapshot{LocationID: "loc-1"}), toCurrent)
	assert.Equal(t, "ready", ready.State)
	require.NotNil(t, ready.Data)
	assert.Equal(t, "loc-1", ready.Data.LocationID)

	failed := slot(loadstate.Failed[weather.CurrentSnapshot]("boom"), toCurrent)
	assert.Equal(t, "error", failed.State)
	assert.Equal(t, "boom", failed.Message)
	assert.Nil(t, failed.Data)

	idle := slot(loadstate.Idle[weather.CurrentSnapshot](), toCurrent)
	assert.Equal(t, "idle", idle.State)
	assert.Nil(t, idle.Data)
}

func TestToState(t *testing.T) {
	loc := weather.Location{ID: "loc-1", Name: "Seoul"}
	v := dashboard.View{
		Health:        "UP",
		List:          loadstate.StateReady,
		LocationCount: 1,
		Cards: []dashboard.Card{{
			Location: loc,
			Current:  loadstate.Loading[weather.CurrentSnapshot](),
			Selected: true,
		}},
		SelectedID: "loc-1",
		Detail: &dashboard.Detail{
			Location: loc,
			Current:  loadstate.Loading[weather.CurrentSnapshot](),
			Hourly:   loadstate.Empty[weather.HourlySeries](),
		},
		Ingesting: true,
		LastSeed:  &dashboard.SeedTally{Created: 2, Existed: 1},
	}

	st := toState(v, "seo")

	assert.Equal(t, "UP", st.Health.Status)
	assert.Nil(t, st.Health.CheckedAt)
	assert.Equal(t, "ready", st.List.State)
	assert.Equal(t, 1, st.List.Total)
	assert.Equal(t, "seo", st.Query)
	require.Len(t, st.Locations, 1)
	assert.True(t, st.Locations[0].Selected)
	assert.Equal(t, "loading", st.Locations[0].Current.State)
	require.NotNil(t, st.SelectedID)
	assert.Equal(t, "loc-1", *st.SelectedID)
	require.NotNil(t, st.Detail)
	assert.Equal(t, "empty", st.Detail.Hourly.State)
	assert.True(t, st.Busy.Ingesting)
	assert.Nil(t, st.LastIngestAt)
	require.NotNil(t, st.LastSeed)
	assert.Equal(t, 2, st.LastSeed.Created)
	assert.NotEmpty(t, st.LastSeed.Summary)
}
