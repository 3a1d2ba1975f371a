package weather_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weatherdash/weatherdash/internal/weather"
)

func TestFormatKST(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"utc instant", "2024-07-01T03:00:00Z", "2024-07-01 12:00"},
		{"fractional seconds", "2024-07-01T15:30:12.123456Z", "2024-07-02 00:30"},
		{"explicit offset", "2024-07-01T12:00:00+09:00", "2024-07-01 12:00"},
		{"local without offset", "2024-07-01T08:00", "2024-07-01 08:00"},
		{"malformed", "yesterday", "yesterday"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, weather.FormatKST(tt.raw))
		})
	}
}

func TestFormatHour(t *testing.T) {
	assert.Equal(t, "09:00", weather.FormatHour("2024-07-01T00:00:00Z"))
	assert.Equal(t, "23:00", weather.FormatHour("2024-07-01T14:00:00Z"))
	assert.Equal(t, "not-a-time", weather.FormatHour("not-a-time"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "-", weather.FormatNumber(nil, "°", 0))
	assert.Equal(t, "-", weather.FormatNumber(floatPtr(math.NaN()), "°", 0))
	assert.Equal(t, "21°", weather.FormatNumber(floatPtr(21.4), "°", 0))
	assert.Equal(t, "0.3mm", weather.FormatNumber(floatPtr(0.26), "mm", 1))
	assert.Equal(t, "0.0mm", weather.FormatNumber(floatPtr(0), "mm", 1))
}
