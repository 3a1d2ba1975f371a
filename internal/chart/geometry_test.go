package chart_test

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherdash/weatherdash/internal/chart"
	"github.com/weatherdash/weatherdash/internal/weather"
)

func f(v float64) *float64 { return &v }

func series(temps ...*float64) []weather.HourlyPoint {
	points := make([]weather.HourlyPoint, len(temps))
	for i, v := range temps {
		points[i] = weather.HourlyPoint{
			Time:         fmt.Sprintf("2024-07-01T%02d:00:00Z", i%24),
			TemperatureC: v,
		}
	}
	return points
}

func TestCompute_InsufficientData(t *testing.T) {
	_, err := chart.Compute(nil, chart.DefaultCanvas())
	require.ErrorIs(t, err, chart.ErrInsufficientData)

	_, err = chart.Compute(series(f(10)), chart.DefaultCanvas())
	require.ErrorIs(t, err, chart.ErrInsufficientData)
}

func TestCompute_GapSplitsPath(t *testing.T) {
	g, err := chart.Compute(series(f(10), nil, f(14)), chart.DefaultCanvas())
	require.NoError(t, err)

	require.Len(t, g.Temperature, 3)
	assert.True(t, g.Temperature[0].Valid)
	assert.False(t, g.Temperature[1].Valid)
	assert.True(t, g.Temperature[2].Valid)

	path := chart.Path(g.Temperature)
	assert.Equal(t, 2, strings.Count(path, "M"), "one sub-path per side of the gap")
	assert.NotContains(t, path, "L", "no segment bridges the gap")
	assert.Equal(t, "M44.0 "+oneDecimal(g.Temperature[0].Y)+" M744.0 "+oneDecimal(g.Temperature[2].Y), path)
	assert.NotContains(t, path, "394.0", "the missing point is never visited")
}

func oneDecimal(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func TestCompute_Coordinates(t *testing.T) {
	canvas := chart.DefaultCanvas()
	g, err := chart.Compute(series(f(10), f(20)), canvas)
	require.NoError(t, err)

	// range 10..20 pads by max(1.5, 1.0) = 1.5
	assert.InDelta(t, 8.5, g.YMin, 1e-9)
	assert.InDelta(t, 21.5, g.YMax, 1e-9)

	assert.InDelta(t, 44, g.Temperature[0].X, 1e-9)
	assert.InDelta(t, 744, g.Temperature[1].X, 1e-9)

	innerH := canvas.InnerHeight()
	assert.InDelta(t, 18+(1-1.5/13)*innerH, g.Temperature[0].Y, 1e-9)
	assert.InDelta(t, 18+(1-11.5/13)*innerH, g.Temperature[1].Y, 1e-9)
	assert.Less(t, g.Temperature[1].Y, g.Temperature[0].Y, "warmer sits higher")
}

func TestCompute_WideRangeUsesProportionalPad(t *testing.T) {
	g, err := chart.Compute(series(f(-10), f(30)), chart.DefaultCanvas())
	require.NoError(t, err)

	assert.InDelta(t, -14, g.YMin, 1e-9)
	assert.InDelta(t, 34, g.YMax, 1e-9)
}

func TestCompute_ConstantSeriesKeepsHeight(t *testing.T) {
	g, err := chart.Compute(series(f(20), f(20), f(20), f(20)), chart.DefaultCanvas())
	require.NoError(t, err)

	assert.InDelta(t, 18.5, g.YMin, 1e-9)
	assert.InDelta(t, 21.5, g.YMax, 1e-9)
	assert.Greater(t, g.YMax-g.YMin, 0.0)

	for _, c := range g.Temperature {
		assert.False(t, math.IsNaN(c.Y))
		assert.InDelta(t, g.Temperature[0].Y, c.Y, 1e-9)
	}
}

func TestCompute_NoValuesDefaultsAroundZero(t *testing.T) {
	g, err := chart.Compute(series(nil, nil, nil), chart.DefaultCanvas())
	require.NoError(t, err)

	assert.InDelta(t, -1.5, g.YMin, 1e-9)
	assert.InDelta(t, 1.5, g.YMax, 1e-9)
	assert.Empty(t, chart.Path(g.Temperature))
}

func TestCompute_NonFiniteIsInvalid(t *testing.T) {
	g, err := chart.Compute(series(f(math.NaN()), f(12), f(math.Inf(1))), chart.DefaultCanvas())
	require.NoError(t, err)

	assert.False(t, g.Temperature[0].Valid)
	assert.True(t, g.Temperature[1].Valid)
	assert.False(t, g.Temperature[2].Valid)
}

func TestCompute_SharedDomainAcrossSeries(t *testing.T) {
	points := []weather.HourlyPoint{
		{Time: "2024-07-01T00:00:00Z", TemperatureC: f(20), ApparentTemperatureC: f(25)},
		{Time: "2024-07-01T01:00:00Z", TemperatureC: f(22), ApparentTemperatureC: nil},
	}

	g, err := chart.Compute(points, chart.DefaultCanvas())
	require.NoError(t, err)

	assert.InDelta(t, 18.5, g.YMin, 1e-9)
	assert.InDelta(t, 26.5, g.YMax, 1e-9)
	assert.True(t, g.Apparent[0].Valid)
	assert.False(t, g.Apparent[1].Valid)
	assert.Less(t, g.Apparent[0].Y, g.Temperature[0].Y)
}

func TestCompute_YTicks(t *testing.T) {
	g, err := chart.Compute(series(f(10), f(20)), chart.DefaultCanvas())
	require.NoError(t, err)

	require.Len(t, g.YTicks, 5)
	assert.InDelta(t, g.YMin, g.YTicks[0], 1e-9)
	assert.InDelta(t, g.YMax, g.YTicks[4], 1e-9)
	assert.InDelta(t, (g.YMin+g.YMax)/2, g.YTicks[2], 1e-9)
}

func TestCompute_XTicks(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{2, []int{0, 1}},
		{5, []int{0, 4}},
		{8, []int{0, 6, 7}},
		{13, []int{0, 6, 12}},
		{24, []int{0, 6, 12, 18, 23}},
		{25, []int{0, 6, 12, 18, 24}},
		{48, []int{0, 6, 12, 18, 24}},
	}

	for _, tt := range tests {
		temps := make([]*float64, tt.n)
		for i := range temps {
			temps[i] = f(float64(i))
		}
		g, err := chart.Compute(series(temps...), chart.DefaultCanvas())
		require.NoError(t, err)
		assert.Equal(t, tt.want, g.XTicks, "n=%d", tt.n)
	}
}

func TestPath(t *testing.T) {
	coords := []chart.Coord{
		{X: 44, Y: 100.04, Valid: true},
		{X: 60.26, Y: 90, Valid: true},
		{X: 80, Y: 0, Valid: false},
		{X: 100, Y: 50.55, Valid: true},
	}
	assert.Equal(t, "M44.0 100.0 L60.3 90.0 M100.0 50.5", chart.Path(coords))
	assert.Empty(t, chart.Path(nil))
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	err := chart.RenderSVG(&buf, series(f(10), nil, f(14)), chart.DefaultCanvas())
	require.NoError(t, err)

	svg := buf.String()
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, `viewBox="0 0 760 240"`)
	assert.Contains(t, svg, "09:00", "hour labels are KST")
	assert.Equal(t, 2, strings.Count(svg, "<path "))
}

func TestRenderSVG_InsufficientData(t *testing.T) {
	var buf bytes.Buffer
	err := chart.RenderSVG(&buf, series(f(10)), chart.DefaultCanvas())
	require.ErrorIs(t, err, chart.ErrInsufficientData)
	assert.Zero(t, buf.Len())
}
