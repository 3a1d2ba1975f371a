// Package chart lays out the hourly temperature chart: plotting coordinates
// for the temperature and apparent temperature series, shared axis ticks and
// SVG path data.
package chart

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/weatherdash/weatherdash/internal/weather"
)

// ErrInsufficientData is returned when fewer than two points are given.
var ErrInsufficientData = errors.New("at least two points are needed to draw a chart")

const (
	minPad       = 1.5
	padRatio     = 0.1
	gridLines    = 4
	xTickStepHrs = 6
	xTickMaxHrs  = 24
)

// Margins are the insets between the canvas edge and the plotting area.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Canvas is the drawing surface in SVG user units.
type Canvas struct {
	Width   float64
	Height  float64
	Margins Margins
}

// DefaultCanvas is the dashboard's chart size.
func DefaultCanvas() Canvas {
	return Canvas{
		Width:   760,
		Height:  240,
		Margins: Margins{Top: 18, Right: 16, Bottom: 34, Left: 44},
	}
}

// InnerWidth is the plotting width inside the margins.
func (c Canvas) InnerWidth() float64 {
	return c.Width - c.Margins.Left - c.Margins.Right
}

// InnerHeight is the plotting height inside the margins.
func (c Canvas) InnerHeight() float64 {
	return c.Height - c.Margins.Top - c.Margins.Bottom
}

// Coord is one plotted sample. Invalid coordinates have no underlying value
// and must not be drawn.
type Coord struct {
	X     float64
	Y     float64
	Valid bool
}

// Geometry is the computed layout of one chart.
type Geometry struct {
	Canvas      Canvas
	Temperature []Coord
	Apparent    []Coord

	// YMin and YMax bound the padded vertical domain.
	YMin float64
	YMax float64

	// YTicks are the gridline values from YMin to YMax.
	YTicks []float64

	// XTicks are point indices that get an hour label.
	XTicks []int

	n int
}

// Compute lays out points on canvas. Both series share one vertical domain.
func Compute(points []weather.HourlyPoint, canvas Canvas) (*Geometry, error) {
	if len(points) < 2 {
		return nil, ErrInsufficientData
	}

	lo, hi := valueRange(points)
	pad := math.Max(minPad, (hi-lo)*padRatio)

	g := &Geometry{
		Canvas: canvas,
		YMin:   lo - pad,
		YMax:   hi + pad,
		n:      len(points),
	}

	temps := make([]*float64, len(points))
	feels := make([]*float64, len(points))
	for i, p := range points {
		temps[i] = p.TemperatureC
		feels[i] = p.ApparentTemperatureC
	}
	g.Temperature = g.plot(temps)
	g.Apparent = g.plot(feels)

	g.YTicks = make([]float64, gridLines+1)
	for i := range g.YTicks {
		g.YTicks[i] = g.YMin + (g.YMax-g.YMin)*float64(i)/gridLines
	}

	g.XTicks = xTicks(len(points))

	return g, nil
}

// XAt maps a point index to its horizontal position.
func (g *Geometry) XAt(i int) float64 {
	return g.Canvas.Margins.Left + float64(i)/float64(g.n-1)*g.Canvas.InnerWidth()
}

// YAt maps a value to its vertical position. Larger values sit higher.
func (g *Geometry) YAt(v float64) float64 {
	span := g.YMax - g.YMin
	if span == 0 {
		span = 1
	}
	return g.Canvas.Margins.Top + (1-(v-g.YMin)/span)*g.Canvas.InnerHeight()
}

func (g *Geometry) plot(values []*float64) []Coord {
	coords := make([]Coord, len(values))
	for i, v := range values {
		x := g.XAt(i)
		if !weather.Finite(v) {
			coords[i] = Coord{X: x, Y: g.YAt(0)}
			continue
		}
		coords[i] = Coord{X: x, Y: g.YAt(*v), Valid: true}
	}
	return coords
}

// valueRange returns the extremes over every finite value of both series,
// or 0..0 when there are none.
func valueRange(points []weather.HourlyPoint) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range points {
		for _, v := range []*float64{p.TemperatureC, p.ApparentTemperatureC} {
			if !weather.Finite(v) {
				continue
			}
			lo = math.Min(lo, *v)
			hi = math.Max(hi, *v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// xTicks returns the indices 0, 6, 12, 18 and 24 clamped to the last point
// with duplicates removed, in ascending order.
func xTicks(n int) []int {
	last := n - 1
	ticks := make([]int, 0, xTickMaxHrs/xTickStepHrs+1)
	for h := 0; h <= xTickMaxHrs; h += xTickStepHrs {
		idx := min(h, last)
		if len(ticks) > 0 && ticks[len(ticks)-1] == idx {
			continue
		}
		ticks = append(ticks, idx)
	}
	return ticks
}

// Path renders coords as SVG path data. Each run of valid coordinates
// becomes its own sub-path; invalid coordinates are skipped, never bridged.
func Path(coords []Coord) string {
	var b strings.Builder
	started := false
	for _, c := range coords {
		if !c.Valid {
			started = false
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		if started {
			b.WriteByte('L')
		} else {
			b.WriteByte('M')
		}
		b.WriteString(strconv.FormatFloat(c.X, 'f', 1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(c.Y, 'f', 1, 64))
		started = true
	}
	return b.String()
}
