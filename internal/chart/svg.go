package chart

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strconv"

	"github.com/weatherdash/weatherdash/internal/weather"
)

const (
	gridStroke      = "rgba(255,255,255,0.08)"
	hourStroke      = "rgba(255,255,255,0.06)"
	labelFill       = "rgba(255,255,255,0.55)"
	hourLabelFill   = "rgba(255,255,255,0.6)"
	apparentStroke  = "rgba(245,215,110,0.9)"
	temperatureFrom = "rgba(100,108,255,0.85)"
	temperatureTo   = "rgba(46,204,113,0.75)"
)

// RenderSVG writes a standalone SVG line chart of points: gridlines with
// their values, a solid temperature line, a dashed apparent temperature line
// and KST hour labels under the x ticks.
func RenderSVG(w io.Writer, points []weather.HourlyPoint, canvas Canvas) error {
	g, err := Compute(points, canvas)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	c := g.Canvas
	m := c.Margins

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" role="img" aria-label="Hourly temperature chart">`,
		num(c.Width), num(c.Height))
	fmt.Fprintf(bw, `<defs><linearGradient id="tempLine" x1="0" y1="0" x2="1" y2="0">`+
		`<stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/></linearGradient></defs>`,
		temperatureFrom, temperatureTo)

	for _, tick := range g.YTicks {
		y := g.YAt(tick)
		fmt.Fprintf(bw, `<g><line x1="%s" x2="%s" y1="%s" y2="%s" stroke="%s"/>`,
			num(m.Left), num(c.Width-m.Right), num(y), num(y), gridStroke)
		fmt.Fprintf(bw, `<text x="%s" y="%s" text-anchor="end" font-size="10" fill="%s">%s</text></g>`,
			num(m.Left-10), num(y+4), labelFill, strconv.FormatFloat(tick, 'f', 0, 64))
	}

	fmt.Fprintf(bw, `<path d="%s" fill="none" stroke="url(#tempLine)" stroke-width="3.2"/>`, Path(g.Temperature))
	fmt.Fprintf(bw, `<path d="%s" fill="none" stroke="%s" stroke-width="2.4" stroke-dasharray="6 6"/>`,
		Path(g.Apparent), apparentStroke)

	for _, idx := range g.XTicks {
		x := g.XAt(idx)
		fmt.Fprintf(bw, `<g><line x1="%s" x2="%s" y1="%s" y2="%s" stroke="%s"/>`,
			num(x), num(x), num(m.Top), num(c.Height-m.Bottom), hourStroke)
		fmt.Fprintf(bw, `<text x="%s" y="%s" text-anchor="middle" font-size="10" fill="%s">%s</text></g>`,
			num(x), num(c.Height-12), hourLabelFill, html.EscapeString(weather.FormatHour(points[idx].Time)))
	}

	bw.WriteString(`</svg>`)

	return bw.Flush()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
