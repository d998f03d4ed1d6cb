// Package charts renders aggregation outputs as a self-contained static
// dashboard: chart configs become inline SVG, tables come straight from the
// aggregate rows. No data flows back into the pipeline.
package charts

import (
	"fmt"
	"math"
	"strings"

	"esr/internal/model"
)

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Point is a single labeled chart value.
type Point struct {
	Label string
	Value float64
}

// Config describes one renderable chart.
type Config struct {
	Type   string // "bar" or "line"
	Title  string
	YLabel string
	Points []Point
	Color  string
}

// BarFromAggregates builds a bar chart over grouped rows, keeping at most
// limit bars (0 = all). Row order is preserved.
func BarFromAggregates(title, ylabel string, rows []model.AggregateRow, limit int, value func(model.AggregateRow) float64) Config {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	points := make([]Point, 0, len(rows))
	for _, r := range rows {
		v := value(r)
		if model.IsUndefined(v) {
			v = 0
		}
		points = append(points, Point{Label: r.Key, Value: roundTo2(v)})
	}
	return Config{Type: "bar", Title: title, YLabel: ylabel, Points: points, Color: defaultColors[0]}
}

// LineFromPeriods builds a revenue line chart over a time series.
func LineFromPeriods(title string, rows []model.PeriodRow) Config {
	points := make([]Point, 0, len(rows))
	for _, r := range rows {
		points = append(points, Point{Label: r.Period, Value: roundTo2(r.Sales)})
	}
	return Config{Type: "line", Title: title, YLabel: "Sales", Points: points, Color: defaultColors[1]}
}

// SVG renders the chart as an inline SVG fragment.
func (c Config) SVG() string {
	if len(c.Points) == 0 {
		return `<p class="muted">No data.</p>`
	}
	if c.Type == "line" {
		return c.lineSVG()
	}
	return c.barSVG()
}

const (
	svgWidth  = 640.0
	svgHeight = 160.0
	svgPad    = 8.0
)

func (c Config) lineSVG() string {
	minV, maxV := bounds(c.Points)
	var pts []string
	step := svgWidth / float64(maxInt(1, len(c.Points)-1))
	for i, p := range c.Points {
		x := float64(i) * step
		y := svgHeight - scale(p.Value, minV, maxV, svgPad, svgHeight-svgPad)
		pts = append(pts, fmt.Sprintf("%.1f,%.1f", x, y))
	}
	return fmt.Sprintf(
		`<svg viewBox="0 0 %.0f %.0f"><path d="M %s" fill="none" stroke="%s" stroke-width="2"/><line x1="0" y1="%.1f" x2="%.0f" y2="%.1f" stroke="#22305f"/></svg>`,
		svgWidth, svgHeight, strings.Join(pts, " L "), c.Color, svgHeight-0.5, svgWidth, svgHeight-0.5)
}

func (c Config) barSVG() string {
	_, maxV := bounds(c.Points)
	if maxV <= 0 {
		maxV = 1
	}
	n := len(c.Points)
	barW := svgWidth/float64(n) - 4
	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %.0f %.0f">`, svgWidth, svgHeight)
	for i, p := range c.Points {
		h := scale(math.Max(p.Value, 0), 0, maxV, 0, svgHeight-2*svgPad)
		x := float64(i) * (svgWidth / float64(n))
		y := svgHeight - svgPad - h
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s: %.2f</title></rect>`,
			x+2, y, barW, h, c.Color, escape(p.Label), p.Value)
	}
	fmt.Fprintf(&b, `<line x1="0" y1="%.1f" x2="%.0f" y2="%.1f" stroke="#22305f"/></svg>`,
		svgHeight-svgPad+0.5, svgWidth, svgHeight-svgPad+0.5)
	return b.String()
}

func bounds(points []Point) (float64, float64) {
	minV, maxV := points[0].Value, points[0].Value
	for _, p := range points {
		if p.Value < minV {
			minV = p.Value
		}
		if p.Value > maxV {
			maxV = p.Value
		}
	}
	return minV, maxV
}

func scale(v, lo, hi, a, b float64) float64 {
	if hi == lo {
		return (a + b) / 2
	}
	return a + (v-lo)*(b-a)/(hi-lo)
}

func roundTo2(v float64) float64 { return math.Round(v*100) / 100 }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
