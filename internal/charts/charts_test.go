package charts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"esr/internal/aggregate"
	"esr/internal/model"
)

func TestBarFromAggregates_LimitAndUndefined(t *testing.T) {
	rows := []model.AggregateRow{
		{Key: "A", AvgMarginPct: 12.345},
		{Key: "B", AvgMarginPct: model.Undefined()},
		{Key: "C", AvgMarginPct: 3},
	}
	c := BarFromAggregates("Margin", "Pct", rows, 2, func(r model.AggregateRow) float64 { return r.AvgMarginPct })
	if c.Type != "bar" || len(c.Points) != 2 {
		t.Fatalf("config: %+v", c)
	}
	if c.Points[0].Value != 12.35 {
		t.Fatalf("rounding: %v", c.Points[0].Value)
	}
	if c.Points[1].Value != 0 {
		t.Fatalf("undefined value should chart as zero: %v", c.Points[1].Value)
	}
}

func TestLineFromPeriods(t *testing.T) {
	c := LineFromPeriods("Revenue", []model.PeriodRow{
		{Period: "2024-01", Sales: 100},
		{Period: "2024-02", Sales: 200},
	})
	if c.Type != "line" || len(c.Points) != 2 || c.Points[1].Label != "2024-02" {
		t.Fatalf("config: %+v", c)
	}
}

func TestSVG_EmptyAndEscaping(t *testing.T) {
	empty := Config{Type: "bar"}
	if !strings.Contains(empty.SVG(), "No data") {
		t.Fatalf("empty chart: %q", empty.SVG())
	}
	c := Config{Type: "bar", Points: []Point{{Label: `A<&>"B`, Value: 5}}, Color: "#fff"}
	svg := c.SVG()
	if !strings.HasPrefix(svg, "<svg") || strings.Contains(svg, `A<&>`) {
		t.Fatalf("labels must be escaped: %q", svg)
	}
	line := Config{Type: "line", Points: []Point{{Label: "a", Value: 1}, {Label: "b", Value: 2}}, Color: "#fff"}
	if !strings.Contains(line.SVG(), "<path") {
		t.Fatalf("line chart: %q", line.SVG())
	}
}

func TestWriteDashboard(t *testing.T) {
	dir := t.TempDir()
	data := DashboardData{
		Summary: model.RunSummary{TotalRevenue: 1000, TotalOrders: 5, AvgOrderValue: 200, ProfitMarginPct: model.Undefined()},
		Charts: []Config{
			LineFromPeriods("Revenue by month", []model.PeriodRow{{Period: "2024-01", Sales: 1000}}),
		},
		Segments:        []aggregate.SegmentRow{{Segment: "Bronze", Customers: 1, Orders: 2, Sales: 500, AvgOrderValue: 250}},
		TopProducts:     []model.AggregateRow{{Key: "Desk", Profit: 100, Sales: 500, Orders: 2}},
		BottomProducts:  []model.AggregateRow{{Key: "Stool", Profit: -20, Sales: 80, Orders: 1}},
		Recommendations: []string{"keep going"},
		Gaps:            []string{"compute city: empty input table"},
	}
	path, err := WriteDashboard(dir, data)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	html := string(b)
	for _, want := range []string{
		"Sales Analysis Dashboard", "Revenue by month", "Bronze", "Desk",
		"Least Profitable Products", "Stool", "keep going", "Incomplete Aggregations",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
	// Undefined margin renders as a dash, never NaN.
	if strings.Contains(html, "NaN") {
		t.Fatal("dashboard must not render NaN")
	}
	if filepath.Base(path) != "dashboard.html" {
		t.Fatalf("path = %s", path)
	}
}
