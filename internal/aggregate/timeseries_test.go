package aggregate

import (
	"math"
	"testing"

	"esr/internal/model"
)

func onDate(date string, sales, profit float64) model.EnrichedRecord {
	d := day(date)
	return model.EnrichedRecord{
		OrderRecord: model.OrderRecord{OrderDate: d, Sales: sales, Profit: profit},
		Year:        d.Year(),
		Quarter:     (int(d.Month())-1)/3 + 1,
	}
}

func TestParseGranularity(t *testing.T) {
	for _, s := range []string{"day", "month", "quarter", "year"} {
		g, err := ParseGranularity(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if g.String() != s {
			t.Fatalf("round trip %q -> %q", s, g.String())
		}
	}
	if _, err := ParseGranularity("week"); err == nil {
		t.Fatal("want error for unknown granularity")
	}
}

func TestTimeSeries_MonthlyChronologicalWithGrowth(t *testing.T) {
	recs := []model.EnrichedRecord{
		onDate("2024-02-10", 150, 30),
		onDate("2024-01-05", 100, 20),
		onDate("2024-01-20", 100, 20),
		onDate("2024-03-01", 100, 10),
	}
	rows, err := TimeSeries(recs, Monthly)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Period != "2024-01" || rows[1].Period != "2024-02" || rows[2].Period != "2024-03" {
		t.Fatalf("periods out of order: %+v", rows)
	}
	if rows[0].Sales != 200 || rows[0].Orders != 2 {
		t.Fatalf("first period: %+v", rows[0])
	}
	if !model.IsUndefined(rows[0].RevenueGrowthPct) {
		t.Fatalf("first period growth must be undefined, got %v", rows[0].RevenueGrowthPct)
	}
	// 200 -> 150 is -25%.
	if math.Abs(rows[1].RevenueGrowthPct+25) > 1e-9 {
		t.Fatalf("feb growth = %v, want -25", rows[1].RevenueGrowthPct)
	}
}

func TestTimeSeries_ZeroPriorGrowthUndefined(t *testing.T) {
	recs := []model.EnrichedRecord{
		onDate("2024-01-05", 0, 0),
		onDate("2024-02-05", 100, 10),
	}
	rows, err := TimeSeries(recs, Monthly)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !model.IsUndefined(rows[1].RevenueGrowthPct) {
		t.Fatalf("growth over a zero prior must be undefined, got %v", rows[1].RevenueGrowthPct)
	}
}

func TestTimeSeries_PeriodKeys(t *testing.T) {
	r := onDate("2024-08-15", 1, 0)
	cases := []struct {
		g    Granularity
		want string
	}{
		{Daily, "2024-08-15"},
		{Monthly, "2024-08"},
		{Quarterly, "2024-Q3"},
		{Yearly, "2024"},
	}
	for _, c := range cases {
		rows, err := TimeSeries([]model.EnrichedRecord{r}, c.g)
		if err != nil {
			t.Fatalf("%s: %v", c.g, err)
		}
		if rows[0].Period != c.want {
			t.Fatalf("%s period = %q, want %q", c.g, rows[0].Period, c.want)
		}
	}
}

func TestTimeSeries_Empty(t *testing.T) {
	if _, err := TimeSeries(nil, Monthly); err == nil {
		t.Fatal("want error on empty table")
	}
}
