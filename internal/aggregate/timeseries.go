package aggregate

import (
	"fmt"
	"sort"

	"esr/internal/model"
)

// Granularity selects the calendar period of a time series.
type Granularity int

const (
	Daily Granularity = iota
	Monthly
	Quarterly
	Yearly
)

func (g Granularity) String() string {
	switch g {
	case Daily:
		return "day"
	case Monthly:
		return "month"
	case Quarterly:
		return "quarter"
	case Yearly:
		return "year"
	}
	return "unknown"
}

// ParseGranularity maps a flag value to a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "day":
		return Daily, nil
	case "month":
		return Monthly, nil
	case "quarter":
		return Quarterly, nil
	case "year":
		return Yearly, nil
	}
	return 0, fmt.Errorf("unknown granularity %q", s)
}

// periodKey formats a record's period so lexicographic order is
// chronological order.
func periodKey(r model.EnrichedRecord, g Granularity) string {
	switch g {
	case Daily:
		return r.OrderDate.Format("2006-01-02")
	case Quarterly:
		return fmt.Sprintf("%04d-Q%d", r.Year, r.Quarter)
	case Yearly:
		return fmt.Sprintf("%04d", r.Year)
	default:
		return r.OrderDate.Format("2006-01")
	}
}

// TimeSeries groups revenue, profit and order counts by calendar period in
// chronological order and derives period-over-period growth. Growth of the
// first period is the undefined sentinel, never zero; so is growth over a
// zero prior period.
func TimeSeries(recs []model.EnrichedRecord, g Granularity) ([]model.PeriodRow, error) {
	if len(recs) == 0 {
		return nil, &model.ComputationError{Aggregation: "time_series_" + g.String(), Reason: "empty input table"}
	}
	type bucket struct {
		sales  float64
		profit float64
		orders int
	}
	buckets := make(map[string]*bucket)
	for _, r := range recs {
		key := periodKey(r, g)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.sales += r.Sales
		b.profit += r.Profit
		b.orders++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]model.PeriodRow, 0, len(keys))
	for i, k := range keys {
		b := buckets[k]
		row := model.PeriodRow{
			Period:           k,
			Sales:            b.sales,
			Profit:           b.profit,
			Orders:           b.orders,
			RevenueGrowthPct: model.Undefined(),
			ProfitGrowthPct:  model.Undefined(),
		}
		if i > 0 {
			prev := buckets[keys[i-1]]
			row.RevenueGrowthPct = growthPct(b.sales, prev.sales)
			row.ProfitGrowthPct = growthPct(b.profit, prev.profit)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// growthPct is (current-previous)/previous*100, undefined over a zero prior.
func growthPct(cur, prev float64) float64 {
	if prev == 0 {
		return model.Undefined()
	}
	return (cur - prev) / prev * 100
}
