// Package aggregate computes every grouped metric of the reporting pipeline.
//
// All functions are read-only over the enriched table and return freshly
// allocated rows. Ordering is part of the contract: leaderboards are
// revenue-descending with ties broken by key ascending, time series are
// chronological, top/bottom product lists break profit ties by product name.
package aggregate

import (
	"sort"

	"esr/internal/model"
)

// Dimension names a grouping key over enriched records.
type Dimension struct {
	Name string
	Key  func(model.EnrichedRecord) string
}

var (
	Category    = Dimension{Name: "category", Key: func(r model.EnrichedRecord) string { return r.Category }}
	SubCategory = Dimension{Name: "sub_category", Key: func(r model.EnrichedRecord) string { return r.SubCategory }}
	Region      = Dimension{Name: "region", Key: func(r model.EnrichedRecord) string { return r.Region }}
	City        = Dimension{Name: "city", Key: func(r model.EnrichedRecord) string { return r.City }}
	PaymentMode = Dimension{Name: "payment_mode", Key: func(r model.EnrichedRecord) string { return r.PaymentMode }}
	Product     = Dimension{Name: "product", Key: func(r model.EnrichedRecord) string { return r.ProductName }}
	ValueTier   = Dimension{Name: "value_tier", Key: func(r model.EnrichedRecord) string { return r.ValueTier }}
)

type accumulator struct {
	sales     float64
	profit    float64
	orders    int
	marginSum float64
	marginN   int
	customers map[string]struct{}
}

func (a *accumulator) add(r model.EnrichedRecord) {
	a.sales += r.Sales
	a.profit += r.Profit
	a.orders++
	if !model.IsUndefined(r.ProfitMarginPct) {
		a.marginSum += r.ProfitMarginPct
		a.marginN++
	}
	if a.customers == nil {
		a.customers = make(map[string]struct{})
	}
	a.customers[r.CustomerName] = struct{}{}
}

func (a *accumulator) row(key string) model.AggregateRow {
	margin := model.Undefined()
	if a.marginN > 0 {
		margin = a.marginSum / float64(a.marginN)
	}
	return model.AggregateRow{
		Key:          key,
		Sales:        a.sales,
		Profit:       a.profit,
		Orders:       a.orders,
		AvgMarginPct: margin,
		Customers:    len(a.customers),
	}
}

// ByDimension groups the table by one dimension and returns a
// revenue-descending leaderboard, ties broken by key ascending.
func ByDimension(recs []model.EnrichedRecord, dim Dimension) ([]model.AggregateRow, error) {
	if len(recs) == 0 {
		return nil, &model.ComputationError{Aggregation: dim.Name, Reason: "empty input table"}
	}
	groups := make(map[string]*accumulator)
	for _, r := range recs {
		key := dim.Key(r)
		acc := groups[key]
		if acc == nil {
			acc = &accumulator{}
			groups[key] = acc
		}
		acc.add(r)
	}
	rows := make([]model.AggregateRow, 0, len(groups))
	for key, acc := range groups {
		rows = append(rows, acc.row(key))
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Sales != rows[j].Sales {
			return rows[i].Sales > rows[j].Sales
		}
		return rows[i].Key < rows[j].Key
	})
	return rows, nil
}

// TopProductsByProfit returns the n most profitable products, profit
// descending with ties broken by product name ascending.
func TopProductsByProfit(recs []model.EnrichedRecord, n int) ([]model.AggregateRow, error) {
	return productsByProfit(recs, n, true)
}

// BottomProductsByProfit returns the n least profitable products, profit
// ascending with ties broken by product name ascending.
func BottomProductsByProfit(recs []model.EnrichedRecord, n int) ([]model.AggregateRow, error) {
	return productsByProfit(recs, n, false)
}

func productsByProfit(recs []model.EnrichedRecord, n int, desc bool) ([]model.AggregateRow, error) {
	rows, err := ByDimension(recs, Product)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Profit != rows[j].Profit {
			if desc {
				return rows[i].Profit > rows[j].Profit
			}
			return rows[i].Profit < rows[j].Profit
		}
		return rows[i].Key < rows[j].Key
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

// TotalRevenue sums sales over the whole table.
func TotalRevenue(recs []model.EnrichedRecord) float64 {
	var total float64
	for _, r := range recs {
		total += r.Sales
	}
	return total
}

// TotalProfit sums profit over the whole table.
func TotalProfit(recs []model.EnrichedRecord) float64 {
	var total float64
	for _, r := range recs {
		total += r.Profit
	}
	return total
}
