// Package recommend turns aggregate outputs into advisory strings.
//
// Rules are evaluated in a fixed order and emitted in that order; the
// ordering is part of the observable contract of the report.
package recommend

import (
	"fmt"
	"strings"

	"esr/internal/model"
)

// Inputs carries the aggregate outputs the rules read. A nil or empty field
// silently disables the rules that need it.
type Inputs struct {
	Monthly           []model.PeriodRow
	Categories        []model.AggregateRow
	Regions           []model.AggregateRow
	Profiles          []model.CustomerProfile
	HighDiscountShare float64 // share of orders with discount > 15%
	UPIShare          float64 // share of orders paid via UPI
}

// Thresholds used by the rules.
const (
	repeatPurchaseFloor = 2.0
	discountShareCeil   = 0.3
	upiShareCeil        = 0.3
)

// Generate applies every rule in order and returns the emitted advisories.
func Generate(in Inputs) []string {
	var out []string
	for _, rule := range rules {
		if msg := rule(in); msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

type rule func(Inputs) string

var rules = []rule{
	monthOverMonth,
	bestCategoryMargin,
	worstCategoryMargin,
	topRegionRevenue,
	repeatPurchase,
	discountUsage,
	upiUsage,
}

func monthOverMonth(in Inputs) string {
	n := len(in.Monthly)
	if n < 2 {
		return ""
	}
	if in.Monthly[n-1].Sales > in.Monthly[n-2].Sales {
		return "Revenue is growing month-over-month - continue current strategies"
	}
	return "Revenue declined last month - investigate causes and implement recovery strategies"
}

func bestCategoryMargin(in Inputs) string {
	row, ok := extremeByMargin(in.Categories, true)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s has highest profit margins (%.1f%%) - consider expanding this category",
		row.Key, row.AvgMarginPct)
}

func worstCategoryMargin(in Inputs) string {
	row, ok := extremeByMargin(in.Categories, false)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s has lowest profit margins (%.1f%%) - review pricing and costs",
		row.Key, row.AvgMarginPct)
}

func topRegionRevenue(in Inputs) string {
	if len(in.Regions) == 0 {
		return ""
	}
	// Regions arrive revenue-descending.
	top := in.Regions[0]
	return fmt.Sprintf("%s generates most revenue ($%s) - strengthen presence in this region",
		top.Key, formatThousands(top.Sales))
}

func repeatPurchase(in Inputs) string {
	if len(in.Profiles) == 0 {
		return ""
	}
	var orders int
	for _, p := range in.Profiles {
		orders += p.Orders
	}
	mean := float64(orders) / float64(len(in.Profiles))
	if mean < repeatPurchaseFloor {
		return "Low repeat purchase rate - implement customer retention programs"
	}
	return "Good customer retention - maintain current loyalty programs"
}

func discountUsage(in Inputs) string {
	if in.HighDiscountShare > discountShareCeil {
		return "High discount usage (>15%) - review discount strategy and impact on profitability"
	}
	return ""
}

func upiUsage(in Inputs) string {
	if in.UPIShare > upiShareCeil {
		return "High UPI usage - ensure UPI infrastructure is robust"
	}
	return ""
}

// extremeByMargin picks the row with the highest (or lowest) mean margin,
// skipping undefined margins, ties broken by key ascending.
func extremeByMargin(rows []model.AggregateRow, highest bool) (model.AggregateRow, bool) {
	var best model.AggregateRow
	found := false
	for _, r := range rows {
		if model.IsUndefined(r.AvgMarginPct) {
			continue
		}
		if !found {
			best = r
			found = true
			continue
		}
		better := r.AvgMarginPct > best.AvgMarginPct
		if !highest {
			better = r.AvgMarginPct < best.AvgMarginPct
		}
		if better || (r.AvgMarginPct == best.AvgMarginPct && r.Key < best.Key) {
			best = r
		}
	}
	return best, found
}

// formatThousands renders a rounded amount with comma separators.
func formatThousands(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.0f", v)
	if len(s) > 3 {
		var parts []string
		for len(s) > 3 {
			parts = append([]string{s[len(s)-3:]}, parts...)
			s = s[:len(s)-3]
		}
		s = s + "," + strings.Join(parts, ",")
	}
	if neg {
		return "-" + s
	}
	return s
}
