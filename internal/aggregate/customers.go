package aggregate

import (
	"sort"

	"esr/internal/model"
)

// Segment thresholds over lifetime sales. Boundary values fall into the
// lower segment: a customer with total sales of exactly 1000 is Bronze.
var (
	segmentThresholds = []float64{1000, 5000, 20000}
	segmentLabels     = []string{"Bronze", "Silver", "Gold", "Platinum"}
)

// SegmentFor buckets a lifetime sales total into its tier.
func SegmentFor(totalSales float64) string {
	for i, th := range segmentThresholds {
		if totalSales <= th {
			return segmentLabels[i]
		}
	}
	return segmentLabels[len(segmentLabels)-1]
}

// SegmentRow summarizes one customer segment.
type SegmentRow struct {
	Segment       string  `json:"segment"`
	Customers     int     `json:"customers"`
	Orders        int     `json:"orders"`
	Sales         float64 `json:"sales"`
	AvgOrderValue float64 `json:"avgOrderValue"` // NaN for an empty segment
}

// CustomerProfiles folds the table into per-customer lifetime statistics,
// sorted by total sales descending, ties by customer name ascending.
func CustomerProfiles(recs []model.EnrichedRecord) ([]model.CustomerProfile, error) {
	if len(recs) == 0 {
		return nil, &model.ComputationError{Aggregation: "customer_profiles", Reason: "empty input table"}
	}
	byCustomer := make(map[string]*model.CustomerProfile)
	for _, r := range recs {
		p := byCustomer[r.CustomerName]
		if p == nil {
			p = &model.CustomerProfile{
				Customer:   r.CustomerName,
				FirstOrder: r.OrderDate,
				LastOrder:  r.OrderDate,
			}
			byCustomer[r.CustomerName] = p
		}
		p.TotalSales += r.Sales
		p.Orders++
		if r.OrderDate.Before(p.FirstOrder) {
			p.FirstOrder = r.OrderDate
		}
		if r.OrderDate.After(p.LastOrder) {
			p.LastOrder = r.OrderDate
		}
	}
	profiles := make([]model.CustomerProfile, 0, len(byCustomer))
	for _, p := range byCustomer {
		p.AvgOrderValue = p.TotalSales / float64(p.Orders)
		p.LifetimeDays = int(p.LastOrder.Sub(p.FirstOrder).Hours() / 24)
		p.Segment = SegmentFor(p.TotalSales)
		profiles = append(profiles, *p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].TotalSales != profiles[j].TotalSales {
			return profiles[i].TotalSales > profiles[j].TotalSales
		}
		return profiles[i].Customer < profiles[j].Customer
	})
	return profiles, nil
}

// SegmentSummary rolls profiles up into the four fixed segments, in tier
// order Bronze..Platinum. Empty segments are kept.
func SegmentSummary(profiles []model.CustomerProfile) []SegmentRow {
	idx := make(map[string]int, len(segmentLabels))
	rows := make([]SegmentRow, len(segmentLabels))
	for i, label := range segmentLabels {
		idx[label] = i
		rows[i] = SegmentRow{Segment: label, AvgOrderValue: model.Undefined()}
	}
	for _, p := range profiles {
		i := idx[p.Segment]
		rows[i].Customers++
		rows[i].Orders += p.Orders
		rows[i].Sales += p.TotalSales
	}
	for i := range rows {
		if rows[i].Orders > 0 {
			rows[i].AvgOrderValue = rows[i].Sales / float64(rows[i].Orders)
		}
	}
	return rows
}

// MeanOrdersPerCustomer is the average order count across profiles,
// undefined when there are no customers.
func MeanOrdersPerCustomer(profiles []model.CustomerProfile) float64 {
	if len(profiles) == 0 {
		return model.Undefined()
	}
	var total int
	for _, p := range profiles {
		total += p.Orders
	}
	return float64(total) / float64(len(profiles))
}
