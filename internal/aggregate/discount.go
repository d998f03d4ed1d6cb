package aggregate

import (
	"esr/internal/model"
)

// discountBucket is a right-closed discount percentage range. The first
// bucket additionally includes its lower bound so a discount of exactly 0
// lands in "0-5%"; a discount of exactly 30 lands in "26-30%".
type discountBucket struct {
	lo, hi float64
	label  string
}

var discountBuckets = []discountBucket{
	{0, 5, "0-5%"},
	{5, 10, "6-10%"},
	{10, 15, "11-15%"},
	{15, 20, "16-20%"},
	{20, 25, "21-25%"},
	{25, 30, "26-30%"},
}

func (b discountBucket) contains(d float64, first bool) bool {
	if first && d == b.lo {
		return true
	}
	return d > b.lo && d <= b.hi
}

// DiscountBuckets partitions the table by discount depth and aggregates
// profitability per bucket. Bucket order is fixed; empty buckets are kept so
// the report shape is stable. Discounts outside [0,30] fall into no bucket
// (the validator flags out-of-range values separately).
func DiscountBuckets(recs []model.EnrichedRecord) ([]model.AggregateRow, error) {
	if len(recs) == 0 {
		return nil, &model.ComputationError{Aggregation: "discount_buckets", Reason: "empty input table"}
	}
	accs := make([]accumulator, len(discountBuckets))
	for _, r := range recs {
		for i, b := range discountBuckets {
			if b.contains(r.DiscountPct, i == 0) {
				accs[i].add(r)
				break
			}
		}
	}
	rows := make([]model.AggregateRow, 0, len(discountBuckets))
	for i, b := range discountBuckets {
		rows = append(rows, accs[i].row(b.label))
	}
	return rows, nil
}
