package aggregate

import (
	"testing"

	"esr/internal/model"
)

func withDiscount(d, sales, profit float64) model.EnrichedRecord {
	r := enriched("c1", "A", "p", sales, profit)
	r.DiscountPct = d
	return r
}

func TestDiscountBuckets_BoundaryPlacement(t *testing.T) {
	recs := []model.EnrichedRecord{
		withDiscount(0, 100, 10),  // exactly 0 -> 0-5%
		withDiscount(5, 100, 10),  // 5 -> 0-5%
		withDiscount(6, 100, 5),   // -> 6-10%
		withDiscount(30, 100, -5), // exactly 30 -> 26-30%
	}
	rows, err := DiscountBuckets(recs)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("rows = %d, want 6 fixed buckets", len(rows))
	}
	if rows[0].Key != "0-5%" || rows[0].Orders != 2 || rows[0].Sales != 200 {
		t.Fatalf("first bucket: %+v", rows[0])
	}
	if rows[1].Key != "6-10%" || rows[1].Orders != 1 {
		t.Fatalf("second bucket: %+v", rows[1])
	}
	if rows[5].Key != "26-30%" || rows[5].Orders != 1 || rows[5].Profit != -5 {
		t.Fatalf("last bucket: %+v", rows[5])
	}
}

func TestDiscountBuckets_EmptyBucketsKept(t *testing.T) {
	rows, err := DiscountBuckets([]model.EnrichedRecord{withDiscount(3, 100, 10)})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("rows = %d, want 6", len(rows))
	}
	for _, r := range rows[1:] {
		if r.Orders != 0 || r.Sales != 0 {
			t.Fatalf("bucket %s should be empty: %+v", r.Key, r)
		}
		if !model.IsUndefined(r.AvgMarginPct) {
			t.Fatalf("empty bucket margin should be undefined: %+v", r)
		}
	}
}

func TestDiscountBuckets_OutOfRangeExcluded(t *testing.T) {
	rows, err := DiscountBuckets([]model.EnrichedRecord{
		withDiscount(45, 100, 10),
		withDiscount(-2, 100, 10),
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	for _, r := range rows {
		if r.Orders != 0 {
			t.Fatalf("out-of-range discount landed in %s: %+v", r.Key, r)
		}
	}
}

func TestDiscountBuckets_Empty(t *testing.T) {
	if _, err := DiscountBuckets(nil); err == nil {
		t.Fatal("want error on empty table")
	}
}
