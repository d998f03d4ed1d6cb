// Package enrich derives the analysis features of a typed order record.
// Everything here is a pure function of its inputs.
package enrich

import (
	"fmt"
	"time"

	"esr/internal/model"
)

// TierConfig buckets order sales amounts into labeled value tiers.
// Boundaries must be strictly ascending; len(Labels) == len(Boundaries)+1.
// A value exactly equal to a boundary falls into the lower bucket.
type TierConfig struct {
	Boundaries []float64
	Labels     []string
}

// DefaultTiers matches the order-value categories of the source dataset.
func DefaultTiers() TierConfig {
	return TierConfig{
		Boundaries: []float64{50000, 100000, 200000},
		Labels:     []string{"Small", "Medium", "Large", "Extra Large"},
	}
}

// Validate checks the tier configuration shape.
func (c TierConfig) Validate() error {
	if len(c.Labels) != len(c.Boundaries)+1 {
		return fmt.Errorf("tier config: %d labels for %d boundaries, want %d",
			len(c.Labels), len(c.Boundaries), len(c.Boundaries)+1)
	}
	for i := 1; i < len(c.Boundaries); i++ {
		if c.Boundaries[i] <= c.Boundaries[i-1] {
			return fmt.Errorf("tier config: boundaries not ascending at index %d", i)
		}
	}
	return nil
}

// Tier returns the label for a sales value. Boundary values are
// lower-inclusive: v == Boundaries[i] yields Labels[i].
func (c TierConfig) Tier(v float64) string {
	for i, b := range c.Boundaries {
		if v <= b {
			return c.Labels[i]
		}
	}
	return c.Labels[len(c.Labels)-1]
}

// Record derives an EnrichedRecord from an order record.
func Record(r model.OrderRecord, tiers TierConfig) model.EnrichedRecord {
	margin := model.Undefined()
	if r.Sales != 0 {
		margin = r.Profit / r.Sales * 100
	}
	return model.EnrichedRecord{
		OrderRecord:     r,
		Year:            r.OrderDate.Year(),
		Month:           int(r.OrderDate.Month()),
		Quarter:         (int(r.OrderDate.Month())-1)/3 + 1,
		DayOfWeek:       mondayIndexed(r.OrderDate),
		MonthName:       r.OrderDate.Month().String(),
		ProfitMarginPct: margin,
		EffectivePrice:  r.UnitPrice * (1 - r.DiscountPct/100),
		ValueTier:       tiers.Tier(r.Sales),
	}
}

// Records enriches a whole table. The input is not mutated.
func Records(recs []model.OrderRecord, tiers TierConfig) ([]model.EnrichedRecord, error) {
	if err := tiers.Validate(); err != nil {
		return nil, err
	}
	out := make([]model.EnrichedRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, Record(r, tiers))
	}
	return out, nil
}

// mondayIndexed maps time.Weekday (Sunday=0) to Monday=0..Sunday=6.
func mondayIndexed(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
