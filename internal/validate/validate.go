// Package validate cross-checks business invariants over a typed table.
// Findings are advisory: they are counted and surfaced, never fatal.
package validate

import (
	"math"

	"esr/internal/model"
)

// DefaultEpsilon is the relative tolerance for the sales cross-check.
const DefaultEpsilon = 0.01

// Report lists every invariant violation found in one pass.
type Report struct {
	RowsChecked        int      `json:"rowsChecked"`
	SalesMismatch      []string `json:"salesMismatch,omitempty"`
	NonPositiveQty     []string `json:"nonPositiveQty,omitempty"`
	NonPositivePrice   []string `json:"nonPositivePrice,omitempty"`
	NonPositiveSales   []string `json:"nonPositiveSales,omitempty"`
	DiscountOutOfRange []string `json:"discountOutOfRange,omitempty"`
}

// Findings is the total number of violations across all checks.
func (r Report) Findings() int {
	return len(r.SalesMismatch) + len(r.NonPositiveQty) + len(r.NonPositivePrice) +
		len(r.NonPositiveSales) + len(r.DiscountOutOfRange)
}

// Check recomputes expected sales for every record and flags rows breaking
// the invariants of the source table. epsilon <= 0 selects DefaultEpsilon.
func Check(recs []model.OrderRecord, epsilon float64) Report {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	rep := Report{RowsChecked: len(recs)}
	for _, r := range recs {
		if !withinRelative(r.Sales, r.ExpectedSales(), epsilon) {
			rep.SalesMismatch = append(rep.SalesMismatch, r.OrderID)
		}
		if r.Quantity <= 0 {
			rep.NonPositiveQty = append(rep.NonPositiveQty, r.OrderID)
		}
		if r.UnitPrice <= 0 {
			rep.NonPositivePrice = append(rep.NonPositivePrice, r.OrderID)
		}
		if r.Sales <= 0 {
			rep.NonPositiveSales = append(rep.NonPositiveSales, r.OrderID)
		}
		if r.DiscountPct < 0 || r.DiscountPct > 100 {
			rep.DiscountOutOfRange = append(rep.DiscountOutOfRange, r.OrderID)
		}
	}
	return rep
}

// withinRelative mirrors numpy.isclose with rtol only: |a-b| <= rtol*|b|.
func withinRelative(got, want, rtol float64) bool {
	return math.Abs(got-want) <= rtol*math.Abs(want)
}
