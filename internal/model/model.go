package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// OrderRecord is one typed row of the source sales table.
type OrderRecord struct {
	OrderID      string    `json:"orderId"`
	OrderDate    time.Time `json:"orderDate"`
	CustomerName string    `json:"customerName"`
	ProductName  string    `json:"productName"`
	Category     string    `json:"category"`
	SubCategory  string    `json:"subCategory"`
	Region       string    `json:"region"`
	City         string    `json:"city"`
	PaymentMode  string    `json:"paymentMode"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unitPrice"`
	DiscountPct  float64   `json:"discountPct"`
	Sales        float64   `json:"sales"`
	Profit       float64   `json:"profit"`
}

// ExpectedSales recomputes the sales amount from quantity, price and discount.
func (r OrderRecord) ExpectedSales() float64 {
	return float64(r.Quantity) * r.UnitPrice * (1 - r.DiscountPct/100)
}

// EnrichedRecord extends OrderRecord with derived calendar and pricing fields.
// All derived fields are pure functions of the underlying record.
type EnrichedRecord struct {
	OrderRecord
	Year            int     `json:"year"`
	Month           int     `json:"month"`
	Quarter         int     `json:"quarter"`
	DayOfWeek       int     `json:"dayOfWeek"` // Monday=0 .. Sunday=6
	MonthName       string  `json:"monthName"`
	ProfitMarginPct float64 `json:"profitMarginPct"` // NaN when Sales == 0
	EffectivePrice  float64 `json:"effectivePrice"`
	ValueTier       string  `json:"valueTier"`
}

// AggregateRow is one summarized metric tuple for a grouping dimension.
type AggregateRow struct {
	Key          string  `json:"key"`
	Sales        float64 `json:"sales"`
	Profit       float64 `json:"profit"`
	Orders       int     `json:"orders"`
	AvgMarginPct float64 `json:"avgMarginPct"` // NaN when no record in the group has a defined margin
	Customers    int     `json:"customers"`    // distinct customer count
}

// PeriodRow is one calendar period of a time series, in chronological order.
type PeriodRow struct {
	Period           string  `json:"period"`
	Sales            float64 `json:"sales"`
	Profit           float64 `json:"profit"`
	Orders           int     `json:"orders"`
	RevenueGrowthPct float64 `json:"revenueGrowthPct"` // NaN for the first period or a zero prior
	ProfitGrowthPct  float64 `json:"profitGrowthPct"`
}

// CustomerProfile summarizes one customer's lifetime activity.
type CustomerProfile struct {
	Customer      string    `json:"customer"`
	TotalSales    float64   `json:"totalSales"`
	AvgOrderValue float64   `json:"avgOrderValue"`
	Orders        int       `json:"orders"`
	FirstOrder    time.Time `json:"firstOrder"`
	LastOrder     time.Time `json:"lastOrder"`
	LifetimeDays  int       `json:"lifetimeDays"`
	Segment       string    `json:"segment"`
}

// RunSummary is the executive summary of one pipeline run.
type RunSummary struct {
	GeneratedAt        time.Time `json:"generatedAt"`
	PeriodStart        time.Time `json:"periodStart"`
	PeriodEnd          time.Time `json:"periodEnd"`
	TotalRevenue       float64   `json:"totalRevenue"`
	TotalProfit        float64   `json:"totalProfit"`
	TotalOrders        int       `json:"totalOrders"`
	UniqueCustomers    int       `json:"uniqueCustomers"`
	UniqueProducts     int       `json:"uniqueProducts"`
	AvgOrderValue      float64   `json:"avgOrderValue"`   // NaN on an empty table
	ProfitMarginPct    float64   `json:"profitMarginPct"` // NaN on zero revenue
	RowsLoaded         int       `json:"rowsLoaded"`
	RowsRejected       int       `json:"rowsRejected"`
	ValidationFindings int       `json:"validationFindings"`
}

// runSummaryJSON mirrors RunSummary with pointer fields for the two metrics
// that may carry the NaN sentinel, which encoding/json cannot represent.
type runSummaryJSON struct {
	GeneratedAt        time.Time `json:"generatedAt"`
	PeriodStart        time.Time `json:"periodStart"`
	PeriodEnd          time.Time `json:"periodEnd"`
	TotalRevenue       float64   `json:"totalRevenue"`
	TotalProfit        float64   `json:"totalProfit"`
	TotalOrders        int       `json:"totalOrders"`
	UniqueCustomers    int       `json:"uniqueCustomers"`
	UniqueProducts     int       `json:"uniqueProducts"`
	AvgOrderValue      *float64  `json:"avgOrderValue"`
	ProfitMarginPct    *float64  `json:"profitMarginPct"`
	RowsLoaded         int       `json:"rowsLoaded"`
	RowsRejected       int       `json:"rowsRejected"`
	ValidationFindings int       `json:"validationFindings"`
}

// MarshalJSON encodes undefined metrics as null.
func (s RunSummary) MarshalJSON() ([]byte, error) {
	j := runSummaryJSON{
		GeneratedAt: s.GeneratedAt, PeriodStart: s.PeriodStart, PeriodEnd: s.PeriodEnd,
		TotalRevenue: s.TotalRevenue, TotalProfit: s.TotalProfit, TotalOrders: s.TotalOrders,
		UniqueCustomers: s.UniqueCustomers, UniqueProducts: s.UniqueProducts,
		RowsLoaded: s.RowsLoaded, RowsRejected: s.RowsRejected, ValidationFindings: s.ValidationFindings,
	}
	if !IsUndefined(s.AvgOrderValue) {
		v := s.AvgOrderValue
		j.AvgOrderValue = &v
	}
	if !IsUndefined(s.ProfitMarginPct) {
		v := s.ProfitMarginPct
		j.ProfitMarginPct = &v
	}
	return json.Marshal(j)
}

// UnmarshalJSON restores null metrics to the undefined sentinel.
func (s *RunSummary) UnmarshalJSON(data []byte) error {
	var j runSummaryJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*s = RunSummary{
		GeneratedAt: j.GeneratedAt, PeriodStart: j.PeriodStart, PeriodEnd: j.PeriodEnd,
		TotalRevenue: j.TotalRevenue, TotalProfit: j.TotalProfit, TotalOrders: j.TotalOrders,
		UniqueCustomers: j.UniqueCustomers, UniqueProducts: j.UniqueProducts,
		AvgOrderValue: Undefined(), ProfitMarginPct: Undefined(),
		RowsLoaded: j.RowsLoaded, RowsRejected: j.RowsRejected, ValidationFindings: j.ValidationFindings,
	}
	if j.AvgOrderValue != nil {
		s.AvgOrderValue = *j.AvgOrderValue
	}
	if j.ProfitMarginPct != nil {
		s.ProfitMarginPct = *j.ProfitMarginPct
	}
	return nil
}

// Undefined is the sentinel for metrics with no defined value, such as the
// growth of a first period or a margin over zero sales.
func Undefined() float64 { return math.NaN() }

// IsUndefined reports whether v carries the undefined sentinel.
func IsUndefined(v float64) bool { return math.IsNaN(v) }

// SchemaError means the input table cannot be typed safely; the pipeline
// aborts before aggregation.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema: column %q: %s", e.Column, e.Reason)
	}
	return "schema: " + e.Reason
}

// ComputationError means one aggregation could not produce a result. It is
// isolated per aggregation and surfaced as a gap, never as a pipeline abort.
type ComputationError struct {
	Aggregation string
	Reason      string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("compute %s: %s", e.Aggregation, e.Reason)
}
