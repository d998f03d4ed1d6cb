// Package report serializes aggregation outputs to CSV files.
//
// Writes are deterministic and idempotent: re-running a report truncates and
// rewrites the file, it never appends. Undefined metrics render as empty
// cells, monetary and percentage values with two decimals.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"esr/internal/aggregate"
	"esr/internal/model"
)

// Report file names, matching the original reports/ directory.
const (
	FileMonthlyRevenue  = "monthly_revenue_analysis.csv"
	FileCategory        = "category_performance.csv"
	FileSubCategory     = "subcategory_performance.csv"
	FileRegion          = "region_performance.csv"
	FileCity            = "city_performance.csv"
	FilePaymentMode     = "payment_mode_performance.csv"
	FileDiscountImpact  = "discount_impact.csv"
	FileProductProfit   = "product_profitability.csv"
	FileCustomerSeg     = "customer_segments.csv"
	FileRecommendations = "business_recommendations.csv"
	FileExecSummary     = "executive_summary.csv"
)

// WriteCSV writes one named table under dir. The file is created or
// truncated, so repeated runs overwrite rather than accumulate.
func WriteCSV(dir, name string, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}

// Cell renders a float with two decimals, or an empty cell for the
// undefined sentinel.
func Cell(v float64) string {
	if model.IsUndefined(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// PeriodTable converts a time series into header and rows.
func PeriodTable(rows []model.PeriodRow) ([]string, [][]string) {
	header := []string{"Period", "Sales", "Profit", "Order_Count", "Revenue_Growth_%", "Profit_Growth_%"}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Period, Cell(r.Sales), Cell(r.Profit), strconv.Itoa(r.Orders),
			Cell(r.RevenueGrowthPct), Cell(r.ProfitGrowthPct),
		})
	}
	return header, out
}

// AggregateTable converts grouped rows into header and rows. keyLabel names
// the dimension column; withCustomers adds the distinct customer column.
func AggregateTable(rows []model.AggregateRow, keyLabel string, withCustomers bool) ([]string, [][]string) {
	header := []string{keyLabel, "Sales", "Profit", "Order_Count", "Avg_Profit_Margin_%"}
	if withCustomers {
		header = append(header, "Unique_Customers")
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := []string{r.Key, Cell(r.Sales), Cell(r.Profit), strconv.Itoa(r.Orders), Cell(r.AvgMarginPct)}
		if withCustomers {
			row = append(row, strconv.Itoa(r.Customers))
		}
		out = append(out, row)
	}
	return header, out
}

// SegmentTable converts segment summaries into header and rows.
func SegmentTable(rows []aggregate.SegmentRow) ([]string, [][]string) {
	header := []string{"Segment", "Customer_Count", "Order_Count", "Total_Sales", "Avg_Order_Value"}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Segment, strconv.Itoa(r.Customers), strconv.Itoa(r.Orders),
			Cell(r.Sales), Cell(r.AvgOrderValue),
		})
	}
	return header, out
}

// RecommendationTable converts advisory strings into a one-column table.
func RecommendationTable(recs []string) ([]string, [][]string) {
	header := []string{"Recommendation"}
	out := make([][]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, []string{r})
	}
	return header, out
}

// SummaryTable converts the executive summary into a key/value table.
func SummaryTable(s model.RunSummary) ([]string, [][]string) {
	header := []string{"Metric", "Value"}
	rows := [][]string{
		{"Total Revenue", Cell(s.TotalRevenue)},
		{"Total Profit", Cell(s.TotalProfit)},
		{"Total Orders", strconv.Itoa(s.TotalOrders)},
		{"Unique Customers", strconv.Itoa(s.UniqueCustomers)},
		{"Unique Products", strconv.Itoa(s.UniqueProducts)},
		{"Average Order Value", Cell(s.AvgOrderValue)},
		{"Profit Margin %", Cell(s.ProfitMarginPct)},
		{"Period Start", s.PeriodStart.Format("2006-01-02")},
		{"Period End", s.PeriodEnd.Format("2006-01-02")},
		{"Rows Loaded", strconv.Itoa(s.RowsLoaded)},
		{"Rows Rejected", strconv.Itoa(s.RowsRejected)},
		{"Validation Findings", strconv.Itoa(s.ValidationFindings)},
	}
	return header, rows
}
