package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"esr/internal/aggregate"
	"esr/internal/model"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteCSV_CreatesDirAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	path, err := WriteCSV(dir, "out.csv", []string{"A", "B"}, [][]string{{"1", "2"}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	rows := readCSV(t, path)
	if len(rows) != 2 || rows[0][0] != "A" || rows[1][1] != "2" {
		t.Fatalf("unexpected content: %v", rows)
	}
}

func TestWriteCSV_OverwritesOnRerun(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteCSV(dir, "out.csv", []string{"A"}, [][]string{{"old1"}, {"old2"}}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	path, err := WriteCSV(dir, "out.csv", []string{"A"}, [][]string{{"new"}})
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	rows := readCSV(t, path)
	if len(rows) != 2 || rows[1][0] != "new" {
		t.Fatalf("rerun should truncate, got %v", rows)
	}
}

func TestCell(t *testing.T) {
	if got := Cell(12.345); got != "12.35" {
		t.Fatalf("Cell(12.345) = %q", got)
	}
	if got := Cell(model.Undefined()); got != "" {
		t.Fatalf("undefined should render empty, got %q", got)
	}
}

func TestPeriodTable_UndefinedGrowthEmpty(t *testing.T) {
	header, rows := PeriodTable([]model.PeriodRow{
		{Period: "2024-01", Sales: 100, Profit: 20, Orders: 3, RevenueGrowthPct: model.Undefined(), ProfitGrowthPct: model.Undefined()},
		{Period: "2024-02", Sales: 150, Profit: 30, Orders: 4, RevenueGrowthPct: 50, ProfitGrowthPct: 50},
	})
	if header[0] != "Period" || len(header) != 6 {
		t.Fatalf("header: %v", header)
	}
	if rows[0][4] != "" || rows[0][5] != "" {
		t.Fatalf("first period growth cells should be empty: %v", rows[0])
	}
	if rows[1][4] != "50.00" {
		t.Fatalf("growth cell: %v", rows[1])
	}
}

func TestAggregateTable_CustomerColumnOptional(t *testing.T) {
	in := []model.AggregateRow{{Key: "West", Sales: 10, Profit: 2, Orders: 1, AvgMarginPct: 20, Customers: 7}}
	header, rows := AggregateTable(in, "Region", true)
	if header[len(header)-1] != "Unique_Customers" || rows[0][len(rows[0])-1] != "7" {
		t.Fatalf("with customers: header=%v rows=%v", header, rows)
	}
	header, rows = AggregateTable(in, "Region", false)
	if len(header) != 5 || len(rows[0]) != 5 {
		t.Fatalf("without customers: header=%v rows=%v", header, rows)
	}
}

func TestSegmentTable(t *testing.T) {
	_, rows := SegmentTable([]aggregate.SegmentRow{
		{Segment: "Bronze", Customers: 2, Orders: 3, Sales: 1200, AvgOrderValue: 400},
		{Segment: "Silver", AvgOrderValue: model.Undefined()},
	})
	if rows[0][0] != "Bronze" || rows[0][4] != "400.00" {
		t.Fatalf("bronze row: %v", rows[0])
	}
	if rows[1][4] != "" {
		t.Fatalf("empty segment avg should be empty cell: %v", rows[1])
	}
}

func TestSummaryTable_ContainsAllMetrics(t *testing.T) {
	s := model.RunSummary{TotalRevenue: 1000, TotalOrders: 10, AvgOrderValue: 100, ProfitMarginPct: model.Undefined()}
	header, rows := SummaryTable(s)
	if header[0] != "Metric" {
		t.Fatalf("header: %v", header)
	}
	byMetric := make(map[string]string, len(rows))
	for _, r := range rows {
		byMetric[r[0]] = r[1]
	}
	if byMetric["Total Revenue"] != "1000.00" || byMetric["Average Order Value"] != "100.00" {
		t.Fatalf("values: %v", byMetric)
	}
	if byMetric["Profit Margin %"] != "" {
		t.Fatalf("undefined margin should be empty: %q", byMetric["Profit Margin %"])
	}
}

func TestRecommendationTable(t *testing.T) {
	header, rows := RecommendationTable([]string{"do a", "do b"})
	if len(header) != 1 || len(rows) != 2 || !strings.HasPrefix(rows[1][0], "do b") {
		t.Fatalf("table: %v %v", header, rows)
	}
}
