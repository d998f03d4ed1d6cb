// Package pipeline wires the reporting stages into one configurable runner:
// load -> enrich -> validate -> aggregate -> {reports, recommendations,
// dashboard}. Each aggregation is isolated; a failure becomes a gap in the
// result and never blocks the remaining aggregations.
package pipeline

import (
	"fmt"
	"time"

	"esr/internal/aggregate"
	"esr/internal/charts"
	"esr/internal/enrich"
	"esr/internal/metrics"
	"esr/internal/model"
	"esr/internal/recommend"
	"esr/internal/report"
	"esr/internal/schema"
	"esr/internal/validate"
)

// Options selects the stages and parameters of one run.
type Options struct {
	Epsilon        float64 // sales cross-check tolerance; 0 = default
	Tiers          enrich.TierConfig
	Granularity    aggregate.Granularity
	TopN           int
	OutputDir      string
	WriteReports   bool
	WriteDashboard bool
	Metrics        *metrics.Registry // optional
}

// DefaultOptions is the full run: all reports plus the dashboard artifact.
func DefaultOptions(outputDir string) Options {
	return Options{
		Tiers:          enrich.DefaultTiers(),
		Granularity:    aggregate.Monthly,
		TopN:           5,
		OutputDir:      outputDir,
		WriteReports:   true,
		WriteDashboard: true,
	}
}

// Result carries every stage output of one run.
type Result struct {
	Load            schema.LoadReport
	Validation      validate.Report
	Summary         model.RunSummary
	Series          []model.PeriodRow
	Categories      []model.AggregateRow
	SubCategories   []model.AggregateRow
	Regions         []model.AggregateRow
	Cities          []model.AggregateRow
	PaymentModes    []model.AggregateRow
	Discounts       []model.AggregateRow
	TopProducts     []model.AggregateRow
	BottomProducts  []model.AggregateRow
	Profiles        []model.CustomerProfile
	Segments        []aggregate.SegmentRow
	Recommendations []string
	Gaps            []string
	ReportPaths     []string
}

// Run executes the pipeline over one CSV file. Schema errors abort before
// aggregation; computation errors surface as gaps in the result.
func Run(csvPath string, opts Options) (Result, error) {
	started := time.Now()
	var res Result

	recs, loadRep, err := schema.LoadFile(csvPath)
	if err != nil {
		return res, err
	}
	res.Load = loadRep
	if len(recs) == 0 {
		return res, &model.ComputationError{Aggregation: "pipeline", Reason: "empty input table"}
	}

	enriched, err := enrich.Records(recs, opts.Tiers)
	if err != nil {
		return res, fmt.Errorf("enrich: %w", err)
	}
	res.Validation = validate.Check(recs, opts.Epsilon)

	if m := opts.Metrics; m != nil {
		m.RowsLoaded.Add(float64(loadRep.RowsLoaded))
		m.RowsRejected.Add(float64(loadRep.RowsRejected))
		m.ValidationFindings.Add(float64(res.Validation.Findings()))
	}

	res.runAggregations(enriched, opts)
	res.Summary = summarize(enriched, loadRep, res.Validation)

	// The month-over-month rule always compares calendar months, whatever
	// granularity the reports use.
	monthly := res.Series
	if opts.Granularity != aggregate.Monthly {
		monthly, _ = aggregate.TimeSeries(enriched, aggregate.Monthly)
	}
	res.Recommendations = recommend.Generate(recommend.Inputs{
		Monthly:           monthly,
		Categories:        res.Categories,
		Regions:           res.Regions,
		Profiles:          res.Profiles,
		HighDiscountShare: shareOf(enriched, func(r model.EnrichedRecord) bool { return r.DiscountPct > 15 }),
		UPIShare:          shareOf(enriched, func(r model.EnrichedRecord) bool { return r.PaymentMode == "Upi" || r.PaymentMode == "UPI" }),
	})

	if opts.WriteReports {
		if err := res.writeReports(opts); err != nil {
			return res, err
		}
	}
	if opts.WriteDashboard {
		path, err := charts.WriteDashboard(opts.OutputDir, res.dashboardData(opts))
		if err != nil {
			return res, err
		}
		res.ReportPaths = append(res.ReportPaths, path)
	}

	if m := opts.Metrics; m != nil {
		m.RunDurationSec.Set(time.Since(started).Seconds())
	}
	return res, nil
}

// runAggregations computes every aggregate set, collecting failures as gaps.
func (res *Result) runAggregations(enriched []model.EnrichedRecord, opts Options) {
	isolate := func(fn func() error) {
		if err := fn(); err != nil {
			res.Gaps = append(res.Gaps, err.Error())
			if opts.Metrics != nil {
				opts.Metrics.AggregationsFailed.Inc()
			}
			return
		}
		if opts.Metrics != nil {
			opts.Metrics.AggregationsOK.Inc()
		}
	}

	isolate(func() (err error) {
		res.Series, err = aggregate.TimeSeries(enriched, opts.Granularity)
		return
	})
	byDim := func(dst *[]model.AggregateRow, dim aggregate.Dimension) {
		isolate(func() (err error) {
			*dst, err = aggregate.ByDimension(enriched, dim)
			return
		})
	}
	byDim(&res.Categories, aggregate.Category)
	byDim(&res.SubCategories, aggregate.SubCategory)
	byDim(&res.Regions, aggregate.Region)
	byDim(&res.Cities, aggregate.City)
	byDim(&res.PaymentModes, aggregate.PaymentMode)
	isolate(func() (err error) {
		res.Discounts, err = aggregate.DiscountBuckets(enriched)
		return
	})
	isolate(func() (err error) {
		res.TopProducts, err = aggregate.TopProductsByProfit(enriched, opts.TopN)
		return
	})
	isolate(func() (err error) {
		res.BottomProducts, err = aggregate.BottomProductsByProfit(enriched, opts.TopN)
		return
	})
	isolate(func() (err error) {
		res.Profiles, err = aggregate.CustomerProfiles(enriched)
		if err == nil {
			res.Segments = aggregate.SegmentSummary(res.Profiles)
		}
		return
	})
}

func (res *Result) writeReports(opts Options) error {
	write := func(name string, header []string, rows [][]string) error {
		path, err := report.WriteCSV(opts.OutputDir, name, header, rows)
		if err != nil {
			return fmt.Errorf("report %s: %w", name, err)
		}
		res.ReportPaths = append(res.ReportPaths, path)
		if opts.Metrics != nil {
			opts.Metrics.ReportsWritten.Inc()
		}
		return nil
	}

	h, rows := report.PeriodTable(res.Series)
	if err := write(report.FileMonthlyRevenue, h, rows); err != nil {
		return err
	}
	tables := []struct {
		file  string
		rows  []model.AggregateRow
		label string
		cust  bool
	}{
		{report.FileCategory, res.Categories, "Category", false},
		{report.FileSubCategory, res.SubCategories, "Sub-Category", false},
		{report.FileRegion, res.Regions, "Region", true},
		{report.FileCity, res.Cities, "City", false},
		{report.FilePaymentMode, res.PaymentModes, "Payment Mode", false},
		{report.FileDiscountImpact, res.Discounts, "Discount Range", false},
		{report.FileProductProfit, res.productRows(), "Product Name", false},
	}
	for _, t := range tables {
		h, rows := report.AggregateTable(t.rows, t.label, t.cust)
		if err := write(t.file, h, rows); err != nil {
			return err
		}
	}
	h, rows = report.SegmentTable(res.Segments)
	if err := write(report.FileCustomerSeg, h, rows); err != nil {
		return err
	}
	h, rows = report.RecommendationTable(res.Recommendations)
	if err := write(report.FileRecommendations, h, rows); err != nil {
		return err
	}
	h, rows = report.SummaryTable(res.Summary)
	return write(report.FileExecSummary, h, rows)
}

// productRows is the product report body: the top-N leaders followed by the
// bottom-N laggards, without repeating a product that appears in both.
func (res *Result) productRows() []model.AggregateRow {
	rows := append([]model.AggregateRow(nil), res.TopProducts...)
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[r.Key] = struct{}{}
	}
	for _, r := range res.BottomProducts {
		if _, ok := seen[r.Key]; !ok {
			rows = append(rows, r)
		}
	}
	return rows
}

func (res *Result) dashboardData(opts Options) charts.DashboardData {
	sales := func(r model.AggregateRow) float64 { return r.Sales }
	margin := func(r model.AggregateRow) float64 { return r.AvgMarginPct }
	return charts.DashboardData{
		Summary: res.Summary,
		Charts: []charts.Config{
			charts.LineFromPeriods("Revenue by "+opts.Granularity.String(), res.Series),
			charts.BarFromAggregates("Revenue by Category", "Sales", res.Categories, 0, sales),
			charts.BarFromAggregates("Revenue by Region", "Sales", res.Regions, 0, sales),
			charts.BarFromAggregates("Top Cities by Revenue", "Sales", res.Cities, 10, sales),
			charts.BarFromAggregates("Margin by Discount Range", "Avg Margin %", res.Discounts, 0, margin),
		},
		Segments:        res.Segments,
		TopProducts:     res.TopProducts,
		BottomProducts:  res.BottomProducts,
		Recommendations: res.Recommendations,
		Gaps:            res.Gaps,
	}
}

func summarize(enriched []model.EnrichedRecord, load schema.LoadReport, val validate.Report) model.RunSummary {
	s := model.RunSummary{
		GeneratedAt:        time.Now().UTC(),
		TotalOrders:        len(enriched),
		AvgOrderValue:      model.Undefined(),
		ProfitMarginPct:    model.Undefined(),
		RowsLoaded:         load.RowsLoaded,
		RowsRejected:       load.RowsRejected,
		ValidationFindings: val.Findings(),
	}
	customers := make(map[string]struct{})
	products := make(map[string]struct{})
	for i, r := range enriched {
		s.TotalRevenue += r.Sales
		s.TotalProfit += r.Profit
		customers[r.CustomerName] = struct{}{}
		products[r.ProductName] = struct{}{}
		if i == 0 || r.OrderDate.Before(s.PeriodStart) {
			s.PeriodStart = r.OrderDate
		}
		if i == 0 || r.OrderDate.After(s.PeriodEnd) {
			s.PeriodEnd = r.OrderDate
		}
	}
	s.UniqueCustomers = len(customers)
	s.UniqueProducts = len(products)
	if s.TotalOrders > 0 {
		s.AvgOrderValue = s.TotalRevenue / float64(s.TotalOrders)
	}
	if s.TotalRevenue != 0 {
		s.ProfitMarginPct = s.TotalProfit / s.TotalRevenue * 100
	}
	return s
}

// shareOf is the fraction of records matching pred.
func shareOf(recs []model.EnrichedRecord, pred func(model.EnrichedRecord) bool) float64 {
	if len(recs) == 0 {
		return 0
	}
	var n int
	for _, r := range recs {
		if pred(r) {
			n++
		}
	}
	return float64(n) / float64(len(recs))
}
