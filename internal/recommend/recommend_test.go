package recommend

import (
	"strings"
	"testing"

	"esr/internal/model"
)

func months(sales ...float64) []model.PeriodRow {
	rows := make([]model.PeriodRow, len(sales))
	for i, s := range sales {
		rows[i] = model.PeriodRow{Period: "p", Sales: s}
	}
	return rows
}

func catRow(key string, margin float64) model.AggregateRow {
	return model.AggregateRow{Key: key, AvgMarginPct: margin}
}

func TestGenerate_FullInputsOrderedOutput(t *testing.T) {
	in := Inputs{
		Monthly:    months(100, 150),
		Categories: []model.AggregateRow{catRow("Electronics", 25), catRow("Furniture", 5)},
		Regions:    []model.AggregateRow{{Key: "West", Sales: 1234567}},
		Profiles: []model.CustomerProfile{
			{Customer: "a", Orders: 3},
			{Customer: "b", Orders: 2},
		},
		HighDiscountShare: 0.5,
		UPIShare:          0.4,
	}
	out := Generate(in)
	want := []string{
		"Revenue is growing month-over-month - continue current strategies",
		"Electronics has highest profit margins (25.0%) - consider expanding this category",
		"Furniture has lowest profit margins (5.0%) - review pricing and costs",
		"West generates most revenue ($1,234,567) - strengthen presence in this region",
		"Good customer retention - maintain current loyalty programs",
		"High discount usage (>15%) - review discount strategy and impact on profitability",
		"High UPI usage - ensure UPI infrastructure is robust",
	}
	if len(out) != len(want) {
		t.Fatalf("got %d recommendations, want %d: %v", len(out), len(want), out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("recommendation %d:\n got  %q\n want %q", i, out[i], want[i])
		}
	}
}

func TestGenerate_RevenueDeclineEmitsExactlyOneWarning(t *testing.T) {
	out := Generate(Inputs{Monthly: months(200, 150)})
	if len(out) != 1 {
		t.Fatalf("got %d recommendations, want 1: %v", len(out), out)
	}
	if !strings.Contains(out[0], "Revenue declined last month") {
		t.Fatalf("unexpected message: %q", out[0])
	}
}

func TestGenerate_SinglePeriodSkipsGrowthRule(t *testing.T) {
	out := Generate(Inputs{Monthly: months(100)})
	for _, msg := range out {
		if strings.Contains(msg, "Revenue") {
			t.Fatalf("single period should not trigger the growth rule: %q", msg)
		}
	}
}

func TestGenerate_LowRetention(t *testing.T) {
	out := Generate(Inputs{Profiles: []model.CustomerProfile{{Orders: 1}, {Orders: 1}}})
	if len(out) != 1 || !strings.Contains(out[0], "Low repeat purchase rate") {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestGenerate_SharesBelowCeilingsSilent(t *testing.T) {
	out := Generate(Inputs{HighDiscountShare: 0.3, UPIShare: 0.3})
	if len(out) != 0 {
		t.Fatalf("shares at the ceiling must stay silent: %v", out)
	}
}

func TestExtremeByMargin_SkipsUndefinedAndBreaksTies(t *testing.T) {
	rows := []model.AggregateRow{
		catRow("NoSales", model.Undefined()),
		catRow("Zeta", 10),
		catRow("Alpha", 10),
	}
	best, ok := extremeByMargin(rows, true)
	if !ok || best.Key != "Alpha" {
		t.Fatalf("best = %+v ok=%v, want Alpha", best, ok)
	}
	onlyUndefined := []model.AggregateRow{catRow("NoSales", model.Undefined())}
	if _, ok := extremeByMargin(onlyUndefined, true); ok {
		t.Fatal("all-undefined rows should report not found")
	}
}

func TestFormatThousands(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567.4, "1,234,567"},
		{-45000, "-45,000"},
	}
	for _, c := range cases {
		if got := formatThousands(c.in); got != c.want {
			t.Fatalf("formatThousands(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
