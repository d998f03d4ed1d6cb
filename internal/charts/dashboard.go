package charts

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"esr/internal/aggregate"
	"esr/internal/model"
)

// DashboardData is everything the static dashboard page shows.
type DashboardData struct {
	Summary         model.RunSummary
	Charts          []Config
	Segments        []aggregate.SegmentRow
	TopProducts     []model.AggregateRow
	BottomProducts  []model.AggregateRow
	Recommendations []string
	Gaps            []string
}

var dashboardTpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"svg":  func(c Config) template.HTML { return template.HTML(c.SVG()) },
	"cell": formatCell,
}).Parse(`<!doctype html><html><head>
<meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Sales Analysis Dashboard</title>
<style>
body{font-family:system-ui,Segoe UI,Roboto,Arial;background:#0b1020;color:#e8ecff;margin:0;padding:20px}
.card{background:#111837;border:1px solid #203063;border-radius:14px;padding:16px;margin:12px 0}
h1{margin:0 0 10px 0} .muted{color:#9aa7cf} table{width:100%;border-collapse:collapse}
th,td{border-bottom:1px solid #22305f;padding:8px;text-align:left}
.badge{display:inline-block;background:#1b2a59;padding:4px 8px;border-radius:8px;margin-right:6px}
svg{max-width:100%}
</style>
</head><body>
<h1>Sales Analysis Dashboard</h1>

<div class="card">
  <h3>Key Business Metrics ({{.Summary.PeriodStart.Format "2006-01-02"}} to {{.Summary.PeriodEnd.Format "2006-01-02"}})</h3>
  <div class="badge">Revenue: ${{cell .Summary.TotalRevenue}}</div>
  <div class="badge">Profit: ${{cell .Summary.TotalProfit}}</div>
  <div class="badge">Orders: {{.Summary.TotalOrders}}</div>
  <div class="badge">AOV: ${{cell .Summary.AvgOrderValue}}</div>
  <div class="badge">Margin: {{cell .Summary.ProfitMarginPct}}%</div>
  <div class="badge">Customers: {{.Summary.UniqueCustomers}}</div>
  <div class="badge">Products: {{.Summary.UniqueProducts}}</div>
</div>

{{range .Charts}}
<div class="card">
  <h3>{{.Title}}</h3>
  {{svg .}}
</div>
{{end}}

{{if .Segments}}
<div class="card">
  <h3>Customer Segments</h3>
  <table><thead><tr><th>Segment</th><th>Customers</th><th>Orders</th><th>Total Sales</th><th>Avg Order Value</th></tr></thead><tbody>
  {{range .Segments}}<tr><td>{{.Segment}}</td><td>{{.Customers}}</td><td>{{.Orders}}</td><td>${{cell .Sales}}</td><td>${{cell .AvgOrderValue}}</td></tr>{{end}}
  </tbody></table>
</div>
{{end}}

{{if .TopProducts}}
<div class="card">
  <h3>Top Products by Profit</h3>
  <table><thead><tr><th>Product</th><th>Profit</th><th>Sales</th><th>Orders</th></tr></thead><tbody>
  {{range .TopProducts}}<tr><td>{{.Key}}</td><td>${{cell .Profit}}</td><td>${{cell .Sales}}</td><td>{{.Orders}}</td></tr>{{end}}
  </tbody></table>
</div>
{{end}}

{{if .BottomProducts}}
<div class="card">
  <h3>Least Profitable Products</h3>
  <table><thead><tr><th>Product</th><th>Profit</th><th>Sales</th><th>Orders</th></tr></thead><tbody>
  {{range .BottomProducts}}<tr><td>{{.Key}}</td><td>${{cell .Profit}}</td><td>${{cell .Sales}}</td><td>{{.Orders}}</td></tr>{{end}}
  </tbody></table>
</div>
{{end}}

{{if .Recommendations}}
<div class="card">
  <h3>Business Recommendations</h3>
  <ul>{{range .Recommendations}}<li>{{.}}</li>{{end}}</ul>
</div>
{{end}}

{{if .Gaps}}
<div class="card">
  <h3>Incomplete Aggregations</h3>
  <ul class="muted">{{range .Gaps}}<li>{{.}}</li>{{end}}</ul>
</div>
{{end}}

</body></html>
`))

func formatCell(v float64) string {
	if model.IsUndefined(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// WriteDashboard renders the static dashboard.html artifact under dir.
// Rewritten in place on every run.
func WriteDashboard(dir string, data DashboardData) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, "dashboard.html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := dashboardTpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("render dashboard: %w", err)
	}
	return path, nil
}
