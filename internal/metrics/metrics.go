package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the pipeline and dashboard instrumentation.
type Registry struct {
	reg *prometheus.Registry

	RowsLoaded         prometheus.Counter
	RowsRejected       prometheus.Counter
	ValidationFindings prometheus.Counter
	AggregationsOK     prometheus.Counter
	AggregationsFailed prometheus.Counter
	RunDurationSec     prometheus.Gauge
	ReportsWritten     prometheus.Counter

	DashboardRequests prometheus.Counter
	RunsArchived      prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	rowsLoaded := prometheus.NewCounter(prometheus.CounterOpts{Name: "esr_rows_loaded_total"})
	rowsRejected := prometheus.NewCounter(prometheus.CounterOpts{Name: "esr_rows_rejected_total"})
	findings := prometheus.NewCounter(prometheus.CounterOpts{Name: "esr_validation_findings_total"})
	aggOK := prometheus.NewCounter(prometheus.CounterOpts{Name: "esr_aggregations_completed_total"})
	aggFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "esr_aggregations_failed_total"})
	runDur := prometheus.NewGauge(prometheus.GaugeOpts{Name: "esr_run_duration_seconds"})
	reports := prometheus.NewCounter(prometheus.CounterOpts{Name: "esr_reports_written_total"})
	dashReq := prometheus.NewCounter(prometheus.CounterOpts{Name: "esr_dashboard_requests_total"})
	runs := prometheus.NewGauge(prometheus.GaugeOpts{Name: "esr_runs_archived"})

	r.MustRegister(rowsLoaded, rowsRejected, findings, aggOK, aggFailed, runDur, reports, dashReq, runs)
	return &Registry{
		reg:                r,
		RowsLoaded:         rowsLoaded,
		RowsRejected:       rowsRejected,
		ValidationFindings: findings,
		AggregationsOK:     aggOK,
		AggregationsFailed: aggFailed,
		RunDurationSec:     runDur,
		ReportsWritten:     reports,
		DashboardRequests:  dashReq,
		RunsArchived:       runs,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// Snapshot returns the current value of every registered instrument, keyed by
// metric name. Batch binaries log this after a run instead of serving HTTP.
func (r *Registry) Snapshot() (map[string]float64, error) {
	fams, err := r.reg.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(fams))
	for _, f := range fams {
		if len(f.Metric) == 0 {
			continue
		}
		m := f.Metric[0]
		switch {
		case m.Counter != nil:
			out[f.GetName()] = m.Counter.GetValue()
		case m.Gauge != nil:
			out[f.GetName()] = m.Gauge.GetValue()
		}
	}
	return out, nil
}
