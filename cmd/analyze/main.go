package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"esr/internal/aggregate"
	"esr/internal/archive"
	"esr/internal/metrics"
	"esr/internal/pipeline"
	"esr/internal/publish"
)

// Config holds CLI flags for the analyze run.
type Config struct {
	Input       string
	OutputDir   string
	Granularity string
	TopN        int
	Epsilon     float64
	SkipReports bool
	SkipCharts  bool
	// Run archive
	ArchiveDir string
	// Publication sinks
	PublishSink    string // none|file|kafka|both
	KafkaBootstrap string
	KafkaTopic     string
}

func main() {
	cfg := readFlags()
	if err := run(cfg); err != nil {
		log.Fatalf("analyze failed: %v", err)
	}
}

func readFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Input, "input", "data/raw/ecommerce_sales.csv", "input CSV file")
	flag.StringVar(&cfg.OutputDir, "output", "reports", "output directory for reports and dashboard")
	flag.StringVar(&cfg.Granularity, "granularity", "month", "time series granularity: day|month|quarter|year")
	flag.IntVar(&cfg.TopN, "top", 5, "product leaderboard size")
	flag.Float64Var(&cfg.Epsilon, "epsilon", 0.01, "relative tolerance for the sales cross-check")
	flag.BoolVar(&cfg.SkipReports, "skip-reports", false, "skip CSV report writing")
	flag.BoolVar(&cfg.SkipCharts, "skip-dashboard", false, "skip the static dashboard artifact")
	flag.StringVar(&cfg.ArchiveDir, "archive-dir", "", "pebble run archive directory (empty disables archiving)")
	flag.StringVar(&cfg.PublishSink, "publish", "none", "run summary sink: none|file|kafka|both")
	flag.StringVar(&cfg.KafkaBootstrap, "kafka-bootstrap", "", "kafka bootstrap servers, e.g. localhost:9092")
	flag.StringVar(&cfg.KafkaTopic, "kafka-topic", "esr.run-summaries", "kafka topic for run summaries")
	flag.Parse()
	return cfg
}

// buildOptions translates CLI flags into pipeline options, with the
// instrumentation registry attached.
func buildOptions(cfg Config) (pipeline.Options, error) {
	gran, err := aggregate.ParseGranularity(cfg.Granularity)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.DefaultOptions(cfg.OutputDir)
	opts.Granularity = gran
	opts.TopN = cfg.TopN
	opts.Epsilon = cfg.Epsilon
	opts.WriteReports = !cfg.SkipReports
	opts.WriteDashboard = !cfg.SkipCharts
	opts.Metrics = metrics.NewRegistry()
	return opts, nil
}

func run(cfg Config) error {
	log.Printf("starting analysis input=%s output=%s granularity=%s", cfg.Input, cfg.OutputDir, cfg.Granularity)

	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(cfg.Input, opts)
	if err != nil {
		return err
	}

	log.Printf("loaded %d rows (%d rejected, encoding %s)", res.Load.RowsLoaded, res.Load.RowsRejected, res.Load.Encoding)
	log.Printf("validation: %d findings over %d rows", res.Validation.Findings(), res.Validation.RowsChecked)
	log.Printf("summary: revenue=%.2f profit=%.2f orders=%d customers=%d",
		res.Summary.TotalRevenue, res.Summary.TotalProfit, res.Summary.TotalOrders, res.Summary.UniqueCustomers)
	for _, gap := range res.Gaps {
		log.Printf("aggregation gap: %s", gap)
	}
	for i, rec := range res.Recommendations {
		log.Printf("recommendation %d: %s", i+1, rec)
	}
	for _, p := range res.ReportPaths {
		log.Printf("wrote %s", p)
	}
	logMetrics(opts.Metrics)

	record := archive.RunRecord{
		ID:              archive.NewRunID(time.Now()),
		CreatedAt:       time.Now().UTC(),
		Summary:         res.Summary,
		Recommendations: res.Recommendations,
		Gaps:            res.Gaps,
		ReportDir:       cfg.OutputDir,
	}

	if cfg.ArchiveDir != "" {
		store, err := archive.NewPebbleStore(cfg.ArchiveDir)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer store.Close()
		if err := store.Put(record); err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		log.Printf("archived run %s", record.ID)
	}

	pub, err := buildPublisher(cfg)
	if err != nil {
		return err
	}
	if pub != nil {
		if err := pub.Publish(record); err != nil {
			return fmt.Errorf("publish run: %w", err)
		}
		log.Printf("published run %s via %s", record.ID, cfg.PublishSink)
	}
	return nil
}

func logMetrics(reg *metrics.Registry) {
	snap, err := reg.Snapshot()
	if err != nil {
		log.Printf("metrics snapshot failed: %v", err)
		return
	}
	names := make([]string, 0, len(snap))
	for n := range snap {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		log.Printf("metric %s=%g", n, snap[n])
	}
}

func buildPublisher(cfg Config) (publish.Publisher, error) {
	var pubs []publish.Publisher
	if cfg.PublishSink == "file" || cfg.PublishSink == "both" {
		fw, err := publish.NewFileWriter(cfg.OutputDir, "run_summaries.jsonl")
		if err != nil {
			return nil, fmt.Errorf("init file sink: %w", err)
		}
		pubs = append(pubs, fw)
	}
	if (cfg.PublishSink == "kafka" || cfg.PublishSink == "both") && cfg.KafkaBootstrap != "" {
		pubs = append(pubs, publish.NewKafkaWriter(cfg.KafkaBootstrap, cfg.KafkaTopic))
	}
	switch len(pubs) {
	case 0:
		return nil, nil
	case 1:
		return pubs[0], nil
	}
	return publish.NewMultiPublisher(pubs...), nil
}
