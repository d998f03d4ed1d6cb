package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"

	"esr/internal/archive"
	"esr/internal/metrics"
)

// Config holds CLI flags for the dashboard server.
type Config struct {
	Addr       string
	ReportDir  string
	ArchiveDir string
}

func main() {
	cfg := readFlags()
	if err := run(cfg); err != nil {
		log.Fatalf("dashboard failed: %v", err)
	}
}

func readFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Addr, "addr", ":8000", "listen address")
	flag.StringVar(&cfg.ReportDir, "reports", "reports", "directory with reports and dashboard.html")
	flag.StringVar(&cfg.ArchiveDir, "archive-dir", "", "pebble run archive directory (empty disables /api/runs)")
	flag.Parse()
	return cfg
}

func run(cfg Config) error {
	mreg := metrics.NewRegistry()

	var store archive.Store
	if cfg.ArchiveDir != "" {
		ps, err := archive.NewPebbleStore(cfg.ArchiveDir)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer ps.Close()
		store = ps
	}

	mux := http.NewServeMux()
	mux.Handle("/", noCache(countRequests(mreg, http.FileServer(http.Dir(cfg.ReportDir)))))
	mux.Handle("/metrics", mreg.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})
	mux.HandleFunc("/api/runs", func(w http.ResponseWriter, r *http.Request) {
		mreg.DashboardRequests.Inc()
		if store == nil {
			http.Error(w, "run archive not configured", http.StatusNotFound)
			return
		}
		runs, err := store.List()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		mreg.RunsArchived.Set(float64(len(runs)))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(runs)
	})
	mux.HandleFunc("/api/runs/latest", func(w http.ResponseWriter, r *http.Request) {
		mreg.DashboardRequests.Inc()
		if store == nil {
			http.Error(w, "run archive not configured", http.StatusNotFound)
			return
		}
		rec, ok := store.Latest()
		if !ok {
			http.Error(w, "no runs archived yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rec)
	})

	log.Printf("dashboard on %s serving %s (open /dashboard.html)", cfg.Addr, cfg.ReportDir)
	return http.ListenAndServe(cfg.Addr, mux)
}

// noCache mirrors the original dashboard server: reports change between
// runs, browsers must not cache them.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func countRequests(mreg *metrics.Registry, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mreg.DashboardRequests.Inc()
		next.ServeHTTP(w, r)
	})
}
