package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"esr/internal/fetch"
)

// Config holds CLI flags for the dataset download.
type Config struct {
	URL      string
	Dir      string
	Filename string
	Timeout  time.Duration
}

func main() {
	cfg := readFlags()
	if err := run(cfg); err != nil {
		log.Fatalf("fetch failed: %v", err)
	}
}

func readFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.URL, "url", "", "dataset URL (required)")
	flag.StringVar(&cfg.Dir, "dir", "data/raw", "destination directory")
	flag.StringVar(&cfg.Filename, "name", "ecommerce_sales.csv", "destination filename")
	flag.DurationVar(&cfg.Timeout, "timeout", 2*time.Minute, "download timeout")
	flag.Parse()
	return cfg
}

func run(cfg Config) error {
	if cfg.URL == "" {
		flag.Usage()
		return fmt.Errorf("missing -url")
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	path, n, err := fetch.Download(ctx, cfg.URL, cfg.Dir, cfg.Filename)
	if err != nil {
		return err
	}
	log.Printf("downloaded %s (%.2f MB)", path, float64(n)/(1024*1024))
	return nil
}
