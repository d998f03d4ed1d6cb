package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// Config holds CLI flags for the sample data generator.
type Config struct {
	Count  int
	Output string
	Seed   int64
}

func main() {
	cfg := readFlags()
	if err := run(cfg); err != nil {
		log.Fatalf("generation failed: %v", err)
	}
}

func readFlags() Config {
	var cfg Config
	flag.IntVar(&cfg.Count, "count", 500, "number of order rows to generate")
	flag.StringVar(&cfg.Output, "output", "data/raw/ecommerce_sales.csv", "output CSV file")
	flag.Int64Var(&cfg.Seed, "seed", 0, "random seed (0 = time-based)")
	flag.Parse()
	return cfg
}

var (
	customers  = []string{"Aarav Shah", "Meera Iyer", "Rohan Gupta", "Priya Nair", "Kabir Singh", "Ananya Das", "Vikram Rao", "Isha Patel"}
	categories = map[string][]string{
		"Electronics": {"Phones", "Laptops", "Accessories"},
		"Furniture":   {"Chairs", "Tables", "Storage"},
		"Clothing":    {"Mens Wear", "Womens Wear", "Kids Wear"},
	}
	products = map[string][]string{
		"Phones":      {"Nimbus X1", "Nimbus X2"},
		"Laptops":     {"Orbit Pro 14", "Orbit Air 13"},
		"Accessories": {"Volt Charger", "Pulse Earbuds"},
		"Chairs":      {"Ergo Chair", "Studio Stool"},
		"Tables":      {"Oak Desk", "Side Table"},
		"Storage":     {"Cube Shelf", "File Cabinet"},
		"Mens Wear":   {"Linen Shirt", "Denim Jacket"},
		"Womens Wear": {"Silk Scarf", "Wrap Dress"},
		"Kids Wear":   {"Play Tee", "Rain Boots"},
	}
	regions = map[string][]string{
		"North": {"Delhi", "Chandigarh"},
		"South": {"Bengaluru", "Chennai"},
		"East":  {"Kolkata", "Patna"},
		"West":  {"Mumbai", "Pune"},
	}
	paymentModes = []string{"UPI", "Credit Card", "Debit Card", "Cash On Delivery"}
)

func run(cfg Config) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create %s: %w", cfg.Output, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"Order ID", "Order Date", "Customer Name", "Product Name", "Category",
		"Sub-Category", "Region", "City", "Payment Mode", "Quantity",
		"Unit Price", "Discount", "Sales", "Profit",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	catKeys := keys(categories)
	regionKeys := keys(regions)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < cfg.Count; i++ {
		cat := catKeys[rng.Intn(len(catKeys))]
		sub := categories[cat][rng.Intn(len(categories[cat]))]
		product := products[sub][rng.Intn(len(products[sub]))]
		region := regionKeys[rng.Intn(len(regionKeys))]
		city := regions[region][rng.Intn(len(regions[region]))]

		qty := 1 + rng.Intn(5)
		price := float64(500 + rng.Intn(95000))
		discount := float64(rng.Intn(31))
		sales := float64(qty) * price * (1 - discount/100)
		// Margin between -10% and +35% so loss-making orders show up too.
		profit := sales * (float64(rng.Intn(46)-10) / 100)
		date := base.AddDate(0, 0, rng.Intn(540))

		row := []string{
			fmt.Sprintf("ORD-%05d", i+1),
			date.Format("2006-01-02"),
			customers[rng.Intn(len(customers))],
			product,
			cat,
			sub,
			region,
			city,
			paymentModes[rng.Intn(len(paymentModes))],
			strconv.Itoa(qty),
			strconv.FormatFloat(price, 'f', 2, 64),
			strconv.FormatFloat(discount, 'f', 0, 64),
			strconv.FormatFloat(sales, 'f', 2, 64),
			strconv.FormatFloat(profit, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	log.Printf("generated %d orders to %s (seed %d)", cfg.Count, cfg.Output, seed)
	return nil
}

// keys returns sorted map keys so RNG indexing is stable for a fixed seed.
func keys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
