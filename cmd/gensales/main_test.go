package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_SameSeedSameOutput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	if err := run(Config{Count: 50, Output: a, Seed: 42}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := run(Config{Count: 50, Output: b, Seed: 42}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	da, err := os.ReadFile(a)
	if err != nil {
		t.Fatalf("read a: %v", err)
	}
	db, err := os.ReadFile(b)
	if err != nil {
		t.Fatalf("read b: %v", err)
	}
	if !bytes.Equal(da, db) {
		t.Fatal("same seed must produce identical files")
	}
}

func TestRun_DifferentSeedsDiffer(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	if err := run(Config{Count: 50, Output: a, Seed: 1}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := run(Config{Count: 50, Output: b, Seed: 2}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	da, _ := os.ReadFile(a)
	db, _ := os.ReadFile(b)
	if bytes.Equal(da, db) {
		t.Fatal("different seeds should produce different files")
	}
}

func TestRun_HeaderAndRowCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := run(Config{Count: 10, Output: path, Seed: 7}); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 11 {
		t.Fatalf("lines = %d, want header + 10 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Order ID,Order Date") {
		t.Fatalf("header: %q", lines[0])
	}
}
