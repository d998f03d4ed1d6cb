package archive

import (
	"testing"
	"time"

	"esr/internal/model"
)

func runRecord(id string, revenue float64) RunRecord {
	return RunRecord{
		ID:        id,
		CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Summary: model.RunSummary{
			TotalRevenue:    revenue,
			TotalOrders:     3,
			AvgOrderValue:   revenue / 3,
			ProfitMarginPct: model.Undefined(),
		},
		Recommendations: []string{"keep going"},
		ReportDir:       "reports",
	}
}

func TestNewRunID_Sortable(t *testing.T) {
	a := NewRunID(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	b := NewRunID(time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC))
	if a != "20240102T030405Z" {
		t.Fatalf("id = %q", a)
	}
	if !(a < b) {
		t.Fatalf("ids must sort chronologically: %q vs %q", a, b)
	}
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	if err := s.Put(RunRecord{}); err == nil {
		t.Fatal("empty id should be rejected")
	}
	if _, ok := s.Latest(); ok {
		t.Fatal("empty store should have no latest")
	}

	for _, id := range []string{"20240102T000000Z", "20240101T000000Z", "20240103T000000Z"} {
		if err := s.Put(runRecord(id, 100)); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	rec, ok := s.Get("20240101T000000Z")
	if !ok || rec.Summary.TotalRevenue != 100 {
		t.Fatalf("get: ok=%v rec=%+v", ok, rec)
	}
	if !model.IsUndefined(rec.Summary.ProfitMarginPct) {
		t.Fatalf("undefined margin must round-trip, got %v", rec.Summary.ProfitMarginPct)
	}
	if _, ok := s.Get("nope"); ok {
		t.Fatal("missing id should not be found")
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != "20240101T000000Z" || list[2].ID != "20240103T000000Z" {
		t.Fatalf("list not chronological: %+v", list)
	}

	latest, ok := s.Latest()
	if !ok || latest.ID != "20240103T000000Z" {
		t.Fatalf("latest: ok=%v rec=%+v", ok, latest)
	}

	// Re-putting the same id overwrites.
	if err := s.Put(runRecord("20240103T000000Z", 999)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	latest, _ = s.Latest()
	if latest.Summary.TotalRevenue != 999 {
		t.Fatalf("overwrite not visible: %+v", latest)
	}
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	defer s.Close()
	testStore(t, s)
}

func TestPebbleStore(t *testing.T) {
	s, err := NewPebbleStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestPebbleStore_ReopenSeesData(t *testing.T) {
	dir := t.TempDir()
	s, err := NewPebbleStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put(runRecord("20240101T000000Z", 42)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := NewPebbleStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	rec, ok := s2.Get("20240101T000000Z")
	if !ok || rec.Summary.TotalRevenue != 42 {
		t.Fatalf("data lost across reopen: ok=%v rec=%+v", ok, rec)
	}
}
