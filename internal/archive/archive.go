// Package archive keeps an append-only record of finished pipeline runs so
// the dashboard can list and serve past results. Aggregates are always
// recomputed from the raw table; the archive stores only run summaries.
package archive

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"esr/internal/model"
)

// RunRecord is the immutable summary of one pipeline run.
type RunRecord struct {
	ID              string           `json:"id"` // RFC3339 timestamp; lexicographic order is chronological
	CreatedAt       time.Time        `json:"createdAt"`
	Summary         model.RunSummary `json:"summary"`
	Recommendations []string         `json:"recommendations,omitempty"`
	Gaps            []string         `json:"gaps,omitempty"`
	ReportDir       string           `json:"reportDir"`
}

// NewRunID derives a sortable run identifier from a timestamp.
func NewRunID(t time.Time) string { return t.UTC().Format("20060102T150405Z") }

// Store abstracts the archive backend.
type Store interface {
	Put(rec RunRecord) error
	Get(id string) (RunRecord, bool)
	List() ([]RunRecord, error) // chronological
	Latest() (RunRecord, bool)
	Close() error
}

func encodeRecord(rec RunRecord) ([]byte, error) { return json.Marshal(rec) }

func decodeRecord(val []byte) (RunRecord, error) {
	var rec RunRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

// MemStore is a simple thread-safe in-memory archive, used in tests and when
// no archive directory is configured.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]RunRecord
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]RunRecord)}
}

func (s *MemStore) Put(rec RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("archive: empty run id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.ID] = rec
	return nil
}

func (s *MemStore) Get(id string) (RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[id]
	return rec, ok
}

func (s *MemStore) List() ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]RunRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.data[id])
	}
	return out, nil
}

func (s *MemStore) Latest() (RunRecord, bool) {
	recs, _ := s.List()
	if len(recs) == 0 {
		return RunRecord{}, false
	}
	return recs[len(recs)-1], true
}

func (s *MemStore) Close() error { return nil }
