package archive

import (
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// PebbleStore implements Store on PebbleDB. Run IDs sort chronologically,
// so Latest is the last key of a forward iteration.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: d}, nil
}

func (p *PebbleStore) Close() error { return p.db.Close() }

func (p *PebbleStore) Put(rec RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("archive: empty run id")
	}
	val, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", rec.ID, err)
	}
	if err := p.db.Set([]byte(rec.ID), val, pebble.Sync); err != nil {
		return fmt.Errorf("put run %s: %w", rec.ID, err)
	}
	return nil
}

func (p *PebbleStore) Get(id string) (RunRecord, bool) {
	v, closer, err := p.db.Get([]byte(id))
	if err != nil {
		return RunRecord{}, false
	}
	defer closer.Close()
	rec, err := decodeRecord(v)
	if err != nil {
		return RunRecord{}, false
	}
	return rec, true
}

func (p *PebbleStore) List() ([]RunRecord, error) {
	it, err := p.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("archive iter: %w", err)
	}
	defer it.Close()
	var out []RunRecord
	for it.First(); it.Valid(); it.Next() {
		v := append([]byte(nil), it.Value()...)
		rec, err := decodeRecord(v)
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", string(it.Key()), err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (p *PebbleStore) Latest() (RunRecord, bool) {
	it, err := p.db.NewIter(nil)
	if err != nil {
		return RunRecord{}, false
	}
	defer it.Close()
	if !it.Last() {
		return RunRecord{}, false
	}
	rec, err := decodeRecord(it.Value())
	if err != nil {
		return RunRecord{}, false
	}
	return rec, true
}
