// Package scans keeps the ordered history of scan records.
package scans

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/lingua-health/lingua/internal/model"
	"github.com/lingua-health/lingua/internal/store"
)

// ErrDuplicateID is returned by Insert when the record id is empty or already taken.
var ErrDuplicateID = errors.New("scan id already exists")

// Repository is the in-memory, newest-first list of scan records. Every
// mutation is written through to the durable store before it returns.
// Repository is not safe for concurrent use; the session serializes access.
type Repository struct {
	kv      store.KV
	logger  *log.Logger
	records []model.ScanRecord
}

// Load reads the record list from kv. Missing or malformed data yields an
// empty repository.
func Load(ctx context.Context, kv store.KV, logger *log.Logger) *Repository {
	r := &Repository{kv: kv, logger: logger}
	r.records, _ = r.read(ctx)
	return r
}

// Reload replaces the in-memory list with the durable copy. When the durable
// copy is missing or unreadable the in-memory list is kept.
func (r *Repository) Reload(ctx context.Context) {
	records, ok := r.read(ctx)
	if !ok {
		return
	}
	r.records = records
}

func (r *Repository) read(ctx context.Context) ([]model.ScanRecord, bool) {
	var stored []model.ScanRecord
	if !store.LoadJSON(ctx, r.kv, store.KeyScans, &stored, r.logger) {
		return nil, false
	}
	seen := make(map[string]struct{}, len(stored))
	records := make([]model.ScanRecord, 0, len(stored))
	for _, rec := range stored {
		if rec.ID == "" {
			continue
		}
		if _, ok := seen[rec.ID]; ok {
			if r.logger != nil {
				r.logger.Printf("dropping duplicate stored scan %s", rec.ID)
			}
			continue
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, true
}

// Insert prepends rec and persists the full list. On a write failure the
// in-memory list is left as it was.
func (r *Repository) Insert(ctx context.Context, rec model.ScanRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: empty id", ErrDuplicateID)
	}
	if r.indexOf(rec.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	next := make([]model.ScanRecord, 0, len(r.records)+1)
	next = append(next, rec)
	next = append(next, r.records...)
	if err := store.SaveJSON(ctx, r.kv, store.KeyScans, next); err != nil {
		return err
	}
	r.records = next
	return nil
}

// FindByID returns the record with id.
func (r *Repository) FindByID(id string) (model.ScanRecord, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return model.ScanRecord{}, false
	}
	return r.records[i], true
}

// PreviousOf returns the record just older than id.
func (r *Repository) PreviousOf(id string) (model.ScanRecord, bool) {
	i := r.indexOf(id)
	if i < 0 || i+1 >= len(r.records) {
		return model.ScanRecord{}, false
	}
	return r.records[i+1], true
}

// Latest returns the newest record.
func (r *Repository) Latest() (model.ScanRecord, bool) {
	if len(r.records) == 0 {
		return model.ScanRecord{}, false
	}
	return r.records[0], true
}

// All returns a copy of the records, newest first.
func (r *Repository) All() []model.ScanRecord {
	out := make([]model.ScanRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records.
func (r *Repository) Len() int {
	return len(r.records)
}

// Timestamps returns the creation times, newest first.
func (r *Repository) Timestamps() []time.Time {
	out := make([]time.Time, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Timestamp
	}
	return out
}

func (r *Repository) indexOf(id string) int {
	for i, rec := range r.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
