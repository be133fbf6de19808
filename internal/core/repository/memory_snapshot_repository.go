package repository

import (
	"sync"
)

type inMemorySnapshotRepository struct {
	records []SnapshotRecord
	limit   int
	mutex   sync.RWMutex
}

// NewInMemorySnapshotRepository keeps the newest limit records.
func NewInMemorySnapshotRepository(limit int) SnapshotRepository {
	if limit <= 0 {
		limit = 100
	}
	return &inMemorySnapshotRepository{limit: limit}
}

func (r *inMemorySnapshotRepository) Insert(rec SnapshotRecord) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.records = append(r.records, rec)
	if over := len(r.records) - r.limit; over > 0 {
		r.records = append(r.records[:0:0], r.records[over:]...)
	}
	return nil
}

func (r *inMemorySnapshotRepository) FindRecent(limit int) ([]SnapshotRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if limit <= 0 || limit > len(r.records) {
		limit = len(r.records)
	}
	out := make([]SnapshotRecord, 0, limit)
	for i := len(r.records) - 1; i >= len(r.records)-limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}
