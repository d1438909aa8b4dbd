// Package history stores pipeline run records.
//
// MemoryStore keeps records for the lifetime of the process and is used
// when no database is configured. PostgresStore persists them in a
// clean_runs table with the report serialized as JSONB.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/csvclean/internal/core"
)

// DefaultListLimit is used when ListRuns is called with a non-positive limit.
const DefaultListLimit = 50

// MemoryStore is an in-process core.RunStore.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]core.RunRecord
	order []string
	max   int
}

// NewMemoryStore creates a store holding at most max records.
// A non-positive max keeps every record.
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{byID: make(map[string]core.RunRecord), max: max}
}

// SaveRun stores rec, replacing any record with the same ID.
func (m *MemoryStore) SaveRun(ctx context.Context, rec core.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	m.byID[rec.ID] = rec

	if m.max > 0 && len(m.order) > m.max {
		drop := len(m.order) - m.max
		for _, id := range m.order[:drop] {
			delete(m.byID, id)
		}
		m.order = append([]string(nil), m.order[drop:]...)
	}
	return nil
}

// ListRuns returns up to limit records, newest first.
func (m *MemoryStore) ListRuns(ctx context.Context, limit int) ([]core.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.RunRecord, 0, min(limit, len(m.order)))
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.byID[m.order[i]])
	}
	return out, nil
}

// GetRun returns the record for id or core.ErrRunNotFound.
func (m *MemoryStore) GetRun(ctx context.Context, id string) (core.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return core.RunRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byID[id]
	if !ok {
		return core.RunRecord{}, core.ErrRunNotFound
	}
	return rec, nil
}

// PruneRuns deletes records created before cutoff and returns how many went.
func (m *MemoryStore) PruneRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.order[:0]
	var removed int64
	for _, id := range m.order {
		if m.byID[id].CreatedAt.Before(cutoff) {
			delete(m.byID, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return removed, nil
}
