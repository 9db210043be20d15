// Package store provides collaborator implementations of the pipeline's
// existence-check and create contracts: an in-process memory store for
// tests, examples, and dry runs, and a Redis-backed store for real
// deployments.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/nmishr/recflow/pkg/record"
	"github.com/nmishr/recflow/pkg/supervise"
)

// Memory is an in-process record store. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[int64]record.Record
}

// NewMemory creates a memory store, optionally seeded with records.
func NewMemory(seed ...record.Record) *Memory {
	m := &Memory{records: make(map[int64]record.Record, len(seed))}
	for _, rec := range seed {
		m.records[rec.ID] = rec
	}
	return m
}

// Exists implements the pipeline.ExistenceChecker contract.
func (m *Memory) Exists(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[id]
	return ok, nil
}

// Create implements the pipeline.Creator contract. A duplicate id is a
// creation rejection, not a fatal failure.
func (m *Memory) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.ID]; ok {
		return record.Record{}, supervise.NewCreateError(rec, errAlreadyExists)
	}
	m.records[rec.ID] = rec
	return rec, nil
}

// Get returns the stored record for id, if present.
func (m *Memory) Get(id int64) (record.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	return rec, ok
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Records returns all stored records ordered by id.
func (m *Memory) Records() []record.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]record.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
