package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/nmishr/recflow/pkg/record"
)

// StubChecker is a configurable ExistenceChecker for tests. The zero value
// reports every id as nonexistent with no delay.
type StubChecker struct {
	// ExistsFn overrides the existence answer. Nil means "does not exist".
	ExistsFn func(id int64) (bool, error)

	// Delay returns a simulated completion latency per id. Nil means none.
	Delay func(id int64) time.Duration

	mu    sync.Mutex
	calls []int64
}

// Exists implements the pipeline.ExistenceChecker contract.
func (s *StubChecker) Exists(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	s.calls = append(s.calls, id)
	s.mu.Unlock()

	if s.Delay != nil {
		if d := s.Delay(id); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s.ExistsFn != nil {
		return s.ExistsFn(id)
	}
	return false, nil
}

// Calls returns the ids checked so far, in call order.
func (s *StubChecker) Calls() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.calls))
	copy(out, s.calls)
	return out
}

// StubCreator is a configurable Creator for tests. The zero value accepts
// every record unchanged with no delay.
type StubCreator struct {
	// CreateFn overrides creation. Nil accepts the record unchanged.
	CreateFn func(rec record.Record) (record.Record, error)

	// Delay returns a simulated completion latency per id. Nil means none.
	Delay func(id int64) time.Duration

	mu    sync.Mutex
	calls map[int64]int
}

// Create implements the pipeline.Creator contract.
func (s *StubCreator) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[int64]int)
	}
	s.calls[rec.ID]++
	s.mu.Unlock()

	if s.Delay != nil {
		if d := s.Delay(rec.ID); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return record.Record{}, ctx.Err()
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	if s.CreateFn != nil {
		return s.CreateFn(rec)
	}
	return rec, nil
}

// CallCount returns how many times Create was invoked for id.
func (s *StubCreator) CallCount(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

// TotalCalls returns how many times Create was invoked in all.
func (s *StubCreator) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}
