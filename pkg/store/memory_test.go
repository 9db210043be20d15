package store

import (
	"context"
	"errors"
	"testing"

	"github.com/nmishr/recflow/internal/testutil"
	"github.com/nmishr/recflow/pkg/record"
	"github.com/nmishr/recflow/pkg/supervise"
)

func TestMemoryExists(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	m := NewMemory(record.Record{ID: 2, Name: "b", Content: "data-b"})

	ok, err := m.Exists(ctx, 2)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, true)

	ok, err = m.Exists(ctx, 1)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, false)
}

func TestMemoryCreate(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	m := NewMemory()
	rec := record.Record{ID: 1, Name: "a", Content: "data-a"}

	created, err := m.Create(ctx, rec)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, created, rec)
	testutil.AssertEqual(t, m.Len(), 1)

	got, ok := m.Get(1)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, got, rec)
}

func TestMemoryCreateDuplicateIsRejection(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	rec := record.Record{ID: 1, Name: "a", Content: "data-a"}
	m := NewMemory(rec)

	_, err := m.Create(ctx, rec)
	testutil.AssertError(t, err)

	var ce *supervise.CreateError
	if !errors.As(err, &ce) {
		t.Fatalf("duplicate create should be a *supervise.CreateError, got %T", err)
	}
	testutil.AssertEqual(t, supervise.Classify(err), supervise.Resume)
}

func TestMemoryRecordsOrderedByID(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	m := NewMemory()
	for _, id := range []int64{5, 1, 3} {
		_, err := m.Create(ctx, record.Record{ID: id, Name: "n"})
		testutil.AssertNoError(t, err)
	}

	recs := m.Records()
	testutil.AssertEqual(t, len(recs), 3)
	testutil.AssertEqual(t, recs[0].ID, int64(1))
	testutil.AssertEqual(t, recs[1].ID, int64(3))
	testutil.AssertEqual(t, recs[2].ID, int64(5))
}

func TestMemoryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	if _, err := m.Exists(ctx, 1); err == nil {
		t.Fatal("canceled context should fail the existence check")
	}
	if _, err := m.Create(ctx, record.Record{ID: 1}); err == nil {
		t.Fatal("canceled context should fail creation")
	}
}
