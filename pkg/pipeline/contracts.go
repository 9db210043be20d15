package pipeline

import (
	"context"

	"github.com/nmishr/recflow/pkg/record"
)

// ExistenceChecker reports whether a record with the given id is already
// persisted. Implementations may be remote; the pipeline invokes the check
// at most once per record per run.
type ExistenceChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// CheckerFunc is a function type that implements ExistenceChecker.
type CheckerFunc func(ctx context.Context, id int64) (bool, error)

// Exists implements the ExistenceChecker interface for CheckerFunc.
func (f CheckerFunc) Exists(ctx context.Context, id int64) (bool, error) {
	return f(ctx, id)
}

// Creator persists a record that does not yet exist. On success it returns
// the accepted form of the record, which may differ from the input if the
// collaborator normalizes it. A rejection is reported as a
// *supervise.CreateError; any other error is treated as unrecoverable.
// The pipeline never invokes Create twice for the same record within a run.
type Creator interface {
	Create(ctx context.Context, rec record.Record) (record.Record, error)
}

// CreatorFunc is a function type that implements Creator.
type CreatorFunc func(ctx context.Context, rec record.Record) (record.Record, error)

// Create implements the Creator interface for CreatorFunc.
func (f CreatorFunc) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	return f(ctx, rec)
}
