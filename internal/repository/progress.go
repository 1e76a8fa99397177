package repository

import (
	"context"
	"time"

	"github.com/eslsoft/cyberpath/internal/entity"
)

// ProgressRepository persists one record per (user, entity) pair.
type ProgressRepository interface {
	// GetOrCreate returns the existing record for the composite key or
	// atomically creates one with zero-progress defaults. Concurrent
	// creators converge on the same record; the storage identity is the
	// unique (user, kind, entity) triple.
	GetOrCreate(ctx context.Context, userID int64, kind entity.EntityKind, entityID string, totalUnits int32) (*entity.ProgressRecord, error)

	// Save persists advancement bookkeeping (measure, time spent,
	// last-updated). It never touches the completion flag.
	Save(ctx context.Context, record *entity.ProgressRecord) (*entity.ProgressRecord, error)

	// MarkCompleted performs the conditional completion transition: it
	// sets completed and completed_at only if the record is not completed
	// yet, and reports whether this caller won the transition. A false
	// return with a nil error is a lost race, not a failure.
	MarkCompleted(ctx context.Context, record *entity.ProgressRecord, completedAt time.Time) (bool, error)

	// Get returns the current record state.
	Get(ctx context.Context, userID int64, kind entity.EntityKind, entityID string) (*entity.ProgressRecord, error)

	// ListByUser returns all of a user's records, most recently updated
	// first.
	ListByUser(ctx context.Context, userID int64, page Pagination) ([]*entity.ProgressRecord, int64, error)
}
