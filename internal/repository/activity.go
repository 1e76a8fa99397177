package repository

import (
	"context"

	"github.com/eslsoft/cyberpath/internal/entity"
)

// ListActivityQuery holds parameters for listing a user's activity feed.
type ListActivityQuery struct {
	Pagination
	FilterOrder

	UserID int64
}

// ActivityRepository is the append-only audit trail. Entries are immutable
// once written and are never deleted.
type ActivityRepository interface {
	// Append inserts one entry. Entries carrying a dedup key are subject
	// to the uniqueness witness: a duplicate key is a silent no-op and
	// inserted is false.
	Append(ctx context.Context, entry *entity.ActivityEntry) (inserted bool, err error)

	// HasWitness reports whether an entry carrying the dedup key exists.
	HasWitness(ctx context.Context, dedupKey string) (bool, error)

	// List returns entries ordered by creation time.
	List(ctx context.Context, query *ListActivityQuery) ([]*entity.ActivityEntry, int64, error)

	// SumXP totals XPEarned across all of a user's entries, for
	// reconciling the ledger against the aggregate.
	SumXP(ctx context.Context, userID int64) (int64, error)
}
