package repository

import (
	"context"
	"time"

	"github.com/eslsoft/cyberpath/internal/entity"
)

// StatsRepository owns the per-user aggregate document. XP and the derived
// counters are only ever mutated through ApplyAward.
type StatsRepository interface {
	// Create writes the zero-progress aggregate at account creation.
	Create(ctx context.Context, stats *entity.UserStats) (*entity.UserStats, error)

	// Get returns the user's aggregate, or entity.ErrStatsNotFound.
	Get(ctx context.Context, userID int64) (*entity.UserStats, error)

	// ApplyAward applies one reward as a single atomic unit: it appends
	// the activity entry keyed by the award's dedup key and increments
	// xp and counters in the same transaction. When the dedup key already
	// has a witness entry the award was applied before; nothing is
	// mutated and applied is false. The increments happen storage-side,
	// never via read-modify-write, so concurrent awards cannot lose
	// updates.
	ApplyAward(ctx context.Context, userID int64, award *entity.XPAward) (stats *entity.UserStats, applied bool, err error)

	// TouchActivity records streak bookkeeping outside the reward path.
	TouchActivity(ctx context.Context, userID int64, streakDays int32, activeAt time.Time) error

	// ListTop returns aggregates ordered by XP descending, for rank
	// backfill jobs and the ledger check.
	ListTop(ctx context.Context, limit int32) ([]*entity.UserStats, error)
}
