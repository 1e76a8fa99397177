package repository

import "context"

// LeaderboardEntry is one row of the global XP ranking.
type LeaderboardEntry struct {
	Rank   int32
	UserID int64
	XP     int64
}

// LeaderboardRepository is the read model for the global ranking. The core
// treats ranks as read-only derived input; score upkeep is best-effort and
// must never fail a reward.
type LeaderboardRepository interface {
	SetScore(ctx context.Context, userID, xp int64) error
	Rank(ctx context.Context, userID int64) (int32, error)
	Top(ctx context.Context, limit int32) ([]LeaderboardEntry, error)
}
