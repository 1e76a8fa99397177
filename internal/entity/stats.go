package entity

import "time"

// UserStats is the per-user aggregate of the gamification layer. XP only
// moves through recorded awards; Level is derived from XP by LevelForXP and
// Rank is computed externally from the ordering of all users' XP.
type UserStats struct {
	UserID              int64
	XP                  int64
	Level               int32
	Rank                int32
	ChallengesCompleted int32
	CoursesCompleted    int32
	TotalPoints         int64
	StreakDays          int32
	LastActiveAt        time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewUserStats returns the zero-progress aggregate created at sign-up.
func NewUserStats(userID int64, now time.Time) *UserStats {
	return &UserStats{
		UserID:     userID,
		Level:      1,
		StreakDays: 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// XPAward describes one reward mutation applied to a user's aggregate. The
// DedupKey is the idempotency witness: applying the same award twice is a
// no-op on the second attempt.
type XPAward struct {
	Amount          int64
	Points          int64
	ChallengesDelta int32
	CoursesDelta    int32
	Type            ActivityType
	Description     string
	Detail          ActivityDetail
	DedupKey        string
	StreakDays      int32
	OccurredAt      time.Time
}

// Validate rejects malformed awards before they reach storage.
func (a *XPAward) Validate() error {
	if a.Amount < 0 || a.Points < 0 {
		return ErrInvalidAward
	}
	if a.Type == "" || a.DedupKey == "" {
		return ErrInvalidAward
	}
	return nil
}

// NextStreak returns the streak length after activity at now, given the
// previous activity time. Consecutive UTC days extend the streak, repeat
// activity on the same day keeps it, anything else restarts at one.
func NextStreak(current int32, lastActive, now time.Time) int32 {
	if lastActive.IsZero() {
		return 1
	}
	last := lastActive.UTC().Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)
	switch today.Sub(last) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}
