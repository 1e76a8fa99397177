package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
)

// AwardResult reports the outcome of one XP award attempt.
type AwardResult struct {
	PreviousXP int64
	NewXP      int64
	XPGained   int64

	// Applied is false when the award's idempotency witness already
	// existed: the reward was granted by an earlier attempt or a
	// concurrent writer, and nothing was mutated this time.
	Applied bool

	Stats *entity.UserStats
}

// AwardService performs the rewarded mutation: increment the user's XP and
// counters and append the matching activity entry, at most once per dedup
// key. Callers gate completion awards behind WasJustCompleted; the witness
// underneath keeps retries and racing observers from double-rewarding.
type AwardService interface {
	Award(ctx context.Context, userID int64, award *entity.XPAward) (*AwardResult, error)

	// Touch records activity for streak upkeep without granting XP.
	Touch(ctx context.Context, userID int64) error
}

// NewAwardService wires the repositories with default behaviour.
func NewAwardService(statsRepo repository.StatsRepository, leaderboard repository.LeaderboardRepository, logger *logrus.Logger) AwardService {
	return &awardService{
		stats:       statsRepo,
		leaderboard: leaderboard,
		logger:      logger,
		clock:       time.Now,
	}
}

type awardService struct {
	stats       repository.StatsRepository
	leaderboard repository.LeaderboardRepository
	logger      *logrus.Logger
	clock       func() time.Time
}

func (s *awardService) Award(ctx context.Context, userID int64, award *entity.XPAward) (*AwardResult, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	if award == nil {
		return nil, entity.ErrInvalidAward
	}
	if err := award.Validate(); err != nil {
		return nil, err
	}

	// The stats document must exist; awarding XP to an unknown user is a
	// programmer error, not a retryable condition.
	current, err := s.stats.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	award.OccurredAt = now
	award.StreakDays = entity.NextStreak(current.StreakDays, current.LastActiveAt, now)
	annotateDetail(award, current.XP)

	stats, applied, err := s.stats.ApplyAward(ctx, userID, award)
	if err != nil {
		return nil, err
	}
	if !applied {
		return &AwardResult{
			PreviousXP: stats.XP,
			NewXP:      stats.XP,
			XPGained:   0,
			Applied:    false,
			Stats:      stats,
		}, nil
	}

	// Ranking upkeep is best-effort derived state; a reward never fails
	// on it.
	if err := s.leaderboard.SetScore(ctx, userID, stats.XP); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("leaderboard score update failed")
	}

	return &AwardResult{
		PreviousXP: stats.XP - award.Amount,
		NewXP:      stats.XP,
		XPGained:   award.Amount,
		Applied:    true,
		Stats:      stats,
	}, nil
}

func (s *awardService) Touch(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return entity.ErrInvalidUserID
	}
	current, err := s.stats.Get(ctx, userID)
	if err != nil {
		return err
	}
	now := s.clock()
	streak := entity.NextStreak(current.StreakDays, current.LastActiveAt, now)
	return s.stats.TouchActivity(ctx, userID, streak, now)
}

// annotateDetail stamps the before/after XP onto detail variants that carry
// them. The values reflect this writer's view at award time.
func annotateDetail(award *entity.XPAward, previousXP int64) {
	switch d := award.Detail.(type) {
	case entity.CompletionDetail:
		d.PreviousXP = previousXP
		d.NewXP = previousXP + award.Amount
		award.Detail = d
	case entity.XPGrantDetail:
		d.PreviousXP = previousXP
		d.NewXP = previousXP + award.Amount
		award.Detail = d
	}
}
