package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
)

// LeaderboardRow is one line of the user-facing ranking.
type LeaderboardRow struct {
	Rank   int32
	UserID int64
	XP     int64
	Level  int32
}

// LedgerReport reconciles a user's activity ledger against the aggregate.
type LedgerReport struct {
	UserID   int64
	StatsXP  int64
	LedgerXP int64
	Balanced bool
}

// StatsUsecase exposes the per-user aggregate and the read models derived
// from it. It never mutates XP itself; that is the award path's job.
type StatsUsecase interface {
	// CreateAccount bootstraps the aggregate at sign-up. The identity
	// provider calls this exactly once per new user; stats must exist
	// before any award for that user.
	CreateAccount(ctx context.Context, userID int64) (*entity.UserStats, error)
	GetStats(ctx context.Context, userID int64) (*entity.UserStats, error)
	Leaderboard(ctx context.Context, limit int32) ([]LeaderboardRow, error)
	ActivityFeed(ctx context.Context, query *repository.ListActivityQuery) ([]*entity.ActivityEntry, int64, error)
	CheckLedger(ctx context.Context, userID int64) (*LedgerReport, error)
}

// NewStatsUsecase wires the repositories with default behaviour.
func NewStatsUsecase(
	statsRepo repository.StatsRepository,
	activityRepo repository.ActivityRepository,
	leaderboard repository.LeaderboardRepository,
	curve entity.LevelCurve,
	logger *logrus.Logger,
) StatsUsecase {
	if len(curve) == 0 {
		curve = entity.DefaultLevelCurve
	}
	return &statsUsecase{
		stats:       statsRepo,
		activity:    activityRepo,
		leaderboard: leaderboard,
		curve:       curve,
		logger:      logger,
		clock:       time.Now,
	}
}

type statsUsecase struct {
	stats       repository.StatsRepository
	activity    repository.ActivityRepository
	leaderboard repository.LeaderboardRepository
	curve       entity.LevelCurve
	logger      *logrus.Logger
	clock       func() time.Time
}

func (u *statsUsecase) CreateAccount(ctx context.Context, userID int64) (*entity.UserStats, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	now := u.clock()
	stats, err := u.stats.Create(ctx, entity.NewUserStats(userID, now))
	if err != nil {
		return nil, err
	}

	entry := &entity.ActivityEntry{
		UserID:      userID,
		Type:        entity.ActivityAccountCreated,
		Description: "Account created",
		Detail:      entity.AccountCreatedDetail{},
		DedupKey:    fmt.Sprintf("account:%d", userID),
		CreatedAt:   now,
	}
	if _, err := u.activity.Append(ctx, entry); err != nil {
		return nil, err
	}

	if err := u.leaderboard.SetScore(ctx, userID, 0); err != nil {
		u.logger.WithError(err).WithField("user_id", userID).Warn("leaderboard seed failed")
	}
	stats.Level = entity.LevelForXP(stats.XP, u.curve)
	return stats, nil
}

func (u *statsUsecase) GetStats(ctx context.Context, userID int64) (*entity.UserStats, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	stats, err := u.stats.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.Level = entity.LevelForXP(stats.XP, u.curve)

	// Rank is derived read-only input; serve stats without it when the
	// ranking backend is unavailable.
	rank, err := u.leaderboard.Rank(ctx, userID)
	if err != nil {
		u.logger.WithError(err).WithField("user_id", userID).Warn("rank lookup failed")
	} else {
		stats.Rank = rank
	}
	return stats, nil
}

func (u *statsUsecase) Leaderboard(ctx context.Context, limit int32) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 10
	}
	entries, err := u.leaderboard.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	return lo.Map(entries, func(e repository.LeaderboardEntry, _ int) LeaderboardRow {
		return LeaderboardRow{
			Rank:   e.Rank,
			UserID: e.UserID,
			XP:     e.XP,
			Level:  entity.LevelForXP(e.XP, u.curve),
		}
	}), nil
}

func (u *statsUsecase) ActivityFeed(ctx context.Context, query *repository.ListActivityQuery) ([]*entity.ActivityEntry, int64, error) {
	if query == nil || query.UserID <= 0 {
		return nil, 0, entity.ErrInvalidUserID
	}
	return u.activity.List(ctx, query)
}

func (u *statsUsecase) CheckLedger(ctx context.Context, userID int64) (*LedgerReport, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	stats, err := u.stats.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	ledgerXP, err := u.activity.SumXP(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &LedgerReport{
		UserID:   userID,
		StatsXP:  stats.XP,
		LedgerXP: ledgerXP,
		Balanced: stats.XP == ledgerXP,
	}, nil
}
