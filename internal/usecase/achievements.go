package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
)

// milestoneRule maps an aggregate counter reading to the badge it unlocks.
type milestoneRule struct {
	typ       entity.AchievementType
	qualifies func(stats *entity.UserStats) bool
}

var milestoneRules = []milestoneRule{
	{entity.AchievementFirstChallenge, func(s *entity.UserStats) bool { return s.ChallengesCompleted >= 1 }},
	{entity.AchievementChallenges5, func(s *entity.UserStats) bool { return s.ChallengesCompleted >= 5 }},
	{entity.AchievementChallenges10, func(s *entity.UserStats) bool { return s.ChallengesCompleted >= 10 }},
	{entity.AchievementChallenges25, func(s *entity.UserStats) bool { return s.ChallengesCompleted >= 25 }},
	{entity.AchievementFirstPath, func(s *entity.UserStats) bool { return s.CoursesCompleted >= 1 }},
	{entity.AchievementStreak5, func(s *entity.UserStats) bool { return s.StreakDays >= 5 }},
	{entity.AchievementStreak10, func(s *entity.UserStats) bool { return s.StreakDays >= 10 }},
	{entity.AchievementStreak30, func(s *entity.UserStats) bool { return s.StreakDays >= 30 }},
}

// AchievementService evaluates badge milestones after awards and manages the
// earned set.
type AchievementService interface {
	// Evaluate earns every badge whose rule the aggregate now satisfies
	// and returns the ones earned by this call.
	Evaluate(ctx context.Context, stats *entity.UserStats) ([]*entity.Achievement, error)
	ListByUser(ctx context.Context, userID int64) ([]*entity.Achievement, error)
	Share(ctx context.Context, userID int64, typ entity.AchievementType) (*entity.Achievement, error)
}

// NewAchievementService wires the repositories with default behaviour.
func NewAchievementService(achievementRepo repository.AchievementRepository, activityRepo repository.ActivityRepository) AchievementService {
	return &achievementService{
		achievements: achievementRepo,
		activity:     activityRepo,
		clock:        time.Now,
	}
}

type achievementService struct {
	achievements repository.AchievementRepository
	activity     repository.ActivityRepository
	clock        func() time.Time
}

func (s *achievementService) Evaluate(ctx context.Context, stats *entity.UserStats) ([]*entity.Achievement, error) {
	if stats == nil || stats.UserID <= 0 {
		return nil, entity.ErrInvalidUserID
	}

	var earned []*entity.Achievement
	now := s.clock()
	for _, rule := range milestoneRules {
		if !rule.qualifies(stats) {
			continue
		}
		result, created, err := s.achievements.GetOrCreate(ctx, entity.NewAchievement(stats.UserID, rule.typ, now))
		if err != nil {
			return earned, err
		}
		if !created {
			continue
		}
		earned = append(earned, result)
		if err := s.recordEarned(ctx, result, now); err != nil {
			return earned, err
		}
	}
	return earned, nil
}

func (s *achievementService) ListByUser(ctx context.Context, userID int64) ([]*entity.Achievement, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	return s.achievements.ListByUser(ctx, userID)
}

func (s *achievementService) Share(ctx context.Context, userID int64, typ entity.AchievementType) (*entity.Achievement, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	return s.achievements.IncrementShare(ctx, userID, typ)
}

func (s *achievementService) recordEarned(ctx context.Context, achievement *entity.Achievement, now time.Time) error {
	spec, _ := achievement.Type.Spec()
	entry := &entity.ActivityEntry{
		ID:          uuid.New(),
		UserID:      achievement.UserID,
		Type:        entity.ActivityAchievementEarned,
		Description: fmt.Sprintf("Earned achievement %q", achievement.Name),
		Detail: entity.AchievementDetail{
			Achievement: achievement.Type,
			Milestone:   spec.Milestone,
		},
		DedupKey:  fmt.Sprintf("achievement:%d:%s", achievement.UserID, achievement.Type),
		CreatedAt: now,
	}
	_, err := s.activity.Append(ctx, entry)
	return err
}
