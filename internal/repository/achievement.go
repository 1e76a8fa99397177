package repository

import (
	"context"

	"github.com/eslsoft/cyberpath/internal/entity"
)

// AchievementRepository persists earned badges.
type AchievementRepository interface {
	// GetOrCreate earns the badge on first call; on later calls it
	// returns the existing row and created is false.
	GetOrCreate(ctx context.Context, achievement *entity.Achievement) (result *entity.Achievement, created bool, err error)

	// ListByUser returns a user's badges, most recently earned first.
	ListByUser(ctx context.Context, userID int64) ([]*entity.Achievement, error)

	// IncrementShare bumps the share counter. The counter only moves up.
	IncrementShare(ctx context.Context, userID int64, typ entity.AchievementType) (*entity.Achievement, error)
}
