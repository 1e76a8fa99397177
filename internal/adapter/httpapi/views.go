package httpapi

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/usecase"
)

// JSON views of the domain types. Durations go over the wire in seconds.

type progressView struct {
	EntityID        string     `json:"entity_id"`
	Kind            string     `json:"kind"`
	CorrectAnswers  int32      `json:"correct_answers,omitempty"`
	ProgressPercent int32      `json:"progress_percent,omitempty"`
	TotalUnits      int32      `json:"total_units"`
	Completed       bool       `json:"completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	TimeSpentSecs   int64      `json:"time_spent_secs"`
	LastUpdated     time.Time  `json:"last_updated"`
}

func toProgressView(record *entity.ProgressRecord) progressView {
	return progressView{
		EntityID:        record.EntityID,
		Kind:            string(record.Kind),
		CorrectAnswers:  record.CorrectAnswers,
		ProgressPercent: record.ProgressPercent,
		TotalUnits:      record.TotalUnits,
		Completed:       record.Completed,
		CompletedAt:     record.CompletedAt,
		TimeSpentSecs:   int64(record.TimeSpent / time.Second),
		LastUpdated:     record.LastUpdated,
	}
}

type statsView struct {
	UserID              int64     `json:"user_id"`
	XP                  int64     `json:"xp"`
	Level               int32     `json:"level"`
	XPForNextLevel      int64     `json:"xp_for_next_level"`
	Rank                int32     `json:"rank,omitempty"`
	ChallengesCompleted int32     `json:"challenges_completed"`
	CoursesCompleted    int32     `json:"courses_completed"`
	TotalPoints         int64     `json:"total_points"`
	StreakDays          int32     `json:"streak_days"`
	LastActiveAt        time.Time `json:"last_active_at"`
}

func toStatsView(stats *entity.UserStats, curve entity.LevelCurve) statsView {
	remaining, _ := entity.XPForNextLevel(stats.XP, curve)
	return statsView{
		UserID:              stats.UserID,
		XP:                  stats.XP,
		Level:               stats.Level,
		XPForNextLevel:      remaining,
		Rank:                stats.Rank,
		ChallengesCompleted: stats.ChallengesCompleted,
		CoursesCompleted:    stats.CoursesCompleted,
		TotalPoints:         stats.TotalPoints,
		StreakDays:          stats.StreakDays,
		LastActiveAt:        stats.LastActiveAt,
	}
}

type awardView struct {
	XPGained   int64 `json:"xp_gained"`
	PreviousXP int64 `json:"previous_xp"`
	NewXP      int64 `json:"new_xp"`
}

type achievementView struct {
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageRef    string    `json:"image_ref"`
	EarnedAt    time.Time `json:"earned_at"`
	ShareCount  int32     `json:"share_count"`
}

func toAchievementView(a *entity.Achievement) achievementView {
	return achievementView{
		Type:        string(a.Type),
		Name:        a.Name,
		Description: a.Description,
		ImageRef:    a.ImageRef,
		EarnedAt:    a.EarnedAt,
		ShareCount:  a.ShareCount,
	}
}

type progressResultView struct {
	Record           progressView      `json:"record"`
	CompletedJustNow bool              `json:"completed_just_now"`
	Award            *awardView        `json:"award,omitempty"`
	NewAchievements  []achievementView `json:"new_achievements,omitempty"`
}

func toProgressResultView(result *usecase.ProgressResult) progressResultView {
	view := progressResultView{
		Record:           toProgressView(result.Record),
		CompletedJustNow: result.CompletedJustNow,
		NewAchievements: lo.Map(result.NewAchievements, func(a *entity.Achievement, _ int) achievementView {
			return toAchievementView(a)
		}),
	}
	if result.Award != nil && result.Award.Applied {
		view.Award = &awardView{
			XPGained:   result.Award.XPGained,
			PreviousXP: result.Award.PreviousXP,
			NewXP:      result.Award.NewXP,
		}
	}
	return view
}

type activityView struct {
	ID           string                `json:"id"`
	Type         string                `json:"type"`
	Description  string                `json:"description"`
	XPEarned     int64                 `json:"xp_earned"`
	PointsEarned int64                 `json:"points_earned"`
	Detail       entity.ActivityDetail `json:"detail,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

func toActivityView(entry *entity.ActivityEntry) activityView {
	return activityView{
		ID:           entry.ID.String(),
		Type:         string(entry.Type),
		Description:  entry.Description,
		XPEarned:     entry.XPEarned,
		PointsEarned: entry.PointsEarned,
		Detail:       entry.Detail,
		CreatedAt:    entry.CreatedAt,
	}
}

type pagedView[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
