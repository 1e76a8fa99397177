package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
)

// RecordChallengeInput carries one challenge submission.
type RecordChallengeInput struct {
	EntityID       string
	CorrectAnswers int32
	TotalQuestions int32
	TimeSpent      time.Duration
	Difficulty     entity.Difficulty
}

// RecordCourseInput carries one course advancement update. Progress is a
// percentage; the maximum is always 100.
type RecordCourseInput struct {
	EntityID        string
	ProgressPercent int32
	TimeSpent       time.Duration
	Difficulty      entity.Difficulty
}

// ProgressResult is returned to UI consumers. CompletedJustNow is true for
// exactly one call per (user, entity) completion, across retries and tabs.
type ProgressResult struct {
	Record           *entity.ProgressRecord
	CompletedJustNow bool
	Award            *AwardResult
	NewAchievements  []*entity.Achievement
}

// ProgressUsecase orchestrates the progression engine: load or create the
// record, detect the completion transition, flip the flag with a conditional
// write, and run the reward path at most once.
type ProgressUsecase interface {
	RecordChallengeProgress(ctx context.Context, userID int64, in RecordChallengeInput) (*ProgressResult, error)
	RecordCourseProgress(ctx context.Context, userID int64, in RecordCourseInput) (*ProgressResult, error)
	GetProgress(ctx context.Context, userID int64, kind entity.EntityKind, entityID string) (*entity.ProgressRecord, error)
	ListProgress(ctx context.Context, userID int64, page repository.Pagination) ([]*entity.ProgressRecord, int64, error)
}

// NewProgressUsecase wires the engine's collaborators with default behaviour.
func NewProgressUsecase(
	progressRepo repository.ProgressRepository,
	activityRepo repository.ActivityRepository,
	awards AwardService,
	achievements AchievementService,
	xpTable entity.XPTable,
	logger *logrus.Logger,
) ProgressUsecase {
	return &progressUsecase{
		progress:     progressRepo,
		activity:     activityRepo,
		awards:       awards,
		achievements: achievements,
		xpTable:      xpTable,
		logger:       logger,
		clock:        time.Now,
	}
}

type progressUsecase struct {
	progress     repository.ProgressRepository
	activity     repository.ActivityRepository
	awards       AwardService
	achievements AchievementService
	xpTable      entity.XPTable
	logger       *logrus.Logger
	clock        func() time.Time
}

func (u *progressUsecase) RecordChallengeProgress(ctx context.Context, userID int64, in RecordChallengeInput) (*ProgressResult, error) {
	if in.TotalQuestions < 0 {
		return nil, entity.ErrInvalidMeasure
	}
	return u.record(ctx, userID, entity.KindChallenge, in.EntityID, in.CorrectAnswers, in.TotalQuestions, in.TimeSpent, in.Difficulty)
}

func (u *progressUsecase) RecordCourseProgress(ctx context.Context, userID int64, in RecordCourseInput) (*ProgressResult, error) {
	return u.record(ctx, userID, entity.KindCourse, in.EntityID, in.ProgressPercent, 100, in.TimeSpent, in.Difficulty)
}

func (u *progressUsecase) GetProgress(ctx context.Context, userID int64, kind entity.EntityKind, entityID string) (*entity.ProgressRecord, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	entityID = entity.NormalizeEntityID(entityID)
	if entityID == "" {
		return nil, entity.ErrInvalidEntityID
	}
	return u.progress.Get(ctx, userID, kind, entityID)
}

func (u *progressUsecase) ListProgress(ctx context.Context, userID int64, page repository.Pagination) ([]*entity.ProgressRecord, int64, error) {
	if userID <= 0 {
		return nil, 0, entity.ErrInvalidUserID
	}
	return u.progress.ListByUser(ctx, userID, page)
}

// record is the per-entity state machine. One call moves a record through at
// most one transition; the reward path runs only on IN_PROGRESS → COMPLETED
// and is retry-safe: re-running after a partial failure finishes the unit
// without granting twice.
func (u *progressUsecase) record(
	ctx context.Context,
	userID int64,
	kind entity.EntityKind,
	entityID string,
	measure, total int32,
	timeSpent time.Duration,
	difficulty entity.Difficulty,
) (*ProgressResult, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	entityID = entity.NormalizeEntityID(entityID)
	if entityID == "" {
		return nil, entity.ErrInvalidEntityID
	}
	if measure < 0 || (total > 0 && measure > total) {
		return nil, entity.ErrInvalidMeasure
	}

	record, err := u.progress.GetOrCreate(ctx, userID, kind, entityID, total)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	prev := *record
	next := *record
	if !next.Completed {
		next.SetMeasure(measure)
		if kind == entity.KindChallenge && total > 0 {
			next.TotalUnits = total
		}
	}
	next.TimeSpent += timeSpent
	next.Normalize(now)

	if WasJustCompleted(&prev, &next) {
		won, err := u.progress.MarkCompleted(ctx, &next, now)
		if err != nil {
			return nil, err
		}
		if won {
			next.Completed = true
			next.CompletedAt = &now
		} else {
			// Another tab or device flipped the flag first. Adopt
			// its completion state; the witness check below keeps
			// us from rewarding a second time.
			u.logger.WithFields(logrus.Fields{
				"user_id":   userID,
				"entity_id": entityID,
			}).Debug("lost completion race")
			refreshed, err := u.progress.Get(ctx, userID, kind, entityID)
			if err != nil {
				return nil, err
			}
			next = *refreshed
		}
	} else {
		saved, err := u.progress.Save(ctx, &next)
		if err != nil {
			return nil, err
		}
		next = *saved

		// Partial progress still counts toward the daily streak.
		if err := u.awards.Touch(ctx, userID); err != nil {
			u.logger.WithError(err).WithField("user_id", userID).Warn("streak touch failed")
		}
	}

	result := &ProgressResult{Record: &next}
	if !next.Completed || !next.AtMax() {
		return result, nil
	}

	// Reward path. The witness read is the fast path for repeats; the
	// award's transactional dedup underneath is the actual at-most-once
	// guarantee, so a stale read here cannot double-grant.
	witnessed, err := u.activity.HasWitness(ctx, next.CompletionKey())
	if err != nil {
		return nil, err
	}
	if witnessed {
		return result, nil
	}

	award := u.completionAward(&next, difficulty)
	awarded, err := u.awards.Award(ctx, userID, award)
	if err != nil {
		return nil, err
	}
	result.Award = awarded
	result.CompletedJustNow = awarded.Applied

	if awarded.Applied {
		earned, err := u.achievements.Evaluate(ctx, awarded.Stats)
		if err != nil {
			// Badges are derived state; the completion and its XP
			// are already durable.
			u.logger.WithError(err).WithField("user_id", userID).Warn("achievement evaluation failed")
		} else {
			result.NewAchievements = earned
		}
	}
	return result, nil
}

func (u *progressUsecase) completionAward(record *entity.ProgressRecord, difficulty entity.Difficulty) *entity.XPAward {
	amount := u.xpTable.Amount(difficulty)
	award := &entity.XPAward{
		Amount:   amount,
		Points:   amount,
		DedupKey: record.CompletionKey(),
		Detail: entity.CompletionDetail{
			Kind:       record.Kind,
			EntityID:   record.EntityID,
			Difficulty: difficulty,
		},
	}
	switch record.Kind {
	case entity.KindCourse:
		award.Type = entity.ActivityPathCompletion
		award.CoursesDelta = 1
		award.Description = fmt.Sprintf("Completed learning path %q", record.EntityID)
	default:
		award.Type = entity.ActivityChallengeCompletion
		award.ChallengesDelta = 1
		award.Description = fmt.Sprintf("Completed challenge %q", record.EntityID)
	}
	return award
}
