package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
)

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository returns a PostgreSQL-backed StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) repository.StatsRepository {
	return &statsRepository{pool: pool}
}

const statsColumns = `user_id, xp, level, challenges_completed, courses_completed,
	total_points, streak_days, last_active_at, created_at, updated_at`

func (r *statsRepository) Create(ctx context.Context, stats *entity.UserStats) (*entity.UserStats, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_stats (user_id, xp, level, challenges_completed, courses_completed,
			total_points, streak_days, last_active_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+statsColumns,
		stats.UserID, stats.XP, stats.Level, stats.ChallengesCompleted, stats.CoursesCompleted,
		stats.TotalPoints, stats.StreakDays, stats.LastActiveAt, stats.CreatedAt, stats.UpdatedAt)
	created, err := scanStats(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrStatsAlreadyExist
		}
		return nil, storageErr("create user stats", err)
	}
	return created, nil
}

func (r *statsRepository) Get(ctx context.Context, userID int64) (*entity.UserStats, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+statsColumns+` FROM user_stats WHERE user_id = $1`, userID)
	stats, err := scanStats(row)
	if err != nil {
		if isNoRows(err) {
			return nil, entity.ErrStatsNotFound
		}
		return nil, storageErr("get user stats", err)
	}
	return stats, nil
}

// ApplyAward runs the idempotency witness and the counter increments in one
// transaction. The witness is the activity entry keyed by the award's dedup
// key: if the insert hits the unique index the award was already applied, so
// the transaction rolls back without touching the aggregate. The increments
// run storage-side (xp = xp + delta), never as read-modify-write.
func (r *statsRepository) ApplyAward(ctx context.Context, userID int64, award *entity.XPAward) (*entity.UserStats, bool, error) {
	detail, err := entity.EncodeActivityDetail(award.Detail)
	if err != nil {
		return nil, false, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, storageErr("begin award transaction", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO activity_log (id, user_id, type, description, xp_earned, points_earned, detail, dedup_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
		ON CONFLICT (dedup_key) DO NOTHING`,
		uuid.New(), userID, string(award.Type), award.Description,
		award.Amount, award.Points, detail, award.DedupKey, award.OccurredAt)
	if err != nil {
		return nil, false, storageErr("append award witness", err)
	}
	if tag.RowsAffected() == 0 {
		// Witnessed before. Roll back and report the unchanged aggregate.
		_ = tx.Rollback(ctx)
		stats, err := r.Get(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		return stats, false, nil
	}

	row := tx.QueryRow(ctx, `
		UPDATE user_stats
		SET xp = xp + $2,
		    total_points = total_points + $3,
		    challenges_completed = challenges_completed + $4,
		    courses_completed = courses_completed + $5,
		    streak_days = $6,
		    last_active_at = $7,
		    updated_at = $7
		WHERE user_id = $1
		RETURNING `+statsColumns,
		userID, award.Amount, award.Points, award.ChallengesDelta, award.CoursesDelta,
		award.StreakDays, award.OccurredAt)
	stats, err := scanStats(row)
	if err != nil {
		if isNoRows(err) {
			return nil, false, entity.ErrStatsNotFound
		}
		return nil, false, storageErr("apply award increments", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, storageErr("commit award transaction", err)
	}
	return stats, true, nil
}

func (r *statsRepository) TouchActivity(ctx context.Context, userID int64, streakDays int32, activeAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_stats
		SET streak_days = $2, last_active_at = $3, updated_at = $3
		WHERE user_id = $1`,
		userID, streakDays, activeAt)
	if err != nil {
		return storageErr("touch user activity", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrStatsNotFound
	}
	return nil
}

func (r *statsRepository) ListTop(ctx context.Context, limit int32) ([]*entity.UserStats, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+statsColumns+` FROM user_stats ORDER BY xp DESC, user_id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, storageErr("list top user stats", err)
	}
	defer rows.Close()

	var result []*entity.UserStats
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, storageErr("scan user stats", err)
		}
		result = append(result, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list top user stats", err)
	}
	return result, nil
}

func scanStats(row pgx.Row) (*entity.UserStats, error) {
	var stats entity.UserStats
	if err := row.Scan(
		&stats.UserID, &stats.XP, &stats.Level,
		&stats.ChallengesCompleted, &stats.CoursesCompleted,
		&stats.TotalPoints, &stats.StreakDays, &stats.LastActiveAt,
		&stats.CreatedAt, &stats.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}
