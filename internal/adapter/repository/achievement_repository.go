package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
)

type achievementRepository struct {
	pool *pgxpool.Pool
}

// NewAchievementRepository returns a PostgreSQL-backed AchievementRepository.
func NewAchievementRepository(pool *pgxpool.Pool) repository.AchievementRepository {
	return &achievementRepository{pool: pool}
}

const achievementColumns = `id, user_id, type, name, description, image_ref, earned_at, share_count`

func (r *achievementRepository) GetOrCreate(ctx context.Context, achievement *entity.Achievement) (*entity.Achievement, bool, error) {
	// The unique (user_id, type) index makes each badge earnable once.
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO achievements (user_id, type, name, description, image_ref, earned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, type) DO NOTHING`,
		achievement.UserID, string(achievement.Type), achievement.Name,
		achievement.Description, achievement.ImageRef, achievement.EarnedAt)
	if err != nil {
		return nil, false, storageErr("create achievement", err)
	}
	created := tag.RowsAffected() == 1

	row := r.pool.QueryRow(ctx, `
		SELECT `+achievementColumns+`
		FROM achievements
		WHERE user_id = $1 AND type = $2`,
		achievement.UserID, string(achievement.Type))
	stored, err := scanAchievement(row)
	if err != nil {
		if isNoRows(err) {
			return nil, false, entity.ErrAchievementNotFound
		}
		return nil, false, storageErr("get achievement", err)
	}
	return stored, created, nil
}

func (r *achievementRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.Achievement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+achievementColumns+`
		FROM achievements
		WHERE user_id = $1
		ORDER BY earned_at DESC, id DESC`, userID)
	if err != nil {
		return nil, storageErr("list achievements", err)
	}
	defer rows.Close()

	var result []*entity.Achievement
	for rows.Next() {
		achievement, err := scanAchievement(rows)
		if err != nil {
			return nil, storageErr("scan achievement", err)
		}
		result = append(result, achievement)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list achievements", err)
	}
	return result, nil
}

func (r *achievementRepository) IncrementShare(ctx context.Context, userID int64, typ entity.AchievementType) (*entity.Achievement, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE achievements
		SET share_count = share_count + 1
		WHERE user_id = $1 AND type = $2
		RETURNING `+achievementColumns,
		userID, string(typ))
	achievement, err := scanAchievement(row)
	if err != nil {
		if isNoRows(err) {
			return nil, entity.ErrAchievementNotFound
		}
		return nil, storageErr("increment achievement share", err)
	}
	return achievement, nil
}

func scanAchievement(row pgx.Row) (*entity.Achievement, error) {
	var (
		achievement entity.Achievement
		typ         string
	)
	if err := row.Scan(
		&achievement.ID, &achievement.UserID, &typ,
		&achievement.Name, &achievement.Description, &achievement.ImageRef,
		&achievement.EarnedAt, &achievement.ShareCount,
	); err != nil {
		return nil, err
	}
	achievement.Type = entity.AchievementType(typ)
	return &achievement, nil
}
