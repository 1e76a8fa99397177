package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
)

type progressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository returns a PostgreSQL-backed ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) repository.ProgressRepository {
	return &progressRepository{pool: pool}
}

const progressColumns = `id, user_id, entity_kind, entity_id, correct_answers,
	progress_percent, total_units, completed, completed_at, time_spent_secs,
	created_at, last_updated`

func (r *progressRepository) GetOrCreate(ctx context.Context, userID int64, kind entity.EntityKind, entityID string, totalUnits int32) (*entity.ProgressRecord, error) {
	// The unique (user_id, entity_kind, entity_id) index makes concurrent
	// creators converge: everyone inserts-or-noops, then reads the one row.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO progress_records (user_id, entity_kind, entity_id, total_units, created_at, last_updated)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (user_id, entity_kind, entity_id) DO NOTHING`,
		userID, string(kind), entityID, totalUnits)
	if err != nil {
		return nil, storageErr("create progress record", err)
	}
	return r.Get(ctx, userID, kind, entityID)
}

func (r *progressRepository) Get(ctx context.Context, userID int64, kind entity.EntityKind, entityID string) (*entity.ProgressRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+progressColumns+`
		FROM progress_records
		WHERE user_id = $1 AND entity_kind = $2 AND entity_id = $3`,
		userID, string(kind), entityID)
	record, err := scanProgress(row)
	if err != nil {
		if isNoRows(err) {
			return nil, entity.ErrProgressNotFound
		}
		return nil, storageErr("get progress record", err)
	}
	return record, nil
}

func (r *progressRepository) Save(ctx context.Context, record *entity.ProgressRecord) (*entity.ProgressRecord, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE progress_records
		SET correct_answers = $4,
		    progress_percent = $5,
		    total_units = $6,
		    time_spent_secs = $7,
		    last_updated = $8
		WHERE user_id = $1 AND entity_kind = $2 AND entity_id = $3
		RETURNING `+progressColumns,
		record.UserID, string(record.Kind), record.EntityID,
		record.CorrectAnswers, record.ProgressPercent, record.TotalUnits,
		int64(record.TimeSpent/time.Second), record.LastUpdated)
	saved, err := scanProgress(row)
	if err != nil {
		if isNoRows(err) {
			return nil, entity.ErrProgressNotFound
		}
		return nil, storageErr("save progress record", err)
	}
	return saved, nil
}

func (r *progressRepository) MarkCompleted(ctx context.Context, record *entity.ProgressRecord, completedAt time.Time) (bool, error) {
	// Compare-and-set on the completed flag. Whoever flips it first wins;
	// everyone else gets zero rows affected and a nil error.
	tag, err := r.pool.Exec(ctx, `
		UPDATE progress_records
		SET completed = TRUE,
		    completed_at = $4,
		    correct_answers = $5,
		    progress_percent = $6,
		    total_units = $7,
		    time_spent_secs = $8,
		    last_updated = $4
		WHERE user_id = $1 AND entity_kind = $2 AND entity_id = $3 AND NOT completed`,
		record.UserID, string(record.Kind), record.EntityID, completedAt,
		record.CorrectAnswers, record.ProgressPercent, record.TotalUnits,
		int64(record.TimeSpent/time.Second))
	if err != nil {
		return false, storageErr("mark progress completed", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *progressRepository) ListByUser(ctx context.Context, userID int64, page repository.Pagination) ([]*entity.ProgressRecord, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM progress_records WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, storageErr("count progress records", err)
	}

	pageNo, pageSize := normalizePage(page.PageNo, page.PageSize)
	rows, err := r.pool.Query(ctx, `
		SELECT `+progressColumns+`
		FROM progress_records
		WHERE user_id = $1
		ORDER BY last_updated DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, pageSize, (pageNo-1)*pageSize)
	if err != nil {
		return nil, 0, storageErr("list progress records", err)
	}
	defer rows.Close()

	var records []*entity.ProgressRecord
	for rows.Next() {
		record, err := scanProgress(rows)
		if err != nil {
			return nil, 0, storageErr("scan progress record", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr("list progress records", err)
	}
	return records, total, nil
}

func scanProgress(row pgx.Row) (*entity.ProgressRecord, error) {
	var (
		record        entity.ProgressRecord
		kind          string
		timeSpentSecs int64
	)
	if err := row.Scan(
		&record.ID, &record.UserID, &kind, &record.EntityID,
		&record.CorrectAnswers, &record.ProgressPercent, &record.TotalUnits,
		&record.Completed, &record.CompletedAt, &timeSpentSecs,
		&record.CreatedAt, &record.LastUpdated,
	); err != nil {
		return nil, err
	}
	record.Kind = entity.EntityKind(kind)
	record.TimeSpent = time.Duration(timeSpentSecs) * time.Second
	return &record, nil
}
