package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
	"github.com/eslsoft/cyberpath/pkg/filterexpr"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository returns a PostgreSQL-backed ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

// activityFeedSchema whitelists the filter surface of the activity feed.
var activityFeedSchema = filterexpr.Schema{
	Fields: map[string]filterexpr.Field{
		"type": {Kind: filterexpr.KindString, Ops: map[filterexpr.Op]string{
			filterexpr.OpEQ: "Type",
			filterexpr.OpIN: "Types",
		}},
		"created_at": {Kind: filterexpr.KindTimestamp, Ops: map[filterexpr.Op]string{
			filterexpr.OpGTE: "CreatedAfter",
			filterexpr.OpLTE: "CreatedUntil",
		}},
	},
	OrderKeys: map[string]string{
		"created_at": "created_at",
		"id":         "id",
	},
	DefaultOrder: "created_at",
	DefaultDesc:  true,
}

type activityFeedFilter struct {
	Type         string
	Types        []string
	CreatedAfter time.Time
	CreatedUntil time.Time
}

const activityColumns = `id, user_id, type, description, xp_earned, points_earned,
	detail, COALESCE(dedup_key, ''), created_at`

func (r *activityRepository) Append(ctx context.Context, entry *entity.ActivityEntry) (bool, error) {
	detail, err := entity.EncodeActivityDetail(entry.Detail)
	if err != nil {
		return false, err
	}
	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO activity_log (id, user_id, type, description, xp_earned, points_earned, detail, dedup_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
		ON CONFLICT (dedup_key) DO NOTHING`,
		id, entry.UserID, string(entry.Type), entry.Description,
		entry.XPEarned, entry.PointsEarned, detail, entry.DedupKey, entry.CreatedAt)
	if err != nil {
		return false, storageErr("append activity entry", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *activityRepository) HasWitness(ctx context.Context, dedupKey string) (bool, error) {
	if dedupKey == "" {
		return false, nil
	}
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM activity_log WHERE dedup_key = $1)`, dedupKey).Scan(&exists)
	if err != nil {
		return false, storageErr("check activity witness", err)
	}
	return exists, nil
}

func (r *activityRepository) List(ctx context.Context, query *repository.ListActivityQuery) ([]*entity.ActivityEntry, int64, error) {
	var filter activityFeedFilter
	order, err := filterexpr.Bind(query, &filter, activityFeedSchema)
	if err != nil {
		return nil, 0, err
	}

	where := []string{"user_id = $1"}
	args := []any{query.UserID}
	addClause := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.Type != "" {
		addClause("type = $%d", filter.Type)
	}
	if len(filter.Types) > 0 {
		addClause("type = ANY($%d)", filter.Types)
	}
	if !filter.CreatedAfter.IsZero() {
		addClause("created_at >= $%d", filter.CreatedAfter)
	}
	if !filter.CreatedUntil.IsZero() {
		addClause("created_at <= $%d", filter.CreatedUntil)
	}
	whereSQL := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx,
		"SELECT count(*) FROM activity_log WHERE "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, storageErr("count activity entries", err)
	}

	direction := "ASC"
	if order.Desc {
		direction = "DESC"
	}
	pageNo, pageSize := normalizePage(query.PageNo, query.PageSize)
	listArgs := append(args, pageSize, (pageNo-1)*pageSize)
	listSQL := fmt.Sprintf(`
		SELECT %s FROM activity_log
		WHERE %s
		ORDER BY %s %s, id DESC
		LIMIT $%d OFFSET $%d`,
		activityColumns, whereSQL, order.Expr, direction, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, storageErr("list activity entries", err)
	}
	defer rows.Close()

	var entries []*entity.ActivityEntry
	for rows.Next() {
		entry, err := scanActivity(rows)
		if err != nil {
			return nil, 0, storageErr("scan activity entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr("list activity entries", err)
	}
	return entries, total, nil
}

func (r *activityRepository) SumXP(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(sum(xp_earned), 0) FROM activity_log WHERE user_id = $1`, userID).Scan(&sum)
	if err != nil {
		return 0, storageErr("sum activity xp", err)
	}
	return sum, nil
}

func scanActivity(row pgx.Row) (*entity.ActivityEntry, error) {
	var (
		entry  entity.ActivityEntry
		typ    string
		detail []byte
	)
	if err := row.Scan(
		&entry.ID, &entry.UserID, &typ, &entry.Description,
		&entry.XPEarned, &entry.PointsEarned, &detail,
		&entry.DedupKey, &entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	entry.Type = entity.ActivityType(typ)
	decoded, err := entity.DecodeActivityDetail(entry.Type, detail)
	if err != nil {
		return nil, err
	}
	entry.Detail = decoded
	return &entry, nil
}
