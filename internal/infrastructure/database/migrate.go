package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the authoritative DDL for the progression engine. Statements are
// idempotent so db-init can run against an existing database.
//
// Invariants enforced here rather than in code:
//   - one progress record per (user, kind, entity), so concurrent creators
//     converge on a single row
//   - one activity entry per dedup key, the at-most-once reward witness
//   - one achievement per (user, type)
var schema = []string{
	`CREATE TABLE IF NOT EXISTS progress_records (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		user_id BIGINT NOT NULL,
		entity_kind TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		correct_answers INTEGER NOT NULL DEFAULT 0,
		progress_percent INTEGER NOT NULL DEFAULT 0,
		total_units INTEGER NOT NULL DEFAULT 0,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMPTZ,
		time_spent_secs BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT progress_records_identity UNIQUE (user_id, entity_kind, entity_id)
	)`,
	`CREATE INDEX IF NOT EXISTS progress_records_user_updated
		ON progress_records (user_id, last_updated DESC)`,

	`CREATE TABLE IF NOT EXISTS user_stats (
		user_id BIGINT PRIMARY KEY,
		xp BIGINT NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1,
		challenges_completed INTEGER NOT NULL DEFAULT 0,
		courses_completed INTEGER NOT NULL DEFAULT 0,
		total_points BIGINT NOT NULL DEFAULT 0,
		streak_days INTEGER NOT NULL DEFAULT 0,
		last_active_at TIMESTAMPTZ NOT NULL DEFAULT 'epoch',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS user_stats_xp ON user_stats (xp DESC)`,

	`CREATE TABLE IF NOT EXISTS activity_log (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		xp_earned BIGINT NOT NULL DEFAULT 0,
		points_earned BIGINT NOT NULL DEFAULT 0,
		detail JSONB NOT NULL DEFAULT '{}',
		dedup_key TEXT UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS activity_log_user_created
		ON activity_log (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS achievements (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		user_id BIGINT NOT NULL,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image_ref TEXT NOT NULL DEFAULT '',
		earned_at TIMESTAMPTZ NOT NULL,
		share_count INTEGER NOT NULL DEFAULT 0,
		CONSTRAINT achievements_identity UNIQUE (user_id, type)
	)`,
}

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
