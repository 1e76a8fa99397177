package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
)

const leaderboardKey = "leaderboard:xp"

type leaderboardRepository struct {
	client *redis.Client
}

// NewLeaderboardRepository returns the Redis sorted-set leaderboard. It is a
// derived read model over user XP; scores are refreshed after each applied
// award and callers treat ranks as best-effort.
func NewLeaderboardRepository(client *redis.Client) repository.LeaderboardRepository {
	return &leaderboardRepository{client: client}
}

func (r *leaderboardRepository) SetScore(ctx context.Context, userID, xp int64) error {
	err := r.client.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(xp),
		Member: strconv.FormatInt(userID, 10),
	}).Err()
	if err != nil {
		return fmt.Errorf("set leaderboard score: %w: %v", entity.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *leaderboardRepository) Rank(ctx context.Context, userID int64) (int32, error) {
	rank, err := r.client.ZRevRank(ctx, leaderboardKey, strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Not on the board yet. Rank zero means unranked.
			return 0, nil
		}
		return 0, fmt.Errorf("get leaderboard rank: %w: %v", entity.ErrStorageUnavailable, err)
	}
	return int32(rank) + 1, nil
}

func (r *leaderboardRepository) Top(ctx context.Context, limit int32) ([]repository.LeaderboardEntry, error) {
	if limit < 1 {
		limit = 10
	}
	members, err := r.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list leaderboard top: %w: %v", entity.ErrStorageUnavailable, err)
	}

	entries := make([]repository.LeaderboardEntry, 0, len(members))
	for i, member := range members {
		raw, ok := member.Member.(string)
		if !ok {
			continue
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, repository.LeaderboardEntry{
			Rank:   int32(i) + 1,
			UserID: userID,
			XP:     int64(member.Score),
		})
	}
	return entries, nil
}
