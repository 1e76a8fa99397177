package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
)

func progressKey(userID int64, kind entity.EntityKind, entityID string) string {
	return fmt.Sprintf("%d:%s:%s", userID, kind, entityID)
}

type fakeProgressRepo struct {
	mu    sync.Mutex
	seq   int64
	items map[string]*entity.ProgressRecord

	saveErr error
	markErr error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{items: make(map[string]*entity.ProgressRecord)}
}

func (r *fakeProgressRepo) GetOrCreate(ctx context.Context, userID int64, kind entity.EntityKind, entityID string, totalUnits int32) (*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey(userID, kind, entityID)
	if item, ok := r.items[key]; ok {
		return cloneProgress(item), nil
	}
	r.seq++
	record := &entity.ProgressRecord{
		ID:         r.seq,
		UserID:     userID,
		EntityID:   entityID,
		Kind:       kind,
		TotalUnits: totalUnits,
	}
	if kind == entity.KindCourse {
		record.TotalUnits = 100
	}
	record.CreatedAt = time.Now()
	record.LastUpdated = record.CreatedAt
	r.items[key] = record
	return cloneProgress(record), nil
}

func (r *fakeProgressRepo) Save(ctx context.Context, record *entity.ProgressRecord) (*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey(record.UserID, record.Kind, record.EntityID)
	existing, ok := r.items[key]
	if !ok {
		return nil, entity.ErrProgressNotFound
	}
	updated := cloneProgress(record)
	// Save never touches the completion flag.
	updated.Completed = existing.Completed
	updated.CompletedAt = existing.CompletedAt
	r.items[key] = updated
	return cloneProgress(updated), nil
}

func (r *fakeProgressRepo) MarkCompleted(ctx context.Context, record *entity.ProgressRecord, completedAt time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if r.markErr != nil {
		return false, r.markErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey(record.UserID, record.Kind, record.EntityID)
	existing, ok := r.items[key]
	if !ok {
		return false, entity.ErrProgressNotFound
	}
	if existing.Completed {
		return false, nil
	}
	updated := cloneProgress(record)
	updated.Completed = true
	at := completedAt
	updated.CompletedAt = &at
	r.items[key] = updated
	return true, nil
}

func (r *fakeProgressRepo) Get(ctx context.Context, userID int64, kind entity.EntityKind, entityID string) (*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[progressKey(userID, kind, entityID)]
	if !ok {
		return nil, entity.ErrProgressNotFound
	}
	return cloneProgress(item), nil
}

func (r *fakeProgressRepo) ListByUser(ctx context.Context, userID int64, page repository.Pagination) ([]*entity.ProgressRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.ProgressRecord
	for _, item := range r.items {
		if item.UserID == userID {
			result = append(result, cloneProgress(item))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LastUpdated.After(result[j].LastUpdated) })
	return result, int64(len(result)), nil
}

func cloneProgress(src *entity.ProgressRecord) *entity.ProgressRecord {
	if src == nil {
		return nil
	}
	copy := *src
	if src.CompletedAt != nil {
		at := *src.CompletedAt
		copy.CompletedAt = &at
	}
	return &copy
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []*entity.ActivityEntry
	byKey   map[string]*entity.ActivityEntry

	appendErr  error
	witnessErr error
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{byKey: make(map[string]*entity.ActivityEntry)}
}

func (r *fakeActivityRepo) Append(ctx context.Context, entry *entity.ActivityEntry) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if r.appendErr != nil {
		return false, r.appendErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendLocked(entry), nil
}

func (r *fakeActivityRepo) appendLocked(entry *entity.ActivityEntry) bool {
	if entry.DedupKey != "" {
		if _, exists := r.byKey[entry.DedupKey]; exists {
			return false
		}
	}
	stored := *entry
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	r.entries = append(r.entries, &stored)
	if stored.DedupKey != "" {
		r.byKey[stored.DedupKey] = &stored
	}
	return true
}

func (r *fakeActivityRepo) HasWitness(ctx context.Context, dedupKey string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if r.witnessErr != nil {
		return false, r.witnessErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byKey[dedupKey]
	return ok, nil
}

func (r *fakeActivityRepo) List(ctx context.Context, query *repository.ListActivityQuery) ([]*entity.ActivityEntry, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.ActivityEntry
	for _, e := range r.entries {
		if e.UserID == query.UserID {
			copy := *e
			result = append(result, &copy)
		}
	}
	total := int64(len(result))
	if query.PageSize > 0 {
		start := int(query.Offset())
		if start < 0 {
			start = 0
		}
		if start >= len(result) {
			return nil, total, nil
		}
		end := start + int(query.PageSize)
		if end > len(result) {
			end = len(result)
		}
		result = result[start:end]
	}
	return result, total, nil
}

func (r *fakeActivityRepo) SumXP(ctx context.Context, userID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, e := range r.entries {
		if e.UserID == userID {
			sum += e.XPEarned
		}
	}
	return sum, nil
}

func (r *fakeActivityRepo) byType(userID int64, typ entity.ActivityType) []*entity.ActivityEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.ActivityEntry
	for _, e := range r.entries {
		if e.UserID == userID && e.Type == typ {
			result = append(result, e)
		}
	}
	return result
}

// fakeStatsRepo applies awards against the shared activity fake under one
// lock, mirroring the transactional witness of the real adapter.
type fakeStatsRepo struct {
	mu       sync.Mutex
	stats    map[int64]*entity.UserStats
	activity *fakeActivityRepo

	applyErr error
}

func newFakeStatsRepo(activity *fakeActivityRepo) *fakeStatsRepo {
	return &fakeStatsRepo{stats: make(map[int64]*entity.UserStats), activity: activity}
}

func (r *fakeStatsRepo) Create(ctx context.Context, stats *entity.UserStats) (*entity.UserStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stats[stats.UserID]; ok {
		return nil, entity.ErrStatsAlreadyExist
	}
	copy := *stats
	r.stats[stats.UserID] = &copy
	result := copy
	return &result, nil
}

func (r *fakeStatsRepo) Get(ctx context.Context, userID int64) (*entity.UserStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[userID]
	if !ok {
		return nil, entity.ErrStatsNotFound
	}
	copy := *stats
	return &copy, nil
}

func (r *fakeStatsRepo) ApplyAward(ctx context.Context, userID int64, award *entity.XPAward) (*entity.UserStats, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if r.applyErr != nil {
		return nil, false, r.applyErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[userID]
	if !ok {
		return nil, false, entity.ErrStatsNotFound
	}

	r.activity.mu.Lock()
	inserted := r.activity.appendLocked(&entity.ActivityEntry{
		UserID:       userID,
		Type:         award.Type,
		Description:  award.Description,
		XPEarned:     award.Amount,
		PointsEarned: award.Points,
		Detail:       award.Detail,
		DedupKey:     award.DedupKey,
		CreatedAt:    award.OccurredAt,
	})
	r.activity.mu.Unlock()
	if !inserted {
		copy := *stats
		return &copy, false, nil
	}

	stats.XP += award.Amount
	stats.TotalPoints += award.Points
	stats.ChallengesCompleted += award.ChallengesDelta
	stats.CoursesCompleted += award.CoursesDelta
	stats.StreakDays = award.StreakDays
	stats.LastActiveAt = award.OccurredAt
	stats.UpdatedAt = award.OccurredAt
	copy := *stats
	return &copy, true, nil
}

func (r *fakeStatsRepo) TouchActivity(ctx context.Context, userID int64, streakDays int32, activeAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[userID]
	if !ok {
		return entity.ErrStatsNotFound
	}
	stats.StreakDays = streakDays
	stats.LastActiveAt = activeAt
	return nil
}

func (r *fakeStatsRepo) ListTop(ctx context.Context, limit int32) ([]*entity.UserStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.UserStats
	for _, s := range r.stats {
		copy := *s
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].XP > result[j].XP })
	if limit > 0 && int(limit) < len(result) {
		result = result[:limit]
	}
	return result, nil
}

type fakeAchievementRepo struct {
	mu    sync.Mutex
	seq   int64
	items map[string]*entity.Achievement
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{items: make(map[string]*entity.Achievement)}
}

func achievementKey(userID int64, typ entity.AchievementType) string {
	return fmt.Sprintf("%d:%s", userID, typ)
}

func (r *fakeAchievementRepo) GetOrCreate(ctx context.Context, achievement *entity.Achievement) (*entity.Achievement, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := achievementKey(achievement.UserID, achievement.Type)
	if existing, ok := r.items[key]; ok {
		copy := *existing
		return &copy, false, nil
	}
	r.seq++
	stored := *achievement
	stored.ID = r.seq
	r.items[key] = &stored
	copy := stored
	return &copy, true, nil
}

func (r *fakeAchievementRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.Achievement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Achievement
	for _, a := range r.items {
		if a.UserID == userID {
			copy := *a
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EarnedAt.After(result[j].EarnedAt) })
	return result, nil
}

func (r *fakeAchievementRepo) IncrementShare(ctx context.Context, userID int64, typ entity.AchievementType) (*entity.Achievement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[achievementKey(userID, typ)]
	if !ok {
		return nil, entity.ErrAchievementNotFound
	}
	existing.ShareCount++
	copy := *existing
	return &copy, nil
}

type fakeLeaderboardRepo struct {
	mu     sync.Mutex
	scores map[int64]int64

	setErr  error
	rankErr error
}

func newFakeLeaderboardRepo() *fakeLeaderboardRepo {
	return &fakeLeaderboardRepo{scores: make(map[int64]int64)}
}

func (r *fakeLeaderboardRepo) SetScore(ctx context.Context, userID, xp int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.setErr != nil {
		return r.setErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores[userID] = xp
	return nil
}

func (r *fakeLeaderboardRepo) Rank(ctx context.Context, userID int64) (int32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if r.rankErr != nil {
		return 0, r.rankErr
	}
	entries, _ := r.Top(ctx, 0)
	for _, e := range entries {
		if e.UserID == userID {
			return e.Rank, nil
		}
	}
	return 0, entity.ErrStatsNotFound
}

func (r *fakeLeaderboardRepo) Top(ctx context.Context, limit int32) ([]repository.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]repository.LeaderboardEntry, 0, len(r.scores))
	for id, xp := range r.scores {
		entries = append(entries, repository.LeaderboardEntry{UserID: id, XP: xp})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].XP == entries[j].XP {
			return entries[i].UserID < entries[j].UserID
		}
		return entries[i].XP > entries[j].XP
	})
	for i := range entries {
		entries[i].Rank = int32(i + 1)
	}
	if limit > 0 && int(limit) < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}
