package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
	"github.com/eslsoft/cyberpath/internal/usecase"
)

type stubProgress struct {
	result    *usecase.ProgressResult
	err       error
	lastInput usecase.RecordChallengeInput
}

func (s *stubProgress) RecordChallengeProgress(_ context.Context, _ int64, in usecase.RecordChallengeInput) (*usecase.ProgressResult, error) {
	s.lastInput = in
	return s.result, s.err
}

func (s *stubProgress) RecordCourseProgress(_ context.Context, _ int64, _ usecase.RecordCourseInput) (*usecase.ProgressResult, error) {
	return s.result, s.err
}

func (s *stubProgress) GetProgress(_ context.Context, _ int64, _ entity.EntityKind, _ string) (*entity.ProgressRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result.Record, nil
}

func (s *stubProgress) ListProgress(_ context.Context, _ int64, _ repository.Pagination) ([]*entity.ProgressRecord, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return []*entity.ProgressRecord{s.result.Record}, 1, nil
}

type stubStats struct {
	stats     *entity.UserStats
	err       error
	lastQuery *repository.ListActivityQuery
}

func (s *stubStats) CreateAccount(_ context.Context, userID int64) (*entity.UserStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stats, nil
}

func (s *stubStats) GetStats(_ context.Context, _ int64) (*entity.UserStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stats, nil
}

func (s *stubStats) Leaderboard(_ context.Context, _ int32) ([]usecase.LeaderboardRow, error) {
	return []usecase.LeaderboardRow{{Rank: 1, UserID: 7, XP: 500, Level: 1}}, nil
}

func (s *stubStats) ActivityFeed(_ context.Context, query *repository.ListActivityQuery) ([]*entity.ActivityEntry, int64, error) {
	s.lastQuery = query
	return nil, 0, nil
}

func (s *stubStats) CheckLedger(_ context.Context, userID int64) (*usecase.LedgerReport, error) {
	return &usecase.LedgerReport{UserID: userID, StatsXP: 500, LedgerXP: 500, Balanced: true}, nil
}

type stubAchievements struct {
	achievements []*entity.Achievement
	err          error
}

func (s *stubAchievements) Evaluate(_ context.Context, _ *entity.UserStats) ([]*entity.Achievement, error) {
	return nil, nil
}

func (s *stubAchievements) ListByUser(_ context.Context, _ int64) ([]*entity.Achievement, error) {
	return s.achievements, s.err
}

func (s *stubAchievements) Share(_ context.Context, userID int64, typ entity.AchievementType) (*entity.Achievement, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Achievement{UserID: userID, Type: typ, ShareCount: 1}, nil
}

type testAPI struct {
	progress     *stubProgress
	stats        *stubStats
	achievements *stubAchievements
	router       http.Handler
}

func newTestAPI() *testAPI {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	api := &testAPI{
		progress: &stubProgress{result: &usecase.ProgressResult{
			Record: &entity.ProgressRecord{
				UserID:     7,
				EntityID:   "sql-injection-basics",
				Kind:       entity.KindChallenge,
				TotalUnits: 10,
			},
		}},
		stats:        &stubStats{stats: &entity.UserStats{UserID: 7, XP: 500, Level: 1}},
		achievements: &stubAchievements{},
	}
	handler := NewHandler(api.progress, api.stats, api.achievements, nil, logger)
	api.router = NewRouter(handler, logger)
	return api
}

func (api *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func TestRecordChallengeProgress(t *testing.T) {
	api := newTestAPI()
	api.progress.result.CompletedJustNow = true
	api.progress.result.Award = &usecase.AwardResult{
		PreviousXP: 0, NewXP: 500, XPGained: 500, Applied: true,
	}

	rec := api.do(t, http.MethodPost, "/api/v1/users/7/progress/challenges",
		`{"entity_id":"sql-injection-basics","correct_answers":10,"total_questions":10,"time_spent_secs":300,"difficulty":"medium"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if got := api.progress.lastInput; got.EntityID != "sql-injection-basics" ||
		got.CorrectAnswers != 10 || got.TimeSpent != 5*time.Minute ||
		got.Difficulty != entity.DifficultyMedium {
		t.Errorf("input = %+v", got)
	}

	var resp struct {
		CompletedJustNow bool `json:"completed_just_now"`
		Award            *struct {
			XPGained int64 `json:"xp_gained"`
			NewXP    int64 `json:"new_xp"`
		} `json:"award"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.CompletedJustNow || resp.Award == nil || resp.Award.XPGained != 500 {
		t.Errorf("response = %+v", resp)
	}
}

func TestRecordProgressRejectsBadUserID(t *testing.T) {
	api := newTestAPI()
	rec := api.do(t, http.MethodPost, "/api/v1/users/zero/progress/challenges",
		`{"entity_id":"x","correct_answers":1,"total_questions":10}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDomainErrorsMapToStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid measure", entity.ErrInvalidMeasure, http.StatusBadRequest},
		{"progress not found", entity.ErrProgressNotFound, http.StatusNotFound},
		{"storage down", entity.ErrStorageUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.progress.err = tt.err
			rec := api.do(t, http.MethodPost, "/api/v1/users/7/progress/courses",
				`{"entity_id":"network-defense","progress_percent":50}`)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestStatsNotFound(t *testing.T) {
	api := newTestAPI()
	api.stats.err = entity.ErrStatsNotFound
	rec := api.do(t, http.MethodGet, "/api/v1/users/7/stats", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateAccountConflict(t *testing.T) {
	api := newTestAPI()
	api.stats.err = entity.ErrStatsAlreadyExist
	rec := api.do(t, http.MethodPost, "/api/v1/users", `{"user_id":7}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestActivityFeedPassesFilterThrough(t *testing.T) {
	api := newTestAPI()
	rec := api.do(t, http.MethodGet,
		"/api/v1/users/7/activities?filter=type+%3D%3D+%22xp_earned%22&order_by=created_at+desc&page_no=2&page_size=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	query := api.stats.lastQuery
	if query == nil {
		t.Fatal("activity feed query not forwarded")
	}
	if query.UserID != 7 || query.Filter != `type == "xp_earned"` ||
		query.OrderBy != "created_at desc" || query.PageNo != 2 || query.PageSize != 5 {
		t.Errorf("query = %+v", query)
	}
}

func TestShareAchievement(t *testing.T) {
	api := newTestAPI()
	rec := api.do(t, http.MethodPost, "/api/v1/users/7/achievements/first_challenge/share", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp achievementView
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != "first_challenge" || resp.ShareCount != 1 {
		t.Errorf("response = %+v", resp)
	}
}
