package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
)

func TestCreateAccountBootstrapsAggregate(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	stats, err := e.statsUC.CreateAccount(ctx, 50)
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if stats.Level != 1 {
		t.Errorf("expected starting level 1, got %d", stats.Level)
	}
	if stats.XP != 0 {
		t.Errorf("expected starting XP 0, got %d", stats.XP)
	}
	if entries := e.activity.byType(50, entity.ActivityAccountCreated); len(entries) != 1 {
		t.Errorf("expected one account_created entry, got %d", len(entries))
	}

	if _, err := e.statsUC.CreateAccount(ctx, 50); !errors.Is(err, entity.ErrStatsAlreadyExist) {
		t.Errorf("expected ErrStatsAlreadyExist on duplicate, got %v", err)
	}
}

func TestGetStatsDerivesLevelAndRank(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	e.seedUser(t, 60)
	e.seedUser(t, 61)

	if _, err := e.awards.Award(ctx, 60, completionAwardFixture("c60", 2600)); err != nil {
		t.Fatalf("award failed: %v", err)
	}
	if _, err := e.awards.Award(ctx, 61, completionAwardFixture("c61", 900)); err != nil {
		t.Fatalf("award failed: %v", err)
	}

	stats, err := e.statsUC.GetStats(ctx, 60)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	// 2600 XP crosses the 1000 and 2500 thresholds of the default curve.
	if stats.Level != 3 {
		t.Errorf("expected level 3 at 2600 XP, got %d", stats.Level)
	}
	if stats.Rank != 1 {
		t.Errorf("expected rank 1, got %d", stats.Rank)
	}

	runnerUp, err := e.statsUC.GetStats(ctx, 61)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if runnerUp.Rank != 2 {
		t.Errorf("expected rank 2, got %d", runnerUp.Rank)
	}
}

func TestGetStatsSurvivesRankOutage(t *testing.T) {
	e := newTestEngine()
	e.seedUser(t, 70)
	e.leaderboard.rankErr = errors.New("redis down")

	stats, err := e.statsUC.GetStats(context.Background(), 70)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Rank != 0 {
		t.Errorf("expected zero rank during outage, got %d", stats.Rank)
	}
}

func TestLeaderboardRows(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	e.seedUser(t, 80)
	e.seedUser(t, 81)
	e.seedUser(t, 82)

	awards := map[int64]int64{80: 1200, 81: 5000, 82: 100}
	for userID, amount := range awards {
		key := completionAwardFixture("", amount)
		key.DedupKey = "seed:" + string(rune('a'+userID%10))
		if _, err := e.awards.Award(ctx, userID, key); err != nil {
			t.Fatalf("award for %d failed: %v", userID, err)
		}
	}

	rows, err := e.statsUC.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].UserID != 81 || rows[0].Rank != 1 {
		t.Errorf("expected user 81 at rank 1, got %+v", rows[0])
	}
	if rows[0].Level != entity.LevelForXP(5000, entity.DefaultLevelCurve) {
		t.Errorf("expected derived level, got %d", rows[0].Level)
	}
	if rows[1].UserID != 80 {
		t.Errorf("expected user 80 at rank 2, got %+v", rows[1])
	}
}

func TestActivityFeedPagination(t *testing.T) {
	e := newTestEngine()
	e.seedUser(t, 90)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		award := completionAwardFixture("", 10)
		award.DedupKey = "k" + string(rune('0'+i))
		if _, err := e.awards.Award(ctx, 90, award); err != nil {
			t.Fatalf("award %d failed: %v", i, err)
		}
	}

	query := &repository.ListActivityQuery{
		Pagination: repository.Pagination{PageNo: 1, PageSize: 3},
		UserID:     90,
	}
	entries, total, err := e.statsUC.ActivityFeed(ctx, query)
	if err != nil {
		t.Fatalf("ActivityFeed failed: %v", err)
	}
	// 5 awards plus the account_created entry.
	if total != 6 {
		t.Errorf("expected total 6, got %d", total)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries on page, got %d", len(entries))
	}
}

func TestCheckLedgerDetectsImbalance(t *testing.T) {
	e := newTestEngine()
	e.seedUser(t, 95)
	ctx := context.Background()

	if _, err := e.awards.Award(ctx, 95, completionAwardFixture("c95", 300)); err != nil {
		t.Fatalf("award failed: %v", err)
	}
	report, err := e.statsUC.CheckLedger(ctx, 95)
	if err != nil {
		t.Fatalf("CheckLedger failed: %v", err)
	}
	if !report.Balanced {
		t.Errorf("expected balanced ledger, got %+v", report)
	}

	// An out-of-band mutation must surface as an imbalance.
	e.stats.mu.Lock()
	e.stats.stats[95].XP += 17
	e.stats.mu.Unlock()

	report, err = e.statsUC.CheckLedger(ctx, 95)
	if err != nil {
		t.Fatalf("CheckLedger failed: %v", err)
	}
	if report.Balanced {
		t.Error("expected imbalance after out-of-band XP mutation")
	}
}
