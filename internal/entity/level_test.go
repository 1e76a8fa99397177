package entity

import "testing"

func TestLevelForXP(t *testing.T) {
	curve := LevelCurve{1000, 2500, 5000}
	tests := []struct {
		xp   int64
		want int32
	}{
		{-50, 1},
		{0, 1},
		{999, 1},
		{1000, 2},
		{2499, 2},
		{2500, 3},
		{4999, 3},
		{5000, 4},
		{1 << 40, 4},
	}
	for _, tt := range tests {
		if got := LevelForXP(tt.xp, curve); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelForXPEmptyCurve(t *testing.T) {
	if got := LevelForXP(1_000_000, nil); got != 1 {
		t.Errorf("LevelForXP with empty curve = %d, want 1", got)
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := int32(0)
	for xp := int64(0); xp <= 100_000; xp += 500 {
		level := LevelForXP(xp, DefaultLevelCurve)
		if level < prev {
			t.Fatalf("level decreased at xp=%d: %d < %d", xp, level, prev)
		}
		prev = level
	}
}

func TestXPForNextLevel(t *testing.T) {
	curve := LevelCurve{1000, 2500}
	if next, ok := XPForNextLevel(0, curve); !ok || next != 1000 {
		t.Errorf("XPForNextLevel(0) = %d, %v", next, ok)
	}
	if next, ok := XPForNextLevel(1500, curve); !ok || next != 2500 {
		t.Errorf("XPForNextLevel(1500) = %d, %v", next, ok)
	}
	if _, ok := XPForNextLevel(9999, curve); ok {
		t.Error("expected exhausted curve to report no next level")
	}
}
