package entity

import (
	"testing"
	"time"
)

func TestNextStreak(t *testing.T) {
	day := func(d, hour int) time.Time {
		return time.Date(2025, 6, d, hour, 0, 0, 0, time.UTC)
	}
	tests := []struct {
		name       string
		current    int32
		lastActive time.Time
		now        time.Time
		want       int32
	}{
		{"first ever activity", 0, time.Time{}, day(10, 12), 1},
		{"same day holds", 3, day(10, 9), day(10, 22), 3},
		{"same day repairs zero", 0, day(10, 9), day(10, 22), 1},
		{"next day extends", 3, day(10, 23), day(11, 1), 4},
		{"two day gap resets", 7, day(10, 12), day(12, 12), 1},
		{"long gap resets", 30, day(1, 12), day(28, 12), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStreak(tt.current, tt.lastActive, tt.now); got != tt.want {
				t.Errorf("NextStreak(%d, %v, %v) = %d, want %d", tt.current, tt.lastActive, tt.now, got, tt.want)
			}
		})
	}
}

func TestXPAwardValidate(t *testing.T) {
	valid := XPAward{Amount: 100, Points: 100, Type: ActivityXPEarned, DedupKey: "k"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid award rejected: %v", err)
	}

	for name, award := range map[string]XPAward{
		"negative amount": {Amount: -1, Type: ActivityXPEarned, DedupKey: "k"},
		"negative points": {Points: -1, Type: ActivityXPEarned, DedupKey: "k"},
		"missing type":    {Amount: 1, DedupKey: "k"},
		"missing key":     {Amount: 1, Type: ActivityXPEarned},
	} {
		if err := award.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
