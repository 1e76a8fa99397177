package usecase

import (
	"testing"

	"github.com/eslsoft/cyberpath/internal/entity"
)

func TestWasJustCompleted(t *testing.T) {
	challenge := func(correct, total int32, completed bool) *entity.ProgressRecord {
		return &entity.ProgressRecord{
			Kind:           entity.KindChallenge,
			CorrectAnswers: correct,
			TotalUnits:     total,
			Completed:      completed,
		}
	}
	course := func(percent int32, completed bool) *entity.ProgressRecord {
		return &entity.ProgressRecord{
			Kind:            entity.KindCourse,
			ProgressPercent: percent,
			TotalUnits:      100,
			Completed:       completed,
		}
	}

	tests := []struct {
		name string
		prev *entity.ProgressRecord
		next *entity.ProgressRecord
		want bool
	}{
		{"challenge reaches max", challenge(7, 10, false), challenge(10, 10, false), true},
		{"challenge below max", challenge(3, 10, false), challenge(9, 10, false), false},
		{"challenge already completed", challenge(10, 10, true), challenge(10, 10, true), false},
		{"zero total never completes", challenge(0, 0, false), challenge(5, 0, false), false},
		{"course reaches 100", course(80, false), course(100, false), true},
		{"course partial", course(0, false), course(50, false), false},
		{"course repeat after completion", course(100, true), course(100, true), false},
		{"nil previous", nil, course(100, false), false},
		{"nil next", course(80, false), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WasJustCompleted(tt.prev, tt.next); got != tt.want {
				t.Errorf("WasJustCompleted() = %v, want %v", got, tt.want)
			}
		})
	}
}
