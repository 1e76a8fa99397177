package entity

import (
	"fmt"
	"time"
)

// ProgressRecord tracks one user's advancement on one learning entity.
// Identity is the composite (UserID, Kind, EntityID); storage enforces
// uniqueness on that triple so concurrent creators converge on one record.
type ProgressRecord struct {
	ID       int64
	UserID   int64
	EntityID string
	Kind     EntityKind

	// CorrectAnswers carries the advancement measure for challenges,
	// ProgressPercent for courses. TotalUnits is the question count for
	// challenges and always 100 for courses.
	CorrectAnswers  int32
	ProgressPercent int32
	TotalUnits      int32

	Completed   bool
	CompletedAt *time.Time

	TimeSpent   time.Duration
	CreatedAt   time.Time
	LastUpdated time.Time
}

// Measure returns the current advancement value and its maximum for the
// record's entity kind.
func (p *ProgressRecord) Measure() (current, max int32) {
	switch p.Kind {
	case KindCourse:
		return p.ProgressPercent, 100
	default:
		return p.CorrectAnswers, p.TotalUnits
	}
}

// AtMax reports whether the advancement measure has reached its maximum.
// A zero maximum can never be reached, so such records never complete.
func (p *ProgressRecord) AtMax() bool {
	current, max := p.Measure()
	if max <= 0 {
		return false
	}
	return current >= max
}

// Started reports whether the record carries any non-default advancement.
func (p *ProgressRecord) Started() bool {
	current, _ := p.Measure()
	return current > 0 || p.TimeSpent > 0
}

// SetMeasure writes the advancement value for the record's kind. Values are
// validated against [0, max] by the caller before they reach the record.
func (p *ProgressRecord) SetMeasure(value int32) {
	switch p.Kind {
	case KindCourse:
		p.ProgressPercent = value
	default:
		p.CorrectAnswers = value
	}
}

// CompletionKey derives the deterministic idempotency witness for this
// record's completion. At most one activity entry may ever carry it.
func (p *ProgressRecord) CompletionKey() string {
	return fmt.Sprintf("completion:%d:%s:%s", p.UserID, p.Kind, p.EntityID)
}

// Normalize ensures defaults before persistence.
func (p *ProgressRecord) Normalize(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.LastUpdated = now
	if p.Kind == KindCourse && p.TotalUnits == 0 {
		p.TotalUnits = 100
	}
}
