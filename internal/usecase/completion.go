package usecase

import "github.com/eslsoft/cyberpath/internal/entity"

// WasJustCompleted reports whether the change from prev to next is the
// completion transition: the record was not completed before and the new
// advancement measure has reached its maximum. It is evaluated before any
// write so the transition decision cannot race with its own persistence.
//
// Records whose maximum is zero never complete, and already-completed records
// never re-fire regardless of the new measure.
func WasJustCompleted(prev, next *entity.ProgressRecord) bool {
	if prev == nil || next == nil {
		return false
	}
	if prev.Completed {
		return false
	}
	return next.AtMax()
}
