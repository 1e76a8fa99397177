package entity

import "errors"

// Domain errors for the progression engine and related aggregates.
var (
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrStatsNotFound       = errors.New("user stats not found")
	ErrStatsAlreadyExist   = errors.New("user stats already exist")
	ErrProgressNotFound    = errors.New("progress record not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrInvalidUserID       = errors.New("invalid user ID")
	ErrInvalidEntityID     = errors.New("invalid entity ID")
	ErrInvalidEntityKind   = errors.New("invalid entity kind")
	ErrInvalidMeasure      = errors.New("progress measure out of range")
	ErrInvalidAward        = errors.New("invalid XP award")
)
