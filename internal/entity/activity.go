package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityType enumerates the reward-worthy events recorded in the activity
// log.
type ActivityType string

const (
	ActivityChallengeCompletion ActivityType = "challenge_completion"
	ActivityPathCompletion      ActivityType = "path_completion"
	ActivityXPEarned            ActivityType = "xp_earned"
	ActivityAchievementEarned   ActivityType = "achievement_earned"
	ActivityAccountCreated      ActivityType = "account_created"
)

// ActivityDetail is the closed set of per-type payloads carried by activity
// entries. Each activity type owns exactly one variant, so producers and
// consumers cannot drift on field names.
type ActivityDetail interface {
	ActivityType() ActivityType
}

// CompletionDetail accompanies challenge_completion and path_completion
// entries.
type CompletionDetail struct {
	Kind       EntityKind `json:"kind"`
	EntityID   string     `json:"entity_id"`
	Difficulty Difficulty `json:"difficulty"`
	PreviousXP int64      `json:"previous_xp"`
	NewXP      int64      `json:"new_xp"`
}

func (d CompletionDetail) ActivityType() ActivityType {
	if d.Kind == KindCourse {
		return ActivityPathCompletion
	}
	return ActivityChallengeCompletion
}

// XPGrantDetail accompanies xp_earned entries that do not originate from a
// completion, such as achievement bonuses or administrative grants.
type XPGrantDetail struct {
	Reason     string `json:"reason"`
	PreviousXP int64  `json:"previous_xp"`
	NewXP      int64  `json:"new_xp"`
}

func (XPGrantDetail) ActivityType() ActivityType { return ActivityXPEarned }

// AchievementDetail accompanies achievement_earned entries.
type AchievementDetail struct {
	Achievement AchievementType `json:"achievement"`
	Milestone   int32           `json:"milestone,omitempty"`
}

func (AchievementDetail) ActivityType() ActivityType { return ActivityAchievementEarned }

// AccountCreatedDetail accompanies the single account_created entry written
// at sign-up.
type AccountCreatedDetail struct{}

func (AccountCreatedDetail) ActivityType() ActivityType { return ActivityAccountCreated }

// ActivityEntry is one immutable record in the append-only activity log.
// Entries gated by an idempotency witness carry its key in DedupKey; storage
// enforces uniqueness on non-empty keys.
type ActivityEntry struct {
	ID           uuid.UUID
	UserID       int64
	Type         ActivityType
	Description  string
	XPEarned     int64
	PointsEarned int64
	Detail       ActivityDetail
	DedupKey     string
	CreatedAt    time.Time
}

// EncodeActivityDetail serializes a detail variant for storage. A nil detail
// encodes as an empty JSON object.
func EncodeActivityDetail(d ActivityDetail) ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode activity detail: %w", err)
	}
	return raw, nil
}

// DecodeActivityDetail deserializes the variant matching the entry's type.
func DecodeActivityDetail(typ ActivityType, raw []byte) (ActivityDetail, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var (
		detail ActivityDetail
		err    error
	)
	switch typ {
	case ActivityChallengeCompletion, ActivityPathCompletion:
		var d CompletionDetail
		err = json.Unmarshal(raw, &d)
		detail = d
	case ActivityXPEarned:
		var d XPGrantDetail
		err = json.Unmarshal(raw, &d)
		detail = d
	case ActivityAchievementEarned:
		var d AchievementDetail
		err = json.Unmarshal(raw, &d)
		detail = d
	case ActivityAccountCreated:
		detail = AccountCreatedDetail{}
	default:
		return nil, fmt.Errorf("decode activity detail: unknown type %q", typ)
	}
	if err != nil {
		return nil, fmt.Errorf("decode activity detail: %w", err)
	}
	return detail, nil
}
