package entity

import "time"

// AchievementType identifies a badge a user can earn. Identity is the pair
// (UserID, Type): each badge is earned at most once.
type AchievementType string

const (
	AchievementFirstChallenge AchievementType = "first_challenge"
	AchievementChallenges5    AchievementType = "challenges_5"
	AchievementChallenges10   AchievementType = "challenges_10"
	AchievementChallenges25   AchievementType = "challenges_25"
	AchievementFirstPath      AchievementType = "first_path"
	AchievementStreak5        AchievementType = "streak_5"
	AchievementStreak10       AchievementType = "streak_10"
	AchievementStreak30       AchievementType = "streak_30"
)

// AchievementSpec carries the display metadata for a badge type.
type AchievementSpec struct {
	Name        string
	Description string
	ImageRef    string
	Milestone   int32
}

var achievementSpecs = map[AchievementType]AchievementSpec{
	AchievementFirstChallenge: {Name: "First Blood", Description: "Complete your first challenge", ImageRef: "badges/first-challenge.svg", Milestone: 1},
	AchievementChallenges5:    {Name: "Getting Warmed Up", Description: "Complete 5 challenges", ImageRef: "badges/challenges-5.svg", Milestone: 5},
	AchievementChallenges10:   {Name: "Threat Hunter", Description: "Complete 10 challenges", ImageRef: "badges/challenges-10.svg", Milestone: 10},
	AchievementChallenges25:   {Name: "Elite Operator", Description: "Complete 25 challenges", ImageRef: "badges/challenges-25.svg", Milestone: 25},
	AchievementFirstPath:      {Name: "Pathfinder", Description: "Complete your first learning path", ImageRef: "badges/first-path.svg", Milestone: 1},
	AchievementStreak5:        {Name: "On a Roll", Description: "Stay active 5 days in a row", ImageRef: "badges/streak-5.svg", Milestone: 5},
	AchievementStreak10:       {Name: "Relentless", Description: "Stay active 10 days in a row", ImageRef: "badges/streak-10.svg", Milestone: 10},
	AchievementStreak30:       {Name: "Iron Discipline", Description: "Stay active 30 days in a row", ImageRef: "badges/streak-30.svg", Milestone: 30},
}

// Spec returns the display metadata for a badge type.
func (t AchievementType) Spec() (AchievementSpec, bool) {
	spec, ok := achievementSpecs[t]
	return spec, ok
}

// Achievement is an earned badge. ShareCount is the only field mutated after
// creation, and only upward.
type Achievement struct {
	ID          int64
	UserID      int64
	Type        AchievementType
	Name        string
	Description string
	ImageRef    string
	EarnedAt    time.Time
	ShareCount  int32
}

// NewAchievement builds an earned badge from its type's spec.
func NewAchievement(userID int64, typ AchievementType, now time.Time) *Achievement {
	spec, _ := typ.Spec()
	return &Achievement{
		UserID:      userID,
		Type:        typ,
		Name:        spec.Name,
		Description: spec.Description,
		ImageRef:    spec.ImageRef,
		EarnedAt:    now,
	}
}
