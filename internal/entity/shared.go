package entity

import "strings"

// EntityKind distinguishes the two learning entity families tracked by the
// progression engine. Challenges measure advancement in correct answers out of
// a question total; courses measure it as a percentage.
type EntityKind string

const (
	KindUnspecified EntityKind = ""
	KindChallenge   EntityKind = "challenge"
	KindCourse      EntityKind = "course"
)

// ParseEntityKind converts an arbitrary string into a supported EntityKind.
func ParseEntityKind(kind string) EntityKind {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "challenge":
		return KindChallenge
	case "course":
		return KindCourse
	default:
		return KindUnspecified
	}
}

// Difficulty names the tier a challenge or course is declared at. The XP value
// of each tier is injected configuration, not a property of the tier itself.
type Difficulty string

const (
	DifficultyUnspecified Difficulty = ""
	DifficultyBeginner    Difficulty = "beginner"
	DifficultyEasy        Difficulty = "easy"
	DifficultyMedium      Difficulty = "medium"
	DifficultyHard        Difficulty = "hard"
	DifficultyAdvanced    Difficulty = "advanced"
	DifficultyExpert      Difficulty = "expert"
)

// ParseDifficulty converts an arbitrary string into a supported Difficulty.
func ParseDifficulty(tier string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "beginner":
		return DifficultyBeginner
	case "easy":
		return DifficultyEasy
	case "medium":
		return DifficultyMedium
	case "hard":
		return DifficultyHard
	case "advanced":
		return DifficultyAdvanced
	case "expert":
		return DifficultyExpert
	default:
		return DifficultyUnspecified
	}
}

// XPTable maps difficulty tiers to the XP awarded for completing an entity of
// that tier.
type XPTable map[Difficulty]int64

// Amount resolves the XP value for a tier, falling back to zero for unknown
// tiers so a mistyped tier never mints XP.
func (t XPTable) Amount(tier Difficulty) int64 {
	return t[tier]
}

// DefaultXPTable is the built-in reward table used when no table is
// configured.
var DefaultXPTable = XPTable{
	DifficultyBeginner: 100,
	DifficultyEasy:     250,
	DifficultyMedium:   500,
	DifficultyHard:     1000,
	DifficultyAdvanced: 3000,
	DifficultyExpert:   5000,
}

// NormalizeEntityID lowercases and trims an entity slug.
func NormalizeEntityID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
