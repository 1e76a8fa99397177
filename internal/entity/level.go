package entity

// LevelCurve lists the cumulative XP required to reach each level beyond the
// first: Curve[i] is the minimum XP for level i+2. Thresholds must be
// non-decreasing. The curve itself is injected configuration.
type LevelCurve []int64

// DefaultLevelCurve is used when no curve is configured.
var DefaultLevelCurve = LevelCurve{
	1000, 2500, 5000, 9000, 15000, 24000, 37000, 55000, 80000,
}

// LevelForXP is the canonical xp → level function: a pure, total, monotonic
// step function over the curve. Negative XP and an empty curve both map to
// level one.
func LevelForXP(xp int64, curve LevelCurve) int32 {
	level := int32(1)
	for _, threshold := range curve {
		if xp < threshold {
			break
		}
		level++
	}
	return level
}

// XPForNextLevel returns the XP threshold the user has yet to reach, or false
// when the curve is exhausted.
func XPForNextLevel(xp int64, curve LevelCurve) (int64, bool) {
	for _, threshold := range curve {
		if xp < threshold {
			return threshold, true
		}
	}
	return 0, false
}
