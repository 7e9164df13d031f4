package game

import "math"

// LevelForExperience maps accumulated experience to a level:
// floor(sqrt(xp/100)) + 1. Level bands widen quadratically, so level L
// spans 100*(L^2-(L-1)^2) experience points.
func LevelForExperience(xp int64) int32 {
	if xp < 0 {
		return 1
	}
	return int32(isqrt(xp/100)) + 1
}

// ExperienceForLevel is the inverse band boundary: the minimum experience
// at which an account holds the given level.
func ExperienceForLevel(level int32) int64 {
	if level <= 1 {
		return 0
	}
	l := int64(level - 1)
	return 100 * l * l
}

// PrestigeClickPowerMicros recomputes click power from scratch for a
// freshly prestiged account: 1 + 2*prestigeLevel coins per click.
func PrestigeClickPowerMicros(prestigeLevel int32) int64 {
	return (1 + 2*int64(prestigeLevel)) * MicrosPerCoin
}

// PrestigeAutoIncomeMicros recomputes the passive rate for a freshly
// prestiged account: 5*prestigeLevel coins per hour.
func PrestigeAutoIncomeMicros(prestigeLevel int32) int64 {
	return 5 * int64(prestigeLevel) * MicrosPerCoin
}

// PrestigePointsForLevel is the points granted for prestiging at a level.
func PrestigePointsForLevel(level int32) int64 {
	return int64(level / 10)
}

// isqrt is an exact integer square root. math.Sqrt alone can land one off
// at band boundaries for large inputs, which would mistime level-ups.
func isqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	r := int64(math.Sqrt(float64(n)))
	for r > 0 && r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
