package game

import "testing"

func TestLevelForExperience(t *testing.T) {
	tests := []struct {
		xp   int64
		want int32
	}{
		{xp: 0, want: 1},
		{xp: 99, want: 1},
		{xp: 100, want: 2},
		{xp: 399, want: 2},
		{xp: 400, want: 3},
		{xp: 240_100, want: 50},
		{xp: 240_099, want: 49},
		{xp: -5, want: 1},
	}
	for _, tc := range tests {
		got := LevelForExperience(tc.xp)
		if got != tc.want {
			t.Fatalf("xp=%d got=%d want=%d", tc.xp, got, tc.want)
		}
	}
}

func TestLevelBandBoundaries(t *testing.T) {
	// ExperienceForLevel must be the exact boundary: one point below it
	// holds the previous level, at it holds the level.
	for level := int32(2); level <= 200; level++ {
		floor := ExperienceForLevel(level)
		if got := LevelForExperience(floor); got != level {
			t.Fatalf("level %d: floor xp %d mapped to %d", level, floor, got)
		}
		if got := LevelForExperience(floor - 1); got != level-1 {
			t.Fatalf("level %d: xp %d mapped to %d, want %d", level, floor-1, got, level-1)
		}
	}
}

func TestLevelForExperienceLargeInput(t *testing.T) {
	// Large inputs exercise the isqrt correction loops.
	xp := int64(1) << 56
	level := LevelForExperience(xp)
	if floor := ExperienceForLevel(level); floor > xp {
		t.Fatalf("floor %d exceeds xp %d at level %d", floor, xp, level)
	}
	if next := ExperienceForLevel(level + 1); next <= xp {
		t.Fatalf("next band %d not above xp %d at level %d", next, xp, level)
	}
}

func TestPrestigeStatRecomputation(t *testing.T) {
	tests := []struct {
		prestige   int32
		clickPower int64
		autoIncome int64
	}{
		{prestige: 0, clickPower: 1 * MicrosPerCoin, autoIncome: 0},
		{prestige: 1, clickPower: 3 * MicrosPerCoin, autoIncome: 5 * MicrosPerCoin},
		{prestige: 4, clickPower: 9 * MicrosPerCoin, autoIncome: 20 * MicrosPerCoin},
	}
	for _, tc := range tests {
		if got := PrestigeClickPowerMicros(tc.prestige); got != tc.clickPower {
			t.Fatalf("prestige=%d click power got=%d want=%d", tc.prestige, got, tc.clickPower)
		}
		if got := PrestigeAutoIncomeMicros(tc.prestige); got != tc.autoIncome {
			t.Fatalf("prestige=%d auto income got=%d want=%d", tc.prestige, got, tc.autoIncome)
		}
	}
}

func TestPrestigePointsForLevel(t *testing.T) {
	tests := []struct {
		level int32
		want  int64
	}{
		{level: 50, want: 5},
		{level: 59, want: 5},
		{level: 60, want: 6},
		{level: 123, want: 12},
	}
	for _, tc := range tests {
		if got := PrestigePointsForLevel(tc.level); got != tc.want {
			t.Fatalf("level=%d got=%d want=%d", tc.level, got, tc.want)
		}
	}
}
