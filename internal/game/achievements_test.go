package game

import "testing"

func TestAchievementMet(t *testing.T) {
	p := achievementProgress{
		TotalClicks:       1_000,
		TotalEarnedMicros: 5_000 * MicrosPerCoin,
		Level:             25,
		PrestigeLevel:     1,
	}
	tests := []struct {
		metric    string
		threshold int64
		want      bool
	}{
		{AchievementMetricClicks, 1_000, true},
		{AchievementMetricClicks, 1_001, false},
		{AchievementMetricCoins, 5_000, true},
		{AchievementMetricCoins, 5_001, false},
		{AchievementMetricLevel, 25, true},
		{AchievementMetricLevel, 26, false},
		{AchievementMetricPrestige, 1, true},
		{AchievementMetricPrestige, 2, false},
		{"unknown", 0, false},
	}
	for _, tc := range tests {
		got := achievementMet(tc.metric, tc.threshold, p)
		if got != tc.want {
			t.Fatalf("metric=%s threshold=%d got=%v want=%v", tc.metric, tc.threshold, got, tc.want)
		}
	}
}

func TestAchievementCoinsUseLifetimeEarnings(t *testing.T) {
	// Spending everything must not revoke a coins achievement: the check
	// reads lifetime earnings, not the current balance.
	p := achievementProgress{TotalEarnedMicros: 1_000 * MicrosPerCoin}
	if !achievementMet(AchievementMetricCoins, 1_000, p) {
		t.Fatalf("expected lifetime earnings to satisfy threshold")
	}
}

func TestDefaultAchievementCatalogMetrics(t *testing.T) {
	for _, a := range defaultAchievements {
		switch a.metric {
		case AchievementMetricClicks, AchievementMetricCoins, AchievementMetricLevel, AchievementMetricPrestige:
		default:
			t.Fatalf("achievement %q has unknown metric %q", a.name, a.metric)
		}
		if a.threshold <= 0 {
			t.Fatalf("achievement %q has non-positive threshold", a.name)
		}
	}
}
