package game

import "testing"

func TestUpgradeCostBase(t *testing.T) {
	// Level 0 charges the base cost exactly.
	base := 50 * MicrosPerCoin
	if got := UpgradeCost(base, 1.15, 0); got != base {
		t.Fatalf("got %d want %d", got, base)
	}
}

func TestUpgradeCostRoundsToCent(t *testing.T) {
	// 50 * 1.15 = 57.50; 100 * 1.3^3 = 219.70.
	base := 50 * MicrosPerCoin
	if got, want := UpgradeCost(base, 1.15, 1), int64(5750)*MicrosPerCent; got != want {
		t.Fatalf("level 1: got %d want %d", got, want)
	}
	if got, want := UpgradeCost(100*MicrosPerCoin, 1.3, 3), int64(21970)*MicrosPerCent; got != want {
		t.Fatalf("mult 1.3 level 3: got %d want %d", got, want)
	}
	for level := int32(0); level <= 60; level++ {
		got := UpgradeCost(base, 1.15, level)
		if got%MicrosPerCent != 0 {
			t.Fatalf("level %d: cost %d not cent-aligned", level, got)
		}
	}
}

func TestUpgradeCostMonotonic(t *testing.T) {
	// Every shipped curve stays cent-aligned and non-decreasing through
	// level 50, strictly increasing until it pins at the cap.
	type curve struct {
		name string
		base int64
		mult float64
	}
	var curves []curve
	for _, u := range defaultUpgrades {
		curves = append(curves, curve{u.name, u.baseCost * MicrosPerCoin, u.multiplier})
	}
	for _, b := range defaultBusinesses {
		curves = append(curves, curve{b.name, b.baseCost * MicrosPerCoin, b.multiplier})
	}
	for _, c := range curves {
		prev := int64(0)
		for level := int32(0); level <= 50; level++ {
			got := UpgradeCost(c.base, c.mult, level)
			if got%MicrosPerCent != 0 {
				t.Fatalf("%s level %d: cost %d not cent-aligned", c.name, level, got)
			}
			if got < prev {
				t.Fatalf("%s level %d: cost %d below previous %d", c.name, level, got, prev)
			}
			if got == prev && got != MaxCostMicros {
				t.Fatalf("%s level %d: cost %d did not increase", c.name, level, got)
			}
			prev = got
		}
	}
}

func TestUpgradeCostSaturatesInsteadOfWrapping(t *testing.T) {
	// 4M coins at 1.5x outgrows int64 micros near level 37; past that
	// point the curve pins at the cap rather than going negative.
	base := int64(4_000_000) * MicrosPerCoin
	below := UpgradeCost(base, 1.5, 36)
	if below <= 0 || below >= MaxCostMicros {
		t.Fatalf("level 36: cost %d outside the representable range", below)
	}
	if got := UpgradeCost(base, 1.5, 37); got != MaxCostMicros {
		t.Fatalf("level 37: got %d want cap %d", got, MaxCostMicros)
	}
	if got := UpgradeCost(base, 1.5, 200); got != MaxCostMicros {
		t.Fatalf("level 200: got %d want cap %d", got, MaxCostMicros)
	}
}

func TestUpgradeCostNegativeLevel(t *testing.T) {
	base := 100 * MicrosPerCoin
	if got := UpgradeCost(base, 1.3, -3); got != base {
		t.Fatalf("got %d want %d", got, base)
	}
}

func TestBusinessIncomeMicros(t *testing.T) {
	base := 25 * MicrosPerCoin
	tests := []struct {
		level int32
		want  int64
	}{
		{level: 0, want: 0},
		{level: 1, want: base},
		{level: 7, want: 7 * base},
		{level: -1, want: 0},
	}
	for _, tc := range tests {
		if got := BusinessIncomeMicros(base, tc.level); got != tc.want {
			t.Fatalf("level=%d got=%d want=%d", tc.level, got, tc.want)
		}
	}
}
