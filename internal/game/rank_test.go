package game

import "testing"

func rankFixtures() []Snapshot {
	return []Snapshot{
		{UserID: "u1", Username: "ada", BalanceMicros: 500 * MicrosPerCoin, Level: 12, Experience: 13_000, PrestigeLevel: 0, TotalClicks: 9_000, TotalEarnedMicros: 2_000 * MicrosPerCoin},
		{UserID: "u2", Username: "bob", BalanceMicros: 500 * MicrosPerCoin, Level: 12, Experience: 12_500, PrestigeLevel: 1, PrestigePoints: 5, TotalClicks: 9_000, TotalEarnedMicros: 3_000 * MicrosPerCoin},
		{UserID: "u3", Username: "cyn", BalanceMicros: 9_000 * MicrosPerCoin, Level: 30, Experience: 85_000, PrestigeLevel: 1, PrestigePoints: 5, TotalClicks: 40_000, TotalEarnedMicros: 20_000 * MicrosPerCoin},
		{UserID: "u4", Username: "dee", BalanceMicros: 100 * MicrosPerCoin, Level: 3, Experience: 500, TotalClicks: 500, TotalEarnedMicros: 120 * MicrosPerCoin},
	}
}

func TestRankByCoins(t *testing.T) {
	rows, rank := Rank(MetricCoins, rankFixtures(), 10, "u4")
	if len(rows) != 4 {
		t.Fatalf("got %d rows want 4", len(rows))
	}
	// u1 and u2 tie on balance; u2 wins on lifetime earnings.
	wantOrder := []string{"u3", "u2", "u1", "u4"}
	for i, want := range wantOrder {
		if rows[i].UserID != want {
			t.Fatalf("position %d: got %s want %s", i, rows[i].UserID, want)
		}
		if rows[i].Rank != int64(i)+1 {
			t.Fatalf("position %d: rank %d", i, rows[i].Rank)
		}
	}
	if rank != 4 {
		t.Fatalf("requester rank got %d want 4", rank)
	}
}

func TestRankTieBreakByUserID(t *testing.T) {
	// Fully identical stats must still order deterministically.
	snaps := []Snapshot{
		{UserID: "zz", BalanceMicros: 100},
		{UserID: "aa", BalanceMicros: 100},
	}
	for i := 0; i < 5; i++ {
		rows, _ := Rank(MetricCoins, snaps, 10, "")
		if rows[0].UserID != "aa" || rows[1].UserID != "zz" {
			t.Fatalf("iteration %d: got %s,%s", i, rows[0].UserID, rows[1].UserID)
		}
	}
}

func TestRankRequesterOutsideWindow(t *testing.T) {
	rows, rank := Rank(MetricLevel, rankFixtures(), 2, "u4")
	if len(rows) != 2 {
		t.Fatalf("got %d rows want 2", len(rows))
	}
	if rank != 4 {
		t.Fatalf("requester rank got %d want 4", rank)
	}
}

func TestRankUnknownRequester(t *testing.T) {
	_, rank := Rank(MetricClicks, rankFixtures(), 10, "nobody")
	if rank != 0 {
		t.Fatalf("got rank %d want 0", rank)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	snaps := rankFixtures()
	first := snaps[0].UserID
	Rank(MetricPrestige, snaps, 10, "")
	if snaps[0].UserID != first {
		t.Fatalf("input slice reordered")
	}
}

func TestRankByPrestige(t *testing.T) {
	rows, _ := Rank(MetricPrestige, rankFixtures(), 10, "")
	// u2 and u3 tie on prestige level and points; user id breaks the tie.
	if rows[0].UserID != "u2" || rows[1].UserID != "u3" {
		t.Fatalf("got %s,%s want u2,u3", rows[0].UserID, rows[1].UserID)
	}
}

func TestParseMetric(t *testing.T) {
	if m, err := ParseMetric(" Coins "); err != nil || m != MetricCoins {
		t.Fatalf("got %v %v", m, err)
	}
	if _, err := ParseMetric("wealth"); err == nil {
		t.Fatalf("expected unknown metric to fail")
	}
}
