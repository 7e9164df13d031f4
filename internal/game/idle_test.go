package game

import (
	"testing"
	"time"
)

func TestIdleEarningsBasic(t *testing.T) {
	rate := 10 * MicrosPerCoin // 10 coins/hour
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	earned, elapsed := IdleEarningsMicros(rate, base, base.Add(time.Hour), MaxIdleWindow)
	if earned != rate {
		t.Fatalf("one hour: got %d want %d", earned, rate)
	}
	if elapsed != time.Hour {
		t.Fatalf("elapsed got %v want %v", elapsed, time.Hour)
	}

	earned, _ = IdleEarningsMicros(rate, base, base.Add(30*time.Minute), MaxIdleWindow)
	if earned != rate/2 {
		t.Fatalf("half hour: got %d want %d", earned, rate/2)
	}
}

func TestIdleEarningsCappedAtWindow(t *testing.T) {
	rate := 5 * MicrosPerCoin
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	capped, elapsed := IdleEarningsMicros(rate, base, base.Add(1000*time.Hour), MaxIdleWindow)
	atCap, _ := IdleEarningsMicros(rate, base, base.Add(24*time.Hour), MaxIdleWindow)
	if capped != atCap {
		t.Fatalf("1000h earned %d, 24h earned %d; want equal", capped, atCap)
	}
	if elapsed != MaxIdleWindow {
		t.Fatalf("elapsed got %v want %v", elapsed, MaxIdleWindow)
	}
}

func TestIdleEarningsZeroCases(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// No passive rate yet.
	if earned, _ := IdleEarningsMicros(0, base, base.Add(10*time.Hour), MaxIdleWindow); earned != 0 {
		t.Fatalf("zero rate earned %d", earned)
	}
	// Settled just now: a second immediate collect yields nothing.
	if earned, _ := IdleEarningsMicros(5*MicrosPerCoin, base, base, MaxIdleWindow); earned != 0 {
		t.Fatalf("immediate recollect earned %d", earned)
	}
	// Clock skew: lastSettled in the future must not go negative.
	if earned, _ := IdleEarningsMicros(5*MicrosPerCoin, base.Add(time.Hour), base, MaxIdleWindow); earned != 0 {
		t.Fatalf("future settle earned %d", earned)
	}
}

func TestIdleEarningsFloors(t *testing.T) {
	// 1 coin/hour for 1 second = 1000000/3600 micros, floored to 277.
	earned, _ := IdleEarningsMicros(MicrosPerCoin,
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 12, 0, 1, 0, time.UTC),
		MaxIdleWindow)
	if earned != 277 {
		t.Fatalf("got %d want 277", earned)
	}
}

func TestCollectionRemaining(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	interval := 5 * time.Minute

	if got := CollectionRemaining(base, base.Add(interval), interval); got != 0 {
		t.Fatalf("exact interval: got %v want 0", got)
	}
	if got := CollectionRemaining(base, base.Add(time.Hour), interval); got != 0 {
		t.Fatalf("past due: got %v want 0", got)
	}
	if got := CollectionRemaining(base, base.Add(2*time.Minute), interval); got != 3*time.Minute {
		t.Fatalf("got %v want %v", got, 3*time.Minute)
	}
}

func TestRemainingSeconds(t *testing.T) {
	// Halfway through an hourly interval the wait is exactly 1800s; a
	// whole-second remainder must not be inflated to 1801.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	remaining := CollectionRemaining(base, base.Add(30*time.Minute), time.Hour)
	if got := remainingSeconds(remaining); got != 1800 {
		t.Fatalf("whole boundary: got %d want 1800", got)
	}
	if got := remainingSeconds(remaining - 500*time.Millisecond); got != 1800 {
		t.Fatalf("fractional: got %d want 1800", got)
	}
	if got := remainingSeconds(time.Millisecond); got != 1 {
		t.Fatalf("sub-second: got %d want 1", got)
	}
	if got := remainingSeconds(0); got != 0 {
		t.Fatalf("zero: got %d want 0", got)
	}
}
