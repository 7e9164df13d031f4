package game

import (
	"math"
	"math/big"
	"time"
)

// IdleEarningsMicros computes passive income accrued between lastSettled
// and now, clamped to the accrual window. The earned amount is
// floor(ratePerHour * elapsedSeconds / 3600) in micros. Returns the
// clamped elapsed duration alongside the amount.
func IdleEarningsMicros(ratePerHourMicros int64, lastSettled, now time.Time, window time.Duration) (int64, time.Duration) {
	if ratePerHourMicros <= 0 {
		return 0, 0
	}
	elapsed := now.Sub(lastSettled)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > window {
		elapsed = window
	}
	seconds := int64(elapsed / time.Second)
	if seconds <= 0 {
		return 0, elapsed
	}
	v := new(big.Int).Mul(big.NewInt(ratePerHourMicros), big.NewInt(seconds))
	v.Div(v, big.NewInt(3600))
	if !v.IsInt64() {
		// Rate high enough to overflow int64 micros; cap rather than wrap.
		return int64(1<<63 - 1), elapsed
	}
	return v.Int64(), elapsed
}

// CollectionRemaining reports how long until a business with the given
// income interval can be collected again. Zero means ready now.
func CollectionRemaining(lastCollected, now time.Time, interval time.Duration) time.Duration {
	readyAt := lastCollected.Add(interval)
	if !now.Before(readyAt) {
		return 0
	}
	return readyAt.Sub(now)
}

// remainingSeconds converts a wait into whole seconds for display. Exact
// second boundaries pass through unchanged, fractional remainders round
// up so the wait is never under-reported.
func remainingSeconds(d time.Duration) int64 {
	return int64(math.Ceil(d.Seconds()))
}
