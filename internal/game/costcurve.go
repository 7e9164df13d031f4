package game

import (
	"math"
	"math/big"
)

// MaxCostMicros is the largest cent-aligned price the curve can produce.
// Steep curves saturate here instead of wrapping, so the cost stays
// non-decreasing and an out-of-range item is simply unaffordable.
const MaxCostMicros = math.MaxInt64 - math.MaxInt64%MicrosPerCent

// UpgradeCost prices the next level of an upgrade or business:
// baseCost * multiplier^ownedLevel, rounded half-up to the cent.
// Both the list previews and the purchase path charge through this one
// function, so a previewed cost always equals the debited cost.
func UpgradeCost(baseCostMicros int64, multiplier float64, ownedLevel int32) int64 {
	if ownedLevel < 0 {
		ownedLevel = 0
	}
	factor := math.Pow(multiplier, float64(ownedLevel))
	if math.IsInf(factor, 1) {
		return MaxCostMicros
	}
	raw := new(big.Float).Mul(new(big.Float).SetInt64(baseCostMicros), big.NewFloat(factor))
	return roundHalfUpToCent(raw)
}

// BusinessIncomeMicros is the payout of one collection cycle at a level.
func BusinessIncomeMicros(baseIncomeMicros int64, level int32) int64 {
	if level <= 0 {
		return 0
	}
	return baseIncomeMicros * int64(level)
}

func roundHalfUpToCent(micros *big.Float) int64 {
	cents := new(big.Float).Quo(micros, big.NewFloat(float64(MicrosPerCent)))
	cents.Add(cents, big.NewFloat(0.5))
	whole, _ := cents.Int(nil)
	whole.Mul(whole, big.NewInt(MicrosPerCent))
	if !whole.IsInt64() {
		return MaxCostMicros
	}
	return whole.Int64()
}
