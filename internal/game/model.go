package game

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"
)

const (
	// MicrosPerCoin is the fixed-point scale for all currency amounts.
	MicrosPerCoin = int64(1_000_000)
	// MicrosPerCent is the smallest unit the cost curve rounds to.
	MicrosPerCent = MicrosPerCoin / 100

	StarterBalanceMicros    = 100 * MicrosPerCoin
	StarterClickPowerMicros = 1 * MicrosPerCoin

	// PrestigeStartMicros is the fixed balance an account restarts with
	// after a prestige reset.
	PrestigeStartMicros = 1000 * MicrosPerCoin

	// MaxClicksPerRequest bounds a single click batch.
	MaxClicksPerRequest = int64(50)
)

// MinPrestigeLevel is the account level required to prestige.
const MinPrestigeLevel = int32(50)

// MaxIdleWindow bounds offline passive income accrual.
const MaxIdleWindow = 24 * time.Hour

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrUpgradeNotFound      = errors.New("upgrade not found")
	ErrBusinessNotFound     = errors.New("business not found")
	ErrBusinessNotOwned     = errors.New("business not owned")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrSelfTransfer         = errors.New("cannot transfer to yourself")
	ErrMaxLevelReached      = errors.New("maximum level reached")
	ErrLockedByLevel        = errors.New("locked by level")
	ErrNotReady             = errors.New("income not ready")
	ErrPrestigeIneligible   = errors.New("prestige ineligible")
	ErrDuplicateIdempotency = errors.New("duplicate idempotency key")
	ErrTxConflict           = errors.New("transaction conflict, retry")
)

// NotReadyError reports how long until a business can be collected again.
type NotReadyError struct {
	RemainingSeconds int64
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("income not ready: %ds remaining", e.RemainingSeconds)
}

func (e *NotReadyError) Unwrap() error { return ErrNotReady }

// LockedByLevelError reports the account level a business unlocks at.
type LockedByLevelError struct {
	RequiredLevel int32
}

func (e *LockedByLevelError) Error() string {
	return fmt.Sprintf("locked by level: unlocks at level %d", e.RequiredLevel)
}

func (e *LockedByLevelError) Unwrap() error { return ErrLockedByLevel }

// PrestigeIneligibleError reports the minimum level required to prestige.
type PrestigeIneligibleError struct {
	RequiredLevel int32
}

func (e *PrestigeIneligibleError) Error() string {
	return fmt.Sprintf("prestige ineligible: minimum level %d required", e.RequiredLevel)
}

func (e *PrestigeIneligibleError) Unwrap() error { return ErrPrestigeIneligible }

func CoinsToMicros(v float64) int64 {
	return int64(math.Round(v * float64(MicrosPerCoin)))
}

func MicrosToCoins(v int64) float64 {
	return float64(v) / float64(MicrosPerCoin)
}

// mulMicros multiplies an amount by a count with overflow detection.
func mulMicros(amountMicros, count int64) (int64, error) {
	v := new(big.Int).Mul(big.NewInt(amountMicros), big.NewInt(count))
	if !v.IsInt64() {
		return 0, fmt.Errorf("amount overflow")
	}
	return v.Int64(), nil
}
