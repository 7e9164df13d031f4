package game

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Upgrade kinds. Click upgrades raise click_power_micros, auto upgrades
// raise auto_income_micros_per_hour.
const (
	UpgradeKindClick = "click"
	UpgradeKindAuto  = "auto"
)

// ListUpgrades returns the upgrade catalog with the caller's owned level
// and the cost of the next purchase. The cost shown here is computed by
// the same function PurchaseUpgrade charges with, so the preview is never
// stale relative to the curve.
func (s *Service) ListUpgrades(ctx context.Context, userID string) ([]UpgradeView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.name, u.icon, u.kind,
		       u.base_cost_micros, u.cost_multiplier, u.base_effect_micros, u.max_level,
		       COALESCE(au.level, 0)
		FROM game.upgrades u
		LEFT JOIN game.account_upgrades au ON au.upgrade_id = u.id AND au.user_id = $1
		ORDER BY u.base_cost_micros ASC, u.id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []UpgradeView{}
	for rows.Next() {
		var v UpgradeView
		if err := rows.Scan(&v.ID, &v.Name, &v.Icon, &v.Kind,
			&v.BaseCostMicros, &v.CostMultiplier, &v.BaseEffectMicros, &v.MaxLevel,
			&v.OwnedLevel); err != nil {
			return nil, err
		}
		v.Maxed = v.MaxLevel != nil && v.OwnedLevel >= *v.MaxLevel
		if !v.Maxed {
			v.CurrentCostMicros = UpgradeCost(v.BaseCostMicros, v.CostMultiplier, v.OwnedLevel)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// PurchaseUpgrade charges the level-dependent cost, bumps the owned level
// and applies the upgrade's effect to the account's stats, all in one
// transaction. The charge always equals the preview for the same owned
// level.
func (s *Service) PurchaseUpgrade(ctx context.Context, in PurchaseInput) (PurchaseResult, error) {
	var out PurchaseResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotencyTx(ctx, tx, in.UserID, in.IdempotencyKey, "purchase_upgrade"); err != nil {
			return err
		}

		var name, kind string
		var baseCost, baseEffect int64
		var multiplier float64
		var maxLevel *int32
		err := tx.QueryRow(ctx, `
			SELECT name, kind, base_cost_micros, cost_multiplier, base_effect_micros, max_level
			FROM game.upgrades
			WHERE id = $1
		`, in.DefinitionID).Scan(&name, &kind, &baseCost, &multiplier, &baseEffect, &maxLevel)
		if err != nil {
			if err == pgx.ErrNoRows {
				return ErrUpgradeNotFound
			}
			return err
		}

		var owned int32
		err = tx.QueryRow(ctx, `
			SELECT level FROM game.account_upgrades
			WHERE user_id = $1 AND upgrade_id = $2
			FOR UPDATE
		`, in.UserID, in.DefinitionID).Scan(&owned)
		if err != nil && err != pgx.ErrNoRows {
			return err
		}
		if maxLevel != nil && owned >= *maxLevel {
			return ErrMaxLevelReached
		}

		cost := UpgradeCost(baseCost, multiplier, owned)
		if err := debitTx(ctx, tx, in.UserID, cost, CategoryPurchase,
			fmt.Sprintf("Purchased %s (level %d)", name, owned+1)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.account_upgrades (user_id, upgrade_id, level)
			VALUES ($1, $2, 1)
			ON CONFLICT (user_id, upgrade_id) DO UPDATE
			SET level = game.account_upgrades.level + 1, updated_at = now()
		`, in.UserID, in.DefinitionID); err != nil {
			return err
		}

		statColumn := "click_power_micros"
		if kind == UpgradeKindAuto {
			statColumn = "auto_income_micros_per_hour"
		}
		if _, err := tx.Exec(ctx, `
			UPDATE game.accounts
			SET `+statColumn+` = `+statColumn+` + $1, updated_at = now()
			WHERE user_id = $2
		`, baseEffect, in.UserID); err != nil {
			return err
		}

		out.NewLevel = owned + 1
		out.CostMicros = cost
		if err := tx.QueryRow(ctx, `
			SELECT balance_micros FROM game.accounts WHERE user_id = $1
		`, in.UserID).Scan(&out.RemainingBalanceMicros); err != nil {
			return err
		}
		return s.evaluateAchievementsTx(ctx, tx, in.UserID)
	})
	return out, err
}

// ListBusinesses returns the business catalog with ownership, next-level
// cost and the caller's unlock state.
func (s *Service) ListBusinesses(ctx context.Context, userID string) ([]BusinessDefView, error) {
	var level int32
	err := s.db.QueryRow(ctx, `
		SELECT level FROM game.accounts WHERE user_id = $1
	`, userID).Scan(&level)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT b.id, b.name, b.icon,
		       b.base_cost_micros, b.cost_multiplier, b.base_income_micros,
		       b.unlock_level, b.income_interval_seconds,
		       COALESCE(ab.level, 0)
		FROM game.businesses b
		LEFT JOIN game.account_businesses ab ON ab.business_id = b.id AND ab.user_id = $1
		ORDER BY b.unlock_level ASC, b.base_cost_micros ASC, b.id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BusinessDefView{}
	for rows.Next() {
		var v BusinessDefView
		if err := rows.Scan(&v.ID, &v.Name, &v.Icon,
			&v.BaseCostMicros, &v.CostMultiplier, &v.BaseIncomeMicros,
			&v.UnlockLevel, &v.IncomeIntervalSecs,
			&v.OwnedLevel); err != nil {
			return nil, err
		}
		v.Unlocked = level >= v.UnlockLevel
		v.CurrentCostMicros = UpgradeCost(v.BaseCostMicros, v.CostMultiplier, v.OwnedLevel)
		v.CurrentIncomeMicros = BusinessIncomeMicros(v.BaseIncomeMicros, v.OwnedLevel)
		out = append(out, v)
	}
	return out, rows.Err()
}

// PurchaseBusiness buys or levels up a business. Purchases are gated on
// the account's level; a fresh purchase starts the collection timer at
// purchase time rather than granting an immediately collectible payout.
func (s *Service) PurchaseBusiness(ctx context.Context, in PurchaseInput) (PurchaseResult, error) {
	var out PurchaseResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotencyTx(ctx, tx, in.UserID, in.IdempotencyKey, "purchase_business"); err != nil {
			return err
		}

		var name string
		var baseCost, baseIncome int64
		var multiplier float64
		var unlockLevel int32
		err := tx.QueryRow(ctx, `
			SELECT name, base_cost_micros, cost_multiplier, base_income_micros, unlock_level
			FROM game.businesses
			WHERE id = $1
		`, in.DefinitionID).Scan(&name, &baseCost, &multiplier, &baseIncome, &unlockLevel)
		if err != nil {
			if err == pgx.ErrNoRows {
				return ErrBusinessNotFound
			}
			return err
		}

		var level int32
		err = tx.QueryRow(ctx, `
			SELECT level FROM game.accounts WHERE user_id = $1 FOR UPDATE
		`, in.UserID).Scan(&level)
		if err != nil {
			if err == pgx.ErrNoRows {
				return ErrAccountNotFound
			}
			return err
		}
		if level < unlockLevel {
			return &LockedByLevelError{RequiredLevel: unlockLevel}
		}

		var owned int32
		err = tx.QueryRow(ctx, `
			SELECT level FROM game.account_businesses
			WHERE user_id = $1 AND business_id = $2
			FOR UPDATE
		`, in.UserID, in.DefinitionID).Scan(&owned)
		if err != nil && err != pgx.ErrNoRows {
			return err
		}

		cost := UpgradeCost(baseCost, multiplier, owned)
		if err := debitTx(ctx, tx, in.UserID, cost, CategoryPurchase,
			fmt.Sprintf("Purchased %s (level %d)", name, owned+1)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.account_businesses (user_id, business_id, level, last_collected_at)
			VALUES ($1, $2, 1, now())
			ON CONFLICT (user_id, business_id) DO UPDATE
			SET level = game.account_businesses.level + 1, updated_at = now()
		`, in.UserID, in.DefinitionID); err != nil {
			return err
		}

		out.NewLevel = owned + 1
		out.CostMicros = cost
		out.IncomeMicros = BusinessIncomeMicros(baseIncome, owned+1)
		if err := tx.QueryRow(ctx, `
			SELECT balance_micros FROM game.accounts WHERE user_id = $1
		`, in.UserID).Scan(&out.RemainingBalanceMicros); err != nil {
			return err
		}
		return s.evaluateAchievementsTx(ctx, tx, in.UserID)
	})
	return out, err
}

// CollectBusinessIncome pays out one interval's income for an owned
// business. Collecting before the interval has elapsed fails with the
// remaining wait, and a successful collection restarts the timer, so the
// payout cannot be double-collected.
func (s *Service) CollectBusinessIncome(ctx context.Context, userID string, businessID int64) (CollectResult, error) {
	var out CollectResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var name string
		var baseIncome, intervalSecs int64
		var level int32
		var lastCollected time.Time
		err := tx.QueryRow(ctx, `
			SELECT b.name, b.base_income_micros, b.income_interval_seconds,
			       ab.level, ab.last_collected_at
			FROM game.account_businesses ab
			JOIN game.businesses b ON b.id = ab.business_id
			WHERE ab.user_id = $1 AND ab.business_id = $2
			FOR UPDATE OF ab
		`, userID, businessID).Scan(&name, &baseIncome, &intervalSecs, &level, &lastCollected)
		if err != nil {
			if err == pgx.ErrNoRows {
				return ErrBusinessNotOwned
			}
			return err
		}

		now := time.Now()
		remaining := CollectionRemaining(lastCollected, now, time.Duration(intervalSecs)*time.Second)
		if remaining > 0 {
			return &NotReadyError{RemainingSeconds: remainingSeconds(remaining)}
		}

		income := BusinessIncomeMicros(baseIncome, level)
		if err := creditTx(ctx, tx, userID, income, CategoryPassiveIncome,
			fmt.Sprintf("Income from %s", name)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE game.account_businesses
			SET last_collected_at = $1, updated_at = now()
			WHERE user_id = $2 AND business_id = $3
		`, now, userID, businessID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE game.accounts
			SET total_earned_micros = total_earned_micros + $1, updated_at = now()
			WHERE user_id = $2
		`, income, userID); err != nil {
			return err
		}

		out.IncomeMicros = income
		out.BusinessName = name
		if err := tx.QueryRow(ctx, `
			SELECT balance_micros FROM game.accounts WHERE user_id = $1
		`, userID).Scan(&out.BalanceMicros); err != nil {
			return err
		}
		return s.evaluateAchievementsTx(ctx, tx, userID)
	})
	return out, err
}

// BusinessStatus reports every owned business with its payout and timer
// state, for polling clients.
func (s *Service) BusinessStatus(ctx context.Context, userID string) ([]BusinessStatusRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT b.id, b.name, b.icon, ab.level,
		       b.base_income_micros, b.income_interval_seconds, ab.last_collected_at
		FROM game.account_businesses ab
		JOIN game.businesses b ON b.id = ab.business_id
		WHERE ab.user_id = $1
		ORDER BY b.id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	out := []BusinessStatusRow{}
	for rows.Next() {
		var r BusinessStatusRow
		var baseIncome, intervalSecs int64
		if err := rows.Scan(&r.BusinessID, &r.Name, &r.Icon, &r.Level,
			&baseIncome, &intervalSecs, &r.LastCollectedAt); err != nil {
			return nil, err
		}
		r.IncomeMicros = BusinessIncomeMicros(baseIncome, r.Level)
		remaining := CollectionRemaining(r.LastCollectedAt, now, time.Duration(intervalSecs)*time.Second)
		r.RemainingSeconds = remainingSeconds(remaining)
		r.ReadyToCollect = remaining == 0
		out = append(out, r)
	}
	return out, rows.Err()
}
