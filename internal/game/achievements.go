package game

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Achievement metrics. Thresholds compare against the account snapshot:
// clicks against total_clicks, coins against total_earned_micros, level
// against the current level, prestige against prestige_level.
const (
	AchievementMetricClicks   = "clicks"
	AchievementMetricCoins    = "coins"
	AchievementMetricLevel    = "level"
	AchievementMetricPrestige = "prestige"
)

type achievementProgress struct {
	TotalClicks       int64
	TotalEarnedMicros int64
	Level             int32
	PrestigeLevel     int32
}

// achievementMet reports whether a threshold is satisfied by the
// snapshot. Coin thresholds are stored in whole coins and compared
// against lifetime earnings, so spending never revokes an achievement.
func achievementMet(metric string, threshold int64, p achievementProgress) bool {
	switch metric {
	case AchievementMetricClicks:
		return p.TotalClicks >= threshold
	case AchievementMetricCoins:
		return p.TotalEarnedMicros >= threshold*MicrosPerCoin
	case AchievementMetricLevel:
		return int64(p.Level) >= threshold
	case AchievementMetricPrestige:
		return int64(p.PrestigeLevel) >= threshold
	default:
		return false
	}
}

// evaluateAchievementsTx grants every unearned achievement whose
// threshold the account now meets, crediting rewards inside the caller's
// transaction. A single pass: rewards granted here do not re-trigger
// evaluation within the same call, the next mutation picks them up.
func (s *Service) evaluateAchievementsTx(ctx context.Context, tx pgx.Tx, userID string) error {
	var p achievementProgress
	err := tx.QueryRow(ctx, `
		SELECT total_clicks, total_earned_micros, level, prestige_level
		FROM game.accounts
		WHERE user_id = $1
	`, userID).Scan(&p.TotalClicks, &p.TotalEarnedMicros, &p.Level, &p.PrestigeLevel)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrAccountNotFound
		}
		return err
	}

	rows, err := tx.Query(ctx, `
		SELECT a.id, a.name, a.metric, a.threshold, a.reward_coins_micros, a.reward_gems
		FROM game.achievements a
		WHERE NOT EXISTS (
		    SELECT 1 FROM game.account_achievements aa
		    WHERE aa.user_id = $1 AND aa.achievement_id = a.id
		)
		ORDER BY a.id ASC
	`, userID)
	if err != nil {
		return err
	}

	type grant struct {
		id                int64
		name              string
		rewardCoinsMicros int64
		rewardGems        int64
	}
	var grants []grant
	for rows.Next() {
		var g grant
		var metric string
		var threshold int64
		if err := rows.Scan(&g.id, &g.name, &metric, &threshold, &g.rewardCoinsMicros, &g.rewardGems); err != nil {
			rows.Close()
			return err
		}
		if achievementMet(metric, threshold, p) {
			grants = append(grants, g)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, g := range grants {
		cmd, err := tx.Exec(ctx, `
			INSERT INTO game.account_achievements (user_id, achievement_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, achievement_id) DO NOTHING
		`, userID, g.id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			continue
		}
		if g.rewardCoinsMicros > 0 {
			if err := creditTx(ctx, tx, userID, g.rewardCoinsMicros, CategoryReward,
				fmt.Sprintf("Achievement unlocked: %s", g.name)); err != nil {
				return err
			}
		}
		if g.rewardGems > 0 {
			if _, err := tx.Exec(ctx, `
				UPDATE game.accounts
				SET gems = gems + $1, updated_at = now()
				WHERE user_id = $2
			`, g.rewardGems, userID); err != nil {
				return err
			}
		}
		s.log.Info("achievement unlocked", "user", userID, "achievement", g.name)
	}
	return nil
}

// ListAchievements returns the full catalog annotated with the caller's
// earned state.
func (s *Service) ListAchievements(ctx context.Context, userID string) ([]AchievementView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.name, a.icon, a.metric, a.threshold,
		       a.reward_coins_micros, a.reward_gems, aa.earned_at
		FROM game.achievements a
		LEFT JOIN game.account_achievements aa
		    ON aa.achievement_id = a.id AND aa.user_id = $1
		ORDER BY a.metric ASC, a.threshold ASC, a.id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AchievementView{}
	for rows.Next() {
		var v AchievementView
		if err := rows.Scan(&v.ID, &v.Name, &v.Icon, &v.Metric, &v.Threshold,
			&v.RewardCoinsMicros, &v.RewardGems, &v.EarnedAt); err != nil {
			return nil, err
		}
		v.Earned = v.EarnedAt != nil
		out = append(out, v)
	}
	return out, rows.Err()
}
