package game

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type upgradeSeed struct {
	name       string
	icon       string
	kind       string
	baseCost   int64 // whole coins
	multiplier float64
	baseEffect int64 // whole coins
	maxLevel   *int32
}

type businessSeed struct {
	name         string
	icon         string
	baseCost     int64 // whole coins
	multiplier   float64
	baseIncome   int64 // whole coins
	unlockLevel  int32
	intervalSecs int64
}

type achievementSeed struct {
	name        string
	icon        string
	metric      string
	threshold   int64
	rewardCoins int64
	rewardGems  int64
}

func lvl(n int32) *int32 { return &n }

var defaultUpgrades = []upgradeSeed{
	{"Sharper Cursor", "👆", UpgradeKindClick, 50, 1.15, 1, nil},
	{"Steel Finger", "🦾", UpgradeKindClick, 500, 1.20, 5, nil},
	{"Golden Touch", "✨", UpgradeKindClick, 5_000, 1.25, 25, nil},
	{"Midas Glove", "🧤", UpgradeKindClick, 75_000, 1.30, 150, lvl(50)},
	{"Coin Magnet", "🧲", UpgradeKindAuto, 200, 1.18, 10, nil},
	{"Mining Rig", "⛏️", UpgradeKindAuto, 2_500, 1.22, 60, nil},
	{"Print Shop", "🖨️", UpgradeKindAuto, 30_000, 1.28, 400, nil},
	{"Orbital Vault", "🛰️", UpgradeKindAuto, 250_000, 1.35, 2_000, lvl(25)},
}

var defaultBusinesses = []businessSeed{
	{"Lemonade Stand", "🍋", 100, 1.30, 25, 1, 60},
	{"Food Truck", "🚚", 1_500, 1.32, 200, 5, 300},
	{"Arcade", "🕹️", 12_000, 1.35, 1_100, 10, 900},
	{"Bank Branch", "🏦", 90_000, 1.38, 6_000, 20, 1_800},
	{"Tech Startup", "💻", 600_000, 1.42, 30_000, 35, 3_600},
	{"Space Program", "🚀", 4_000_000, 1.50, 150_000, 50, 7_200},
}

var defaultAchievements = []achievementSeed{
	{"First Steps", "👶", AchievementMetricClicks, 100, 50, 0},
	{"Click Apprentice", "🖱️", AchievementMetricClicks, 1_000, 250, 1},
	{"Click Machine", "⚙️", AchievementMetricClicks, 10_000, 2_000, 5},
	{"Carpal Tunnel", "🤕", AchievementMetricClicks, 100_000, 20_000, 25},
	{"Pocket Change", "🪙", AchievementMetricCoins, 1_000, 100, 0},
	{"Small Fortune", "💰", AchievementMetricCoins, 100_000, 5_000, 5},
	{"Millionaire", "🤑", AchievementMetricCoins, 1_000_000, 50_000, 20},
	{"Getting Somewhere", "📈", AchievementMetricLevel, 10, 500, 1},
	{"Seasoned Clicker", "🎖️", AchievementMetricLevel, 25, 2_500, 5},
	{"Summit", "🏔️", AchievementMetricLevel, 50, 10_000, 15},
	{"Born Again", "🔄", AchievementMetricPrestige, 1, 5_000, 10},
	{"Eternal Return", "♾️", AchievementMetricPrestige, 5, 50_000, 50},
}

// SeedDefaults loads the catalog tables on first boot. It is a no-op
// when any catalog rows already exist, so operators can edit the tables
// without redeploys clobbering their changes.
func (s *Service) SeedDefaults(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var count int64
	if err := tx.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM game.upgrades)
		     + (SELECT COUNT(*) FROM game.businesses)
		     + (SELECT COUNT(*) FROM game.achievements)
	`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, u := range defaultUpgrades {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.upgrades
			    (name, icon, kind, base_cost_micros, cost_multiplier, base_effect_micros, max_level)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, u.name, u.icon, u.kind, u.baseCost*MicrosPerCoin, u.multiplier,
			u.baseEffect*MicrosPerCoin, u.maxLevel); err != nil {
			return err
		}
	}
	for _, b := range defaultBusinesses {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.businesses
			    (name, icon, base_cost_micros, cost_multiplier, base_income_micros,
			     unlock_level, income_interval_seconds)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, b.name, b.icon, b.baseCost*MicrosPerCoin, b.multiplier,
			b.baseIncome*MicrosPerCoin, b.unlockLevel, b.intervalSecs); err != nil {
			return err
		}
	}
	for _, a := range defaultAchievements {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game.achievements
			    (name, icon, metric, threshold, reward_coins_micros, reward_gems)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, a.name, a.icon, a.metric, a.threshold, a.rewardCoins*MicrosPerCoin, a.rewardGems); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.log.Info("seeded default catalog",
		"upgrades", len(defaultUpgrades),
		"businesses", len(defaultBusinesses),
		"achievements", len(defaultAchievements))
	return nil
}
