package game

import "context"

// Leaderboard ranks all accounts by the given metric. Ordering is pure
// and deterministic: identical snapshots always produce identical rows,
// and the requester's rank is reported even when they fall outside the
// returned window.
func (s *Service) Leaderboard(ctx context.Context, metric Metric, limit int, requesterID string) (LeaderboardResult, error) {
	out := LeaderboardResult{Metric: metric, Rows: []RankedRow{}}
	rows, err := s.db.Query(ctx, `
		SELECT a.user_id, p.username, a.balance_micros, a.level, a.experience,
		       a.prestige_level, a.prestige_points, a.total_clicks, a.total_earned_micros
		FROM game.accounts a
		JOIN users.profiles p ON p.user_id = a.user_id
	`)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var sn Snapshot
		if err := rows.Scan(&sn.UserID, &sn.Username, &sn.BalanceMicros, &sn.Level, &sn.Experience,
			&sn.PrestigeLevel, &sn.PrestigePoints, &sn.TotalClicks, &sn.TotalEarnedMicros); err != nil {
			return out, err
		}
		snaps = append(snaps, sn)
	}
	if err := rows.Err(); err != nil {
		return out, err
	}

	out.Rows, out.RequesterRank = Rank(metric, snaps, limit, requesterID)
	return out, nil
}

// GlobalStats aggregates economy-wide figures for the stats endpoint.
func (s *Service) LeaderboardStats(ctx context.Context) (LeaderboardStats, error) {
	var out LeaderboardStats
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(MAX(balance_micros), 0),
		       COALESCE(MAX(level), 0),
		       COALESCE(MAX(prestige_level), 0),
		       COALESCE(MAX(total_clicks), 0),
		       COALESCE(SUM(balance_micros), 0)
		FROM game.accounts
	`).Scan(&out.TotalPlayers, &out.HighestBalanceMicros, &out.HighestLevel,
		&out.HighestPrestige, &out.MostClicks, &out.TotalBalanceMicros)
	return out, err
}
