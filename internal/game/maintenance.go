package game

import (
	"context"
	"time"
)

// PruneIdempotencyKeys deletes claimed keys older than the retention
// window. Keys only guard against short-horizon retries, so old rows are
// pure bloat.
func (s *Service) PruneIdempotencyKeys(ctx context.Context, olderThan time.Duration) (int64, error) {
	cmd, err := s.db.Exec(ctx, `
		DELETE FROM game.idempotency_keys
		WHERE created_at < $1
	`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// SnapshotEconomyStats appends one row of economy-wide aggregates for
// trend dashboards.
func (s *Service) SnapshotEconomyStats(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO game.economy_stats
		    (total_players, total_balance_micros, total_earned_micros, total_clicks, max_prestige_level)
		SELECT COUNT(*),
		       COALESCE(SUM(balance_micros), 0),
		       COALESCE(SUM(total_earned_micros), 0),
		       COALESCE(SUM(total_clicks), 0),
		       COALESCE(MAX(prestige_level), 0)
		FROM game.accounts
	`)
	return err
}
