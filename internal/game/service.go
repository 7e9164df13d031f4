package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_]{3,24}$`)

// Service is the economy engine. Every operation is one database
// transaction: it reads account state under row locks, computes the pure
// result, and commits balance, log and stat changes as a single unit.
type Service struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewService(db *pgxpool.Pool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, log: logger}
}

// inTx runs fn inside a serializable transaction, retrying the whole unit
// on serialization conflicts. fn must not commit; a nil return commits.
func (s *Service) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	const maxAttempts = 8
	retryDelay := 75 * time.Millisecond
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return err
		}
		err = func() error {
			defer tx.Rollback(ctx)
			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}()
		if err == nil {
			return nil
		}
		if !isSerializationError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			return ErrTxConflict
		}
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return err
		}
		if retryDelay < 1200*time.Millisecond {
			retryDelay *= 2
		}
	}
	return ErrTxConflict
}

// EnsureAccount creates the profile and account rows on first
// authenticated contact. Safe to call on every login.
func (s *Service) EnsureAccount(ctx context.Context, userID, email, username string) error {
	username = strings.TrimSpace(username)
	if username == "" || !usernameRE.MatchString(username) {
		username = usernameFromEmail(email)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO users.profiles (user_id, email, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, email, username); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO game.accounts
		    (user_id, balance_micros, click_power_micros, last_settled_at)
		VALUES
		    ($1, $2, $3, now())
		ON CONFLICT (user_id) DO NOTHING
	`, userID, StarterBalanceMicros, StarterClickPowerMicros); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Profile returns the full account snapshot. Pending idle income is
// previewed here without settling; CollectIdleIncome commits it.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	var out Profile
	out.UserID = userID
	err := s.db.QueryRow(ctx, `
		SELECT p.username, a.balance_micros, a.gems, a.level, a.experience,
		       a.click_power_micros, a.auto_income_micros_per_hour,
		       a.prestige_level, a.prestige_points,
		       a.total_clicks, a.total_earned_micros,
		       a.last_settled_at, a.created_at
		FROM game.accounts a
		JOIN users.profiles p ON p.user_id = a.user_id
		WHERE a.user_id = $1
	`, userID).Scan(
		&out.Username, &out.BalanceMicros, &out.Gems, &out.Level, &out.Experience,
		&out.ClickPowerMicros, &out.AutoIncomeMicros,
		&out.PrestigeLevel, &out.PrestigePoints,
		&out.TotalClicks, &out.TotalEarnedMicros,
		&out.LastSettledAt, &out.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return out, ErrAccountNotFound
		}
		return out, err
	}
	out.NextLevelAt = ExperienceForLevel(out.Level + 1)
	out.PendingIdleMicros, _ = IdleEarningsMicros(out.AutoIncomeMicros, out.LastSettledAt, time.Now(), MaxIdleWindow)

	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM game.account_achievements WHERE user_id = $1
	`, userID).Scan(&out.AchievementCount); err != nil {
		return out, err
	}
	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM game.account_businesses WHERE user_id = $1 AND level > 0
	`, userID).Scan(&out.BusinessCount); err != nil {
		return out, err
	}
	return out, nil
}

// Click settles a batch of manual clicks: credits click income, advances
// experience and lifetime totals, recomputes the level, and evaluates
// achievements — all in one atomic unit. The level is never incremented
// directly; it is recomputed from experience and a level-up is surfaced
// when the recomputed value exceeds the stored one.
func (s *Service) Click(ctx context.Context, in ClickInput) (ClickResult, error) {
	var out ClickResult
	if in.Clicks <= 0 {
		return out, ErrInvalidAmount
	}
	if in.Clicks > MaxClicksPerRequest {
		in.Clicks = MaxClicksPerRequest
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var clickPower, xp, balance int64
		var level int32
		err := tx.QueryRow(ctx, `
			SELECT click_power_micros, experience, level, balance_micros
			FROM game.accounts
			WHERE user_id = $1
			FOR UPDATE
		`, in.UserID).Scan(&clickPower, &xp, &level, &balance)
		if err != nil {
			if err == pgx.ErrNoRows {
				return ErrAccountNotFound
			}
			return err
		}

		earned, err := mulMicros(clickPower, in.Clicks)
		if err != nil {
			return err
		}
		newXP := xp + in.Clicks
		newLevel := LevelForExperience(newXP)

		if err := creditTx(ctx, tx, in.UserID, earned, CategoryClickIncome,
			fmt.Sprintf("Earned from %d clicks", in.Clicks)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE game.accounts
			SET experience = $1,
			    level = $2,
			    total_clicks = total_clicks + $3,
			    total_earned_micros = total_earned_micros + $4,
			    updated_at = now()
			WHERE user_id = $5
		`, newXP, newLevel, in.Clicks, earned, in.UserID); err != nil {
			return err
		}

		out = ClickResult{
			EarnedMicros:  earned,
			BalanceMicros: balance + earned,
			Experience:    newXP,
			Level:         newLevel,
		}
		if newLevel > level {
			lvl := newLevel
			out.LeveledUpTo = &lvl
		}
		if err := tx.QueryRow(ctx, `
			SELECT total_clicks FROM game.accounts WHERE user_id = $1
		`, in.UserID).Scan(&out.TotalClicks); err != nil {
			return err
		}
		return s.evaluateAchievementsTx(ctx, tx, in.UserID)
	})
	return out, err
}

// CollectIdleIncome settles passive income accrued since the last
// settlement, capped at MaxIdleWindow. The credit and the timestamp
// advance commit together, which makes back-to-back calls yield zero on
// the second call.
func (s *Service) CollectIdleIncome(ctx context.Context, userID string) (IdleResult, error) {
	var out IdleResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var rate, balance int64
		var lastSettled time.Time
		err := tx.QueryRow(ctx, `
			SELECT auto_income_micros_per_hour, balance_micros, last_settled_at
			FROM game.accounts
			WHERE user_id = $1
			FOR UPDATE
		`, userID).Scan(&rate, &balance, &lastSettled)
		if err != nil {
			if err == pgx.ErrNoRows {
				return ErrAccountNotFound
			}
			return err
		}

		now := time.Now()
		earned, elapsed := IdleEarningsMicros(rate, lastSettled, now, MaxIdleWindow)
		out = IdleResult{
			WindowHours:   int64(elapsed / time.Hour),
			BalanceMicros: balance,
		}
		if earned <= 0 {
			return nil
		}
		if err := creditTx(ctx, tx, userID, earned, CategoryPassiveIncome,
			fmt.Sprintf("Idle income for %dh offline", int64(elapsed/time.Hour))); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE game.accounts
			SET last_settled_at = $1,
			    total_earned_micros = total_earned_micros + $2,
			    updated_at = now()
			WHERE user_id = $3
		`, now, earned, userID); err != nil {
			return err
		}
		out.EarnedMicros = earned
		out.BalanceMicros = balance + earned
		return s.evaluateAchievementsTx(ctx, tx, userID)
	})
	return out, err
}

// Transfer moves currency between two accounts with a conservation
// guarantee: the debit and credit commit as one unit or not at all.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (TransferResult, error) {
	var out TransferResult
	if in.AmountMicros <= 0 {
		return out, ErrInvalidAmount
	}
	if in.UserID == in.RecipientID {
		return out, ErrSelfTransfer
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotencyTx(ctx, tx, in.UserID, in.IdempotencyKey, "transfer"); err != nil {
			return err
		}
		remaining, err := transferTx(ctx, tx, in.UserID, in.RecipientID, in.AmountMicros,
			fmt.Sprintf("Transfer of %.2f coins", MicrosToCoins(in.AmountMicros)))
		if err != nil {
			return err
		}
		out.RemainingBalanceMicros = remaining
		return nil
	})
	if err == nil {
		s.log.Info("transfer complete",
			"from", in.UserID, "to", in.RecipientID, "amount_micros", in.AmountMicros)
	}
	return out, err
}

// Prestige resets cyclical progress for compounding permanent bonuses.
// Eligibility is gated on level; on success the whole reset — points,
// stat recomputation, owned-record deletion, reward log — commits as one
// unit, so a failure leaves the account untouched.
func (s *Service) Prestige(ctx context.Context, userID, idempotencyKey string) (PrestigeResult, error) {
	var out PrestigeResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := claimIdempotencyTx(ctx, tx, userID, idempotencyKey, "prestige"); err != nil {
			return err
		}

		var level, prestigeLevel int32
		var prestigePoints int64
		err := tx.QueryRow(ctx, `
			SELECT level, prestige_level, prestige_points
			FROM game.accounts
			WHERE user_id = $1
			FOR UPDATE
		`, userID).Scan(&level, &prestigeLevel, &prestigePoints)
		if err != nil {
			if err == pgx.ErrNoRows {
				return ErrAccountNotFound
			}
			return err
		}
		if level < MinPrestigeLevel {
			return &PrestigeIneligibleError{RequiredLevel: MinPrestigeLevel}
		}

		newPrestige := prestigeLevel + 1
		newPoints := prestigePoints + PrestigePointsForLevel(level)
		clickPower := PrestigeClickPowerMicros(newPrestige)
		autoIncome := PrestigeAutoIncomeMicros(newPrestige)

		if _, err := tx.Exec(ctx, `
			UPDATE game.accounts
			SET balance_micros = $1,
			    level = 1,
			    experience = 0,
			    click_power_micros = $2,
			    auto_income_micros_per_hour = $3,
			    prestige_level = $4,
			    prestige_points = $5,
			    last_settled_at = now(),
			    updated_at = now()
			WHERE user_id = $6
		`, PrestigeStartMicros, clickPower, autoIncome, newPrestige, newPoints, userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM game.account_upgrades WHERE user_id = $1
		`, userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM game.account_businesses WHERE user_id = $1
		`, userID); err != nil {
			return err
		}
		if err := appendTransactionTx(ctx, tx, nil, &userID, PrestigeStartMicros, CategoryReward,
			fmt.Sprintf("Prestige bonus - Level %d", newPrestige)); err != nil {
			return err
		}

		out = PrestigeResult{
			PrestigeLevel:  newPrestige,
			PrestigePoints: newPoints,
			Bonuses: PrestigeBonuses{
				ClickPowerMicros:      clickPower,
				AutoIncomeMicros:      autoIncome,
				StartingBalanceMicros: PrestigeStartMicros,
			},
		}
		return s.evaluateAchievementsTx(ctx, tx, userID)
	})
	if err == nil {
		s.log.Info("prestige complete", "user", userID, "prestige_level", out.PrestigeLevel)
	}
	return out, err
}

// TransactionHistory pages through the append-only log for one account.
func (s *Service) TransactionHistory(ctx context.Context, q HistoryQuery) (HistoryResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	out := HistoryResult{Page: q.Page, Limit: q.Limit, Transactions: []TransactionView{}}

	where := `WHERE (from_user_id = $1 OR to_user_id = $1)`
	args := []any{q.UserID}
	if q.Category != "" {
		where += ` AND category = $2`
		args = append(args, q.Category)
	}

	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM game.transactions `+where, args...,
	).Scan(&out.Total); err != nil {
		return out, err
	}

	query := fmt.Sprintf(`
		SELECT id, from_user_id, to_user_id, amount_micros, category, description, created_at
		FROM game.transactions
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT %d OFFSET %d
	`, where, q.Limit, (q.Page-1)*q.Limit)
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var t TransactionView
		if err := rows.Scan(&t.ID, &t.FromUserID, &t.ToUserID, &t.AmountMicros, &t.Category, &t.Description, &t.CreatedAt); err != nil {
			return out, err
		}
		switch {
		case t.FromUserID != nil && *t.FromUserID == q.UserID:
			t.Direction = "outgoing"
		case t.ToUserID != nil && *t.ToUserID == q.UserID:
			t.Direction = "incoming"
		default:
			t.Direction = "system"
		}
		out.Transactions = append(out.Transactions, t)
	}
	return out, rows.Err()
}

// Stats aggregates the account's transaction log by category.
func (s *Service) TransactionStats(ctx context.Context, userID string) (TransactionStats, error) {
	var out TransactionStats
	err := s.db.QueryRow(ctx, `
		SELECT
		    COALESCE(SUM(CASE WHEN category = 'click_income' THEN amount_micros END), 0),
		    COALESCE(SUM(CASE WHEN category = 'passive_income' THEN amount_micros END), 0),
		    COALESCE(SUM(CASE WHEN category = 'purchase' THEN amount_micros END), 0),
		    COALESCE(SUM(CASE WHEN category = 'transfer' AND from_user_id = $1 THEN amount_micros END), 0),
		    COALESCE(SUM(CASE WHEN category = 'transfer' AND to_user_id = $1 THEN amount_micros END), 0),
		    COUNT(CASE WHEN category = 'transfer' AND from_user_id = $1 THEN 1 END),
		    COUNT(CASE WHEN category = 'transfer' AND to_user_id = $1 THEN 1 END)
		FROM game.transactions
		WHERE from_user_id = $1 OR to_user_id = $1
	`, userID).Scan(
		&out.ClickIncomeMicros, &out.PassiveIncomeMicros, &out.SpentMicros,
		&out.SentMicros, &out.ReceivedMicros,
		&out.TransfersSent, &out.TransfersReceived,
	)
	return out, err
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func usernameFromEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	local, _, _ := strings.Cut(email, "@")
	out := make([]rune, 0, len(local))
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	res := strings.Trim(string(out), "_")
	if len(res) < 3 {
		res = "player_" + res
	}
	if len(res) > 24 {
		res = res[:24]
	}
	return res
}
