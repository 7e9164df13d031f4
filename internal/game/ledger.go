package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transaction log categories. The log is append-only audit history;
// balances are authoritative on game.accounts, never replayed from here.
const (
	CategoryClickIncome   = "click_income"
	CategoryPassiveIncome = "passive_income"
	CategoryPurchase      = "purchase"
	CategoryTransfer      = "transfer"
	CategoryReward        = "reward"
)

// creditTx adds amount to an account's balance and appends the matching
// log record. Runs inside the caller's transaction so the credit and the
// record commit or roll back together.
func creditTx(ctx context.Context, tx pgx.Tx, userID string, amountMicros int64, category, description string) error {
	if amountMicros <= 0 {
		return ErrInvalidAmount
	}
	cmd, err := tx.Exec(ctx, `
		UPDATE game.accounts
		SET balance_micros = balance_micros + $1, updated_at = now()
		WHERE user_id = $2
	`, amountMicros, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return appendTransactionTx(ctx, tx, nil, &userID, amountMicros, category, description)
}

// debitTx removes amount from an account's balance after verifying funds
// under a row lock, and appends the matching log record.
func debitTx(ctx context.Context, tx pgx.Tx, userID string, amountMicros int64, category, description string) error {
	if amountMicros <= 0 {
		return ErrInvalidAmount
	}
	var balance int64
	err := tx.QueryRow(ctx, `
		SELECT balance_micros
		FROM game.accounts
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrAccountNotFound
		}
		return err
	}
	if balance < amountMicros {
		return fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds,
			MicrosToCoins(amountMicros), MicrosToCoins(balance))
	}
	if _, err := tx.Exec(ctx, `
		UPDATE game.accounts
		SET balance_micros = balance_micros - $1, updated_at = now()
		WHERE user_id = $2
	`, amountMicros, userID); err != nil {
		return err
	}
	return appendTransactionTx(ctx, tx, &userID, nil, amountMicros, category, description)
}

// transferTx moves amount between two accounts as one unit. Both rows are
// locked in ascending user-id order so reciprocal concurrent transfers
// cannot deadlock. Appends a single log record referencing both accounts,
// preserving conservation: exactly the transferred amount moves.
func transferTx(ctx context.Context, tx pgx.Tx, fromID, toID string, amountMicros int64, description string) (int64, error) {
	if amountMicros <= 0 {
		return 0, ErrInvalidAmount
	}
	if fromID == toID {
		return 0, ErrSelfTransfer
	}

	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	balances := make(map[string]int64, 2)
	for _, id := range []string{first, second} {
		var balance int64
		err := tx.QueryRow(ctx, `
			SELECT balance_micros
			FROM game.accounts
			WHERE user_id = $1
			FOR UPDATE
		`, id).Scan(&balance)
		if err != nil {
			if err == pgx.ErrNoRows {
				if id == toID {
					return 0, ErrRecipientNotFound
				}
				return 0, ErrAccountNotFound
			}
			return 0, err
		}
		balances[id] = balance
	}

	if balances[fromID] < amountMicros {
		return 0, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds,
			MicrosToCoins(amountMicros), MicrosToCoins(balances[fromID]))
	}
	if _, err := tx.Exec(ctx, `
		UPDATE game.accounts
		SET balance_micros = balance_micros - $1, updated_at = now()
		WHERE user_id = $2
	`, amountMicros, fromID); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE game.accounts
		SET balance_micros = balance_micros + $1, updated_at = now()
		WHERE user_id = $2
	`, amountMicros, toID); err != nil {
		return 0, err
	}
	if err := appendTransactionTx(ctx, tx, &fromID, &toID, amountMicros, CategoryTransfer, description); err != nil {
		return 0, err
	}
	return balances[fromID] - amountMicros, nil
}

func appendTransactionTx(ctx context.Context, tx pgx.Tx, fromID, toID *string, amountMicros int64, category, description string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO game.transactions (tx_group_id, from_user_id, to_user_id, amount_micros, category, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), fromID, toID, amountMicros, category, description)
	return err
}

func claimIdempotencyTx(ctx context.Context, tx pgx.Tx, userID, key, action string) error {
	if key == "" {
		return fmt.Errorf("idempotency key is required")
	}
	cmd, err := tx.Exec(ctx, `
		INSERT INTO game.idempotency_keys (user_id, key, action, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, key) DO NOTHING
	`, userID, key, action)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicateIdempotency
	}
	return nil
}
