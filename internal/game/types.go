package game

import "time"

type Profile struct {
	UserID            string    `json:"user_id"`
	Username          string    `json:"username"`
	BalanceMicros     int64     `json:"balance_micros"`
	Gems              int64     `json:"gems"`
	Level             int32     `json:"level"`
	Experience        int64     `json:"experience"`
	NextLevelAt       int64     `json:"next_level_at"`
	ClickPowerMicros  int64     `json:"click_power_micros"`
	AutoIncomeMicros  int64     `json:"auto_income_micros_per_hour"`
	PrestigeLevel     int32     `json:"prestige_level"`
	PrestigePoints    int64     `json:"prestige_points"`
	TotalClicks       int64     `json:"total_clicks"`
	TotalEarnedMicros int64     `json:"total_earned_micros"`
	PendingIdleMicros int64     `json:"pending_idle_micros"`
	AchievementCount  int64     `json:"achievement_count"`
	BusinessCount     int64     `json:"business_count"`
	LastSettledAt     time.Time `json:"last_settled_at"`
	CreatedAt         time.Time `json:"created_at"`
}

type ClickInput struct {
	UserID string
	Clicks int64
}

type ClickResult struct {
	EarnedMicros  int64  `json:"earned_micros"`
	BalanceMicros int64  `json:"balance_micros"`
	Experience    int64  `json:"experience"`
	Level         int32  `json:"level"`
	LeveledUpTo   *int32 `json:"leveled_up_to,omitempty"`
	TotalClicks   int64  `json:"total_clicks"`
}

type IdleResult struct {
	EarnedMicros  int64 `json:"earned_micros"`
	WindowHours   int64 `json:"window_hours"`
	BalanceMicros int64 `json:"balance_micros"`
}

type UpgradeView struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Icon             string `json:"icon"`
	Kind             string `json:"kind"`
	BaseCostMicros   int64  `json:"base_cost_micros"`
	CostMultiplier   float64 `json:"cost_multiplier"`
	BaseEffectMicros int64  `json:"base_effect_micros"`
	MaxLevel         *int32 `json:"max_level,omitempty"`
	OwnedLevel       int32  `json:"owned_level"`
	CurrentCostMicros int64 `json:"current_cost_micros"`
	Maxed            bool   `json:"maxed"`
}

type BusinessDefView struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	Icon                string  `json:"icon"`
	BaseCostMicros      int64   `json:"base_cost_micros"`
	CostMultiplier      float64 `json:"cost_multiplier"`
	BaseIncomeMicros    int64   `json:"base_income_micros"`
	UnlockLevel         int32   `json:"unlock_level"`
	IncomeIntervalSecs  int64   `json:"income_interval_seconds"`
	OwnedLevel          int32   `json:"owned_level"`
	CurrentCostMicros   int64   `json:"current_cost_micros"`
	CurrentIncomeMicros int64   `json:"current_income_micros"`
	Unlocked            bool    `json:"unlocked"`
}

type BusinessStatusRow struct {
	BusinessID          int64     `json:"business_id"`
	Name                string    `json:"name"`
	Icon                string    `json:"icon"`
	Level               int32     `json:"level"`
	IncomeMicros        int64     `json:"income_micros"`
	LastCollectedAt     time.Time `json:"last_collected_at"`
	RemainingSeconds    int64     `json:"remaining_seconds"`
	ReadyToCollect      bool      `json:"ready_to_collect"`
}

type PurchaseInput struct {
	UserID         string
	DefinitionID   int64
	IdempotencyKey string
}

type PurchaseResult struct {
	NewLevel               int32 `json:"new_level"`
	CostMicros             int64 `json:"cost_micros"`
	RemainingBalanceMicros int64 `json:"remaining_balance_micros"`
	// Businesses only: payout per collection at the new level.
	IncomeMicros int64 `json:"income_micros,omitempty"`
}

type CollectResult struct {
	IncomeMicros  int64  `json:"income_micros"`
	BusinessName  string `json:"business_name"`
	BalanceMicros int64  `json:"balance_micros"`
}

type TransferInput struct {
	UserID         string
	RecipientID    string
	AmountMicros   int64
	IdempotencyKey string
}

type TransferResult struct {
	RemainingBalanceMicros int64 `json:"remaining_balance_micros"`
}

type PrestigeResult struct {
	PrestigeLevel  int32           `json:"prestige_level"`
	PrestigePoints int64           `json:"prestige_points"`
	Bonuses        PrestigeBonuses `json:"bonuses"`
}

type PrestigeBonuses struct {
	ClickPowerMicros      int64 `json:"click_power_micros"`
	AutoIncomeMicros      int64 `json:"auto_income_micros_per_hour"`
	StartingBalanceMicros int64 `json:"starting_balance_micros"`
}

type AchievementView struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Icon              string     `json:"icon"`
	Metric            string     `json:"metric"`
	Threshold         int64      `json:"threshold"`
	RewardCoinsMicros int64      `json:"reward_coins_micros"`
	RewardGems        int64      `json:"reward_gems"`
	Earned            bool       `json:"earned"`
	EarnedAt          *time.Time `json:"earned_at,omitempty"`
}

type LeaderboardResult struct {
	Metric        Metric      `json:"metric"`
	Rows          []RankedRow `json:"rows"`
	RequesterRank int64       `json:"requester_rank"`
}

type LeaderboardStats struct {
	TotalPlayers       int64 `json:"total_players"`
	HighestBalanceMicros int64 `json:"highest_balance_micros"`
	HighestLevel       int32 `json:"highest_level"`
	HighestPrestige    int32 `json:"highest_prestige"`
	MostClicks         int64 `json:"most_clicks"`
	TotalBalanceMicros int64 `json:"total_balance_micros"`
}

type HistoryQuery struct {
	UserID   string
	Category string
	Page     int
	Limit    int
}

type TransactionView struct {
	ID           int64     `json:"id"`
	FromUserID   *string   `json:"from_user_id,omitempty"`
	ToUserID     *string   `json:"to_user_id,omitempty"`
	AmountMicros int64     `json:"amount_micros"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Direction    string    `json:"direction"`
	CreatedAt    time.Time `json:"created_at"`
}

type HistoryResult struct {
	Transactions []TransactionView `json:"transactions"`
	Page         int               `json:"page"`
	Limit        int               `json:"limit"`
	Total        int64             `json:"total"`
}

type TransactionStats struct {
	ClickIncomeMicros   int64 `json:"click_income_micros"`
	PassiveIncomeMicros int64 `json:"passive_income_micros"`
	SpentMicros         int64 `json:"spent_micros"`
	SentMicros          int64 `json:"sent_micros"`
	ReceivedMicros      int64 `json:"received_micros"`
	TransfersSent       int64 `json:"transfers_sent"`
	TransfersReceived   int64 `json:"transfers_received"`
}
