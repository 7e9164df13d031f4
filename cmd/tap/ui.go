package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"tapcoin/internal/game"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

type upgradesPayload struct {
	Upgrades []game.UpgradeView `json:"upgrades"`
}

type businessesPayload struct {
	Businesses []game.BusinessDefView `json:"businesses"`
}

type businessStatusPayload struct {
	Businesses []game.BusinessStatusRow `json:"businesses"`
}

type achievementsPayload struct {
	Achievements []game.AchievementView `json:"achievements"`
}

type syncResultsPayload struct {
	Results []game.SyncReplayRow `json:"results"`
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func promptFloat(label string, min float64) (float64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			printWarn("Enter a valid number.")
			continue
		}
		if v <= min {
			printWarn(fmt.Sprintf("Value must be > %.2f", min))
			continue
		}
		return v, nil
	}
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func renderProfile(raw map[string]any) error {
	p, err := decodeInto[game.Profile](raw)
	if err != nil {
		return err
	}

	accent.Printf("\n== %s ==\n", p.Username)
	fmt.Printf("Balance:       %s coins\n", formatMicros(p.BalanceMicros))
	fmt.Printf("Gems:          %s\n", comma(p.Gems))
	fmt.Printf("Level:         %d (xp %s / next at %s)\n", p.Level, comma(p.Experience), comma(p.NextLevelAt))
	fmt.Printf("Click power:   %s coins\n", formatMicros(p.ClickPowerMicros))
	fmt.Printf("Auto income:   %s coins/hour\n", formatMicros(p.AutoIncomeMicros))
	if p.PendingIdleMicros > 0 {
		fmt.Printf("Pending idle:  %s coins (run `tap idle`)\n", formatMicros(p.PendingIdleMicros))
	}
	fmt.Printf("Prestige:      level %d, %s points\n", p.PrestigeLevel, comma(p.PrestigePoints))
	fmt.Printf("Lifetime:      %s clicks, %s coins earned\n", comma(p.TotalClicks), formatMicros(p.TotalEarnedMicros))
	fmt.Printf("Achievements:  %d earned\n", p.AchievementCount)
	fmt.Printf("Businesses:    %d owned\n", p.BusinessCount)
	fmt.Println()
	return nil
}

func renderClickResult(raw map[string]any) error {
	out, err := decodeInto[game.ClickResult](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("+%s coins (balance %s)", formatMicros(out.EarnedMicros), formatMicros(out.BalanceMicros)))
	if out.LeveledUpTo != nil {
		accent.Printf("LEVEL UP! You are now level %d.\n", *out.LeveledUpTo)
	}
	return nil
}

func renderIdleResult(raw map[string]any) error {
	out, err := decodeInto[game.IdleResult](raw)
	if err != nil {
		return err
	}
	if out.EarnedMicros == 0 {
		printInfo("Nothing to collect yet.")
		return nil
	}
	printSuccess(fmt.Sprintf("Collected %s coins of idle income (%dh). Balance: %s",
		formatMicros(out.EarnedMicros), out.WindowHours, formatMicros(out.BalanceMicros)))
	return nil
}

func renderUpgradesList(raw map[string]any) error {
	payload, err := decodeInto[upgradesPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== UPGRADE SHOP ==")
	if len(payload.Upgrades) == 0 {
		printInfo("No upgrades available.")
		return nil
	}
	fmt.Printf("%-4s %-4s %-20s %-6s %6s %14s %14s\n", "ID", "", "NAME", "KIND", "LEVEL", "EFFECT", "NEXT COST")
	for _, u := range payload.Upgrades {
		cost := formatMicros(u.CurrentCostMicros)
		if u.Maxed {
			cost = "MAXED"
		}
		fmt.Printf("%-4d %-4s %-20s %-6s %6d %14s %14s\n",
			u.ID, u.Icon, truncate(u.Name, 20), u.Kind, u.OwnedLevel,
			formatMicros(u.BaseEffectMicros), cost)
	}
	fmt.Println()
	return nil
}

func renderBusinessList(raw map[string]any) error {
	payload, err := decodeInto[businessesPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== BUSINESSES ==")
	if len(payload.Businesses) == 0 {
		printInfo("No businesses available.")
		return nil
	}
	fmt.Printf("%-4s %-4s %-18s %6s %14s %14s %10s %8s\n", "ID", "", "NAME", "LEVEL", "INCOME", "NEXT COST", "INTERVAL", "UNLOCK")
	for _, b := range payload.Businesses {
		unlock := fmt.Sprintf("lv %d", b.UnlockLevel)
		if b.Unlocked {
			unlock = "open"
		}
		fmt.Printf("%-4d %-4s %-18s %6d %14s %14s %9ds %8s\n",
			b.ID, b.Icon, truncate(b.Name, 18), b.OwnedLevel,
			formatMicros(b.CurrentIncomeMicros), formatMicros(b.CurrentCostMicros),
			b.IncomeIntervalSecs, unlock)
	}
	fmt.Println()
	return nil
}

func renderBusinessStatus(raw map[string]any) error {
	payload, err := decodeInto[businessStatusPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== OWNED BUSINESSES ==")
	if len(payload.Businesses) == 0 {
		printInfo("You don't own any businesses yet.")
		return nil
	}
	fmt.Printf("%-4s %-4s %-18s %6s %14s %-12s\n", "ID", "", "NAME", "LEVEL", "INCOME", "STATUS")
	for _, b := range payload.Businesses {
		status := success.Sprint("READY")
		if !b.ReadyToCollect {
			status = warn.Sprintf("%ds left", b.RemainingSeconds)
		}
		fmt.Printf("%-4d %-4s %-18s %6d %14s %-12s\n",
			b.BusinessID, b.Icon, truncate(b.Name, 18), b.Level,
			formatMicros(b.IncomeMicros), status)
	}
	fmt.Println()
	return nil
}

func renderPurchaseResult(raw map[string]any, what string) error {
	out, err := decodeInto[game.PurchaseResult](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("%s purchased: level %d for %s coins. Balance: %s",
		what, out.NewLevel, formatMicros(out.CostMicros), formatMicros(out.RemainingBalanceMicros)))
	if out.IncomeMicros > 0 {
		printInfo(fmt.Sprintf("Now pays %s coins per collection.", formatMicros(out.IncomeMicros)))
	}
	return nil
}

func renderCollectResult(raw map[string]any) error {
	out, err := decodeInto[game.CollectResult](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Collected %s coins from %s. Balance: %s",
		formatMicros(out.IncomeMicros), out.BusinessName, formatMicros(out.BalanceMicros)))
	return nil
}

func renderTransferResult(raw map[string]any, recipient string, coins float64) error {
	out, err := decodeInto[game.TransferResult](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Sent %.2f coins to %s. Remaining balance: %s",
		coins, recipient, formatMicros(out.RemainingBalanceMicros)))
	return nil
}

func renderPrestigeResult(raw map[string]any) error {
	out, err := decodeInto[game.PrestigeResult](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== PRESTIGE %d ==\n", out.PrestigeLevel)
	fmt.Printf("Prestige points: %s\n", comma(out.PrestigePoints))
	fmt.Printf("Click power:     %s coins\n", formatMicros(out.Bonuses.ClickPowerMicros))
	fmt.Printf("Auto income:     %s coins/hour\n", formatMicros(out.Bonuses.AutoIncomeMicros))
	fmt.Printf("Fresh balance:   %s coins\n", formatMicros(out.Bonuses.StartingBalanceMicros))
	fmt.Println()
	return nil
}

func renderLeaderboard(raw map[string]any, metric string) error {
	out, err := decodeInto[game.LeaderboardResult](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== LEADERBOARD (%s) ==\n", strings.ToUpper(metric))
	if len(out.Rows) == 0 {
		printInfo("Leaderboard is empty.")
		return nil
	}
	fmt.Printf("%-5s %-20s %14s %6s %9s %12s\n", "RANK", "PLAYER", "COINS", "LEVEL", "PRESTIGE", "CLICKS")
	for _, row := range out.Rows {
		fmt.Printf("%-5d %-20s %14s %6d %9d %12s\n",
			row.Rank, truncate(row.Username, 20),
			formatMicros(row.BalanceMicros), row.Level, row.PrestigeLevel, comma(row.TotalClicks))
	}
	if out.RequesterRank > 0 {
		fmt.Printf("\nYour rank: #%d\n", out.RequesterRank)
	}
	fmt.Println()
	return nil
}

func renderLeaderboardStats(raw map[string]any) error {
	out, err := decodeInto[game.LeaderboardStats](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== ECONOMY STATS ==")
	fmt.Printf("Players:          %s\n", comma(out.TotalPlayers))
	fmt.Printf("Richest balance:  %s coins\n", formatMicros(out.HighestBalanceMicros))
	fmt.Printf("Highest level:    %d\n", out.HighestLevel)
	fmt.Printf("Highest prestige: %d\n", out.HighestPrestige)
	fmt.Printf("Most clicks:      %s\n", comma(out.MostClicks))
	fmt.Printf("Coins in play:    %s\n", formatMicros(out.TotalBalanceMicros))
	fmt.Println()
	return nil
}

func renderAchievements(raw map[string]any) error {
	payload, err := decodeInto[achievementsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== ACHIEVEMENTS ==")
	earned := 0
	for _, a := range payload.Achievements {
		mark := neutral.Sprint("[ ]")
		if a.Earned {
			mark = success.Sprint("[x]")
			earned++
		}
		reward := fmt.Sprintf("%s coins", formatMicros(a.RewardCoinsMicros))
		if a.RewardGems > 0 {
			reward += fmt.Sprintf(" + %d gems", a.RewardGems)
		}
		fmt.Printf("%s %-4s %-20s %-8s >= %-10s %s\n",
			mark, a.Icon, truncate(a.Name, 20), a.Metric, comma(a.Threshold), reward)
	}
	fmt.Printf("\n%d/%d earned\n\n", earned, len(payload.Achievements))
	return nil
}

func renderHistory(raw map[string]any) error {
	out, err := decodeInto[game.HistoryResult](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== TRANSACTIONS (page %d, %s total) ==\n", out.Page, comma(out.Total))
	if len(out.Transactions) == 0 {
		printInfo("No transactions yet.")
		return nil
	}
	fmt.Printf("%-17s %-9s %-16s %14s %s\n", "TIME", "DIR", "CATEGORY", "AMOUNT", "DESCRIPTION")
	for _, t := range out.Transactions {
		amount := formatMicros(t.AmountMicros)
		if t.Direction == "outgoing" {
			amount = danger.Sprint("-" + amount)
		} else {
			amount = success.Sprint("+" + amount)
		}
		fmt.Printf("%-17s %-9s %-16s %14s %s\n",
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
			t.Direction, t.Category, amount, truncate(t.Description, 40))
	}
	fmt.Println()
	return nil
}

func renderTransactionStats(raw map[string]any) error {
	out, err := decodeInto[game.TransactionStats](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== EARNINGS BREAKDOWN ==")
	fmt.Printf("Click income:   %s coins\n", formatMicros(out.ClickIncomeMicros))
	fmt.Printf("Passive income: %s coins\n", formatMicros(out.PassiveIncomeMicros))
	fmt.Printf("Spent:          %s coins\n", formatMicros(out.SpentMicros))
	fmt.Printf("Sent:           %s coins (%d transfers)\n", formatMicros(out.SentMicros), out.TransfersSent)
	fmt.Printf("Received:       %s coins (%d transfers)\n", formatMicros(out.ReceivedMicros), out.TransfersReceived)
	fmt.Println()
	return nil
}

func renderSyncResults(raw map[string]any, queued int) error {
	payload, err := decodeInto[syncResultsPayload](raw)
	if err != nil {
		return err
	}
	replayed := 0
	for _, r := range payload.Results {
		if r.OK {
			replayed++
			continue
		}
		printWarn(fmt.Sprintf("Command %d (%s) failed: %s", r.Index, r.Type, r.Error))
	}
	printSuccess(fmt.Sprintf("Sync complete: replayed=%d of %d", replayed, queued))
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func coinsToMicros(v float64) int64 {
	return int64(math.Round(v * float64(game.MicrosPerCoin)))
}

func formatMicros(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / game.MicrosPerCoin
	frac := (v % game.MicrosPerCoin) / 10_000
	return fmt.Sprintf("%s%s.%02d", sign, comma(whole), frac)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
