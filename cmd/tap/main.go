package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "tapcoin/internal/cli"
	"tapcoin/internal/config"
	"tapcoin/internal/syncq"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "tap",
		Short:        "Tapcoin CLI game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newSignupCmd(&apiBase),
		newLoginCmd(&apiBase),
		newLogoutCmd(),
		newProfileCmd(&apiBase),
		newClickCmd(&apiBase),
		newIdleCmd(&apiBase),
		newUpgradesCmd(&apiBase),
		newBusinessCmd(&apiBase),
		newTransferCmd(&apiBase),
		newPrestigeCmd(&apiBase),
		newLeaderboardCmd(&apiBase),
		newAchievementsCmd(&apiBase),
		newHistoryCmd(&apiBase),
		newSyncCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newSignupCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create a Tapcoin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := promptRequired("Email")
			if err != nil {
				return err
			}
			password, err := promptRequired("Password")
			if err != nil {
				return err
			}
			username, err := promptOptional("Username (optional)")
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			session, err := client.Signup(ctx, email, password, username)
			if err != nil {
				return err
			}
			if strings.TrimSpace(session.AccessToken) == "" {
				printWarn("Signup created. Verify email, then run `tap login`.")
				return nil
			}
			if err := cl.SaveSession(cl.Session{
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
				Email:        session.User.Email,
				UserID:       session.User.ID,
			}); err != nil {
				return err
			}
			printSuccess("Signup complete. Session saved.")
			return nil
		},
	}
}

func newLoginCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login to Tapcoin",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := promptRequired("Email")
			if err != nil {
				return err
			}
			password, err := promptRequired("Password")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			session, err := client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
				Email:        session.User.Email,
				UserID:       session.User.ID,
			}); err != nil {
				return err
			}
			printSuccess("Login successful.")
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear local session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Logged out.")
			return nil
		},
	}
}

func newProfileCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your account",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.Profile(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderProfile(out)
		},
	}
}

func newClickCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "click [count]",
		Short: "Tap for coins",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			clicks := int64(1)
			if len(args) > 0 {
				clicks, err = strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
				if err != nil || clicks <= 0 {
					return fmt.Errorf("invalid click count")
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.Click(ctx, sess.AccessToken, clicks)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{Type: "click", Clicks: clicks})
			}
			return renderClickResult(out)
		},
	}
}

func newIdleCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "idle",
		Short: "Collect idle income",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.CollectIdle(ctx, sess.AccessToken)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{Type: "idle_collect"})
			}
			return renderIdleResult(out)
		},
	}
}

func newUpgradesCmd(apiBase *string) *cobra.Command {
	upgrades := &cobra.Command{
		Use:     "upgrades",
		Short:   "Upgrade shop commands",
		Aliases: []string{"upgrade"},
	}
	upgrades.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List upgrades and current costs",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.ListUpgrades(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderUpgradesList(out)
		},
	})
	upgrades.AddCommand(&cobra.Command{
		Use:   "buy [id]",
		Short: "Buy the next level of an upgrade",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			upgradeID, err := int64FromArgOrPrompt(args, 0, "Upgrade ID")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.BuyUpgrade(ctx, sess.AccessToken, upgradeID, uuid.NewString())
			if err != nil {
				return err
			}
			return renderPurchaseResult(out, "Upgrade")
		},
	})
	return upgrades
}

func newBusinessCmd(apiBase *string) *cobra.Command {
	business := &cobra.Command{
		Use:     "business",
		Short:   "Business commands",
		Aliases: []string{"businesses", "biz"},
	}
	business.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List businesses for sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.ListBusinesses(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderBusinessList(out)
		},
	})
	business.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show collection timers for owned businesses",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.BusinessStatus(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderBusinessStatus(out)
		},
	})
	business.AddCommand(&cobra.Command{
		Use:   "buy [id]",
		Short: "Buy or level up a business",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			businessID, err := int64FromArgOrPrompt(args, 0, "Business ID")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.BuyBusiness(ctx, sess.AccessToken, businessID, uuid.NewString())
			if err != nil {
				return err
			}
			return renderPurchaseResult(out, "Business")
		},
	})
	business.AddCommand(&cobra.Command{
		Use:   "collect [id]",
		Short: "Collect income from a business",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			businessID, err := int64FromArgOrPrompt(args, 0, "Business ID")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.CollectBusiness(ctx, sess.AccessToken, businessID)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{Type: "business_collect", BusinessID: businessID})
			}
			return renderCollectResult(out)
		},
	})
	return business
}

func newTransferCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer [recipient_id] [coins]",
		Short: "Send coins to another player",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			var recipient string
			if len(args) > 0 {
				recipient = strings.TrimSpace(args[0])
			} else {
				recipient, err = promptRequired("Recipient user ID")
				if err != nil {
					return err
				}
			}
			var coins float64
			if len(args) > 1 {
				coins, err = strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
				if err != nil || coins <= 0 {
					return fmt.Errorf("invalid amount")
				}
			} else {
				coins, err = promptFloat("Coins to send", 0)
				if err != nil {
					return err
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.Transfer(ctx, sess.AccessToken, recipient, coinsToMicros(coins), uuid.NewString())
			if err != nil {
				return err
			}
			return renderTransferResult(out, recipient, coins)
		},
	}
}

func newPrestigeCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "prestige",
		Short: "Reset progress for permanent bonuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			confirm, err := promptChoice("This resets your coins, level and purchases. Continue", []string{"yes", "no"}, "no")
			if err != nil {
				return err
			}
			if confirm != "yes" {
				printInfo("Prestige cancelled.")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.Prestige(ctx, sess.AccessToken, uuid.NewString())
			if err != nil {
				return err
			}
			return renderPrestigeResult(out)
		},
	}
}

func newLeaderboardCmd(apiBase *string) *cobra.Command {
	lb := &cobra.Command{
		Use:     "leaderboard [coins|level|prestige|clicks]",
		Short:   "Show a leaderboard",
		Aliases: []string{"lb", "top"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			metric := "coins"
			if len(args) > 0 {
				metric = strings.ToLower(strings.TrimSpace(args[0]))
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.Leaderboard(ctx, sess.AccessToken, metric, 25)
			if err != nil {
				return err
			}
			return renderLeaderboard(out, metric)
		},
	}
	lb.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Economy-wide statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.LeaderboardStats(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderLeaderboardStats(out)
		},
	})
	return lb
}

func newAchievementsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "achievements",
		Short:   "Show achievements",
		Aliases: []string{"ach"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.ListAchievements(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderAchievements(out)
		},
	}
}

func newHistoryCmd(apiBase *string) *cobra.Command {
	var category string
	var page int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show transaction history",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.Transactions(ctx, sess.AccessToken, category, page, 20)
			if err != nil {
				return err
			}
			return renderHistory(out)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Aggregate earnings and spending",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.TransactionStats(ctx, sess.AccessToken)
			if err != nil {
				return err
			}
			return renderTransactionStats(out)
		},
	})
	return cmd
}

func newSyncCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay locally queued offline actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			queue, err := syncq.Load()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Sync queue is empty.")
				return nil
			}
			commands := make([]map[string]any, 0, len(queue))
			for _, q := range queue {
				commands = append(commands, q.AsPayload())
			}

			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			out, err := client.SyncReplay(ctx, sess.AccessToken, commands)
			if err != nil {
				return err
			}
			if err := syncq.Save([]syncq.Command{}); err != nil {
				return err
			}
			return renderSyncResults(out, len(queue))
		},
	}
}

// queueOnNetworkError pushes the command to the offline queue when the
// failure looks like a transport problem. Structured API errors are real
// rejections and surface as-is.
func queueOnNetworkError(err error, cmd syncq.Command) error {
	if err == nil {
		return nil
	}
	if isAPIStructuredError(err) {
		return err
	}
	if pushErr := syncq.Push(cmd); pushErr != nil {
		return fmt.Errorf("request failed and queueing failed: %v (original: %w)", pushErr, err)
	}
	printWarn("Offline. Action queued; run `tap sync` when back online.")
	return nil
}

func isAPIStructuredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "api status")
}

func int64FromArgOrPrompt(args []string, idx int, label string) (int64, error) {
	if len(args) > idx {
		v, err := strconv.ParseInt(strings.TrimSpace(args[idx]), 10, 64)
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("invalid %s", strings.ToLower(label))
		}
		return v, nil
	}
	return promptInt64(label, 1)
}
