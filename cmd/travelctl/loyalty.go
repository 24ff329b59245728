package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"travel-workers/internal/app"
	"travel-workers/internal/loyalty"
	"travel-workers/internal/models"
)

var (
	flagRecent      int
	flagReason      string
	flagPurpose     string
	flagBookingType string
	flagCheckIn     string
)

func resetLoyaltyFlags() {
	flagRecent = 0
	flagReason = "Manual adjustment"
	flagPurpose = "Redemption"
	flagBookingType = ""
	flagCheckIn = ""
}

var loyaltyCmd = &cobra.Command{
	Use:   "loyalty",
	Short: "Inspect and adjust loyalty accounts",
}

var loyaltyShowCmd = &cobra.Command{
	Use:     "show <user>",
	Short:   "Show a user's balance, tier, badges and recent history",
	Args:    cobra.ExactArgs(1),
	Example: `  travelctl loyalty show user-42 --recent 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			recent := flagRecent
			if recent == 0 {
				recent = s.Config.Loyalty.RecentTransactions
			}
			sum := s.Ledger.GetSummary(ctx, args[0], recent)
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), sum)
			}
			return printSummary(cmd, sum)
		})
	},
}

var loyaltyAwardCmd = &cobra.Command{
	Use:   "award <user> <points>",
	Short: "Credit points to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parsePoints(args[1])
		if err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			res, err := s.Ledger.AwardPoints(ctx, points, flagReason, map[string]interface{}{"source": "travelctl"}, args[0])
			if err != nil {
				return ledgerError("awarding points", err)
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "awarded %d points, balance %d\n", points, res.NewBalance)
			printUpgrade(cmd, res.TierUpgrade)
			return nil
		})
	},
}

var loyaltyRedeemCmd = &cobra.Command{
	Use:   "redeem <user> <points>",
	Short: "Redeem points from a user's available balance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parsePoints(args[1])
		if err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			if limit := s.Config.Loyalty.MaxRedemption; limit > 0 && points > limit {
				return invalidArgsError(fmt.Sprintf("amount %d exceeds the %d point redemption limit", points, limit))
			}
			res, err := s.Ledger.RedeemPoints(ctx, points, flagPurpose, map[string]interface{}{"source": "travelctl"}, args[0])
			if err != nil {
				return ledgerError("redeeming points", err)
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "redeemed %d points (worth %.2f), balance %d\n",
				points, res.RedemptionValue, res.NewBalance)
			return nil
		})
	},
}

var loyaltyBadgeCmd = &cobra.Command{
	Use:   "badge <user> <badge-id>",
	Short: "Award a badge and its bonus points",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			res, err := s.Ledger.AwardBadge(ctx, args[1], args[0])
			if err != nil {
				return ledgerError("awarding badge", err)
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "awarded %s (+%d points), balance %d\n",
				res.Badge.Name, res.PointsAwarded, res.NewBalance)
			return nil
		})
	},
}

var loyaltyBookingCmd = &cobra.Command{
	Use:     "booking <user> <booking-id> <amount>",
	Short:   "Reward a completed booking",
	Args:    cobra.ExactArgs(3),
	Example: `  travelctl loyalty booking user-42 BK-1001 2500 --type hotel`,
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(args[2], 64)
		if err != nil || amount <= 0 {
			return invalidArgsError(fmt.Sprintf("invalid booking amount %q", args[2]))
		}
		booking := models.Booking{
			ID:          args[1],
			Amount:      amount,
			UserID:      args[0],
			Type:        flagBookingType,
			CheckInDate: flagCheckIn,
		}
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			res, err := s.Ledger.RewardBooking(ctx, booking)
			if err != nil {
				return ledgerError("rewarding booking", err)
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "booking %s earned %d points (%d base + %d bonus), balance %d\n",
				res.BookingID, res.Points.TotalPoints, res.Points.BasePoints, res.Points.BonusPoints, res.NewBalance)
			if res.BadgeAwarded != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "badge earned: %s\n", res.BadgeAwarded.Name)
			}
			printUpgrade(cmd, res.TierUpgrade)
			return nil
		})
	},
}

var loyaltyReferCmd = &cobra.Command{
	Use:   "refer <user> <referee>",
	Short: "Record a pending referral",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			res, err := s.Ledger.AddReferral(ctx, args[0], args[1])
			if err != nil {
				return ledgerError("adding referral", err)
			}
			return printReferral(cmd, res)
		})
	},
}

var loyaltyConvertCmd = &cobra.Command{
	Use:   "convert <user> <referee>",
	Short: "Convert a pending referral and pay the referral bonus",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			res, err := s.Ledger.ConvertReferral(ctx, args[0], args[1])
			if err != nil {
				return ledgerError("converting referral", err)
			}
			return printReferral(cmd, res)
		})
	},
}

var loyaltyTiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "List tiers and badges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"tiers":  loyalty.Tiers,
				"badges": loyalty.Badges,
			})
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIER\tFROM\tCASHBACK")
		for _, t := range loyalty.Tiers {
			fmt.Fprintf(tw, "%s\t%d\t%.0f%%\n", t.Name, t.MinPoints, t.CashbackRate*100)
		}
		fmt.Fprintln(tw, "\nBADGE\tPOINTS\tDESCRIPTION")
		for _, b := range loyalty.Badges {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", b.ID, b.Points, b.Description)
		}
		return tw.Flush()
	},
}

func init() {
	loyaltyShowCmd.Flags().IntVar(&flagRecent, "recent", 0, "Number of history entries to show (default from config)")
	loyaltyAwardCmd.Flags().StringVar(&flagReason, "reason", "Manual adjustment", "Reason recorded on the transaction")
	loyaltyRedeemCmd.Flags().StringVar(&flagPurpose, "purpose", "Redemption", "Purpose recorded on the transaction")
	loyaltyBookingCmd.Flags().StringVar(&flagBookingType, "type", "", "Booking type, e.g. hotel or tour")
	loyaltyBookingCmd.Flags().StringVar(&flagCheckIn, "check-in", "", "Check-in date (YYYY-MM-DD)")

	loyaltyCmd.AddCommand(
		loyaltyShowCmd, loyaltyAwardCmd, loyaltyRedeemCmd, loyaltyBadgeCmd,
		loyaltyBookingCmd, loyaltyReferCmd, loyaltyConvertCmd, loyaltyTiersCmd,
	)
	rootCmd.AddCommand(loyaltyCmd)
}

func parsePoints(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, invalidArgsError(fmt.Sprintf("points must be a positive whole number, got %q", raw))
	}
	return n, nil
}

func printUpgrade(cmd *cobra.Command, up *loyalty.TierUpgrade) {
	if up != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "tier upgraded: %s -> %s\n", up.From, up.To)
	}
}

func printReferral(cmd *cobra.Command, res *loyalty.ReferralResult) error {
	if flagJSON {
		return printJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "referral %s: %s", res.Referee, res.Status)
	if res.PointsAwarded > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), " (+%d points, balance %d)", res.PointsAwarded, res.NewBalance)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

func printSummary(cmd *cobra.Command, sum *loyalty.Summary) error {
	acct := sum.Account
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "user:      %s\n", acct.UserID)
	fmt.Fprintf(out, "available: %d\n", acct.AvailablePoints)
	fmt.Fprintf(out, "total:     %d\n", acct.TotalPoints)
	fmt.Fprintf(out, "tier:      %s (%.0f%%)\n", sum.Tier.Name, acct.TierProgress)
	if !sum.NextTier.IsMaxTier && sum.NextTier.NextTier != nil {
		fmt.Fprintf(out, "next:      %s in %d points\n", sum.NextTier.NextTier.Name, sum.NextTier.PointsNeeded)
	}
	fmt.Fprintf(out, "referral:  %s\n", acct.ReferralCode)

	names := make([]string, 0, len(sum.Badges))
	for _, b := range sum.Badges {
		names = append(names, b.Name)
	}
	if len(names) > 0 {
		fmt.Fprintf(out, "badges:    %s\n", strings.Join(names, ", "))
	}

	if len(acct.History) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tTYPE\tPOINTS\tREASON")
	for _, tx := range acct.History {
		fmt.Fprintf(tw, "%s\t%s\t%+d\t%s\n", tx.Timestamp, tx.Type, tx.Amount, tx.Reason)
	}
	return tw.Flush()
}
