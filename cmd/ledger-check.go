/*
Copyright © 2026 eslsoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eslsoft/cyberpath/internal/adapter/repository"
	"github.com/eslsoft/cyberpath/internal/infrastructure/config"
	"github.com/eslsoft/cyberpath/internal/infrastructure/database"
)

// ledgerCheckCmd reconciles user aggregates against the activity ledger.
// Every XP point in user_stats must be witnessed by activity entries; a
// mismatch means a reward path bug or out-of-band mutation.
var ledgerCheckCmd = &cobra.Command{
	Use:   "ledger-check",
	Short: "Reconcile user XP against the activity ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		limit, _ := cmd.Flags().GetInt32("limit")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		pool, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		ctx := cmd.Context()
		statsRepo := repository.NewStatsRepository(pool)
		activityRepo := repository.NewActivityRepository(pool)

		var userIDs []int64
		if userID > 0 {
			userIDs = []int64{userID}
		} else {
			top, err := statsRepo.ListTop(ctx, limit)
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			for _, stats := range top {
				userIDs = append(userIDs, stats.UserID)
			}
		}

		imbalanced := 0
		for _, id := range userIDs {
			stats, err := statsRepo.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("get stats for user %d: %w", id, err)
			}
			ledgerXP, err := activityRepo.SumXP(ctx, id)
			if err != nil {
				return fmt.Errorf("sum ledger for user %d: %w", id, err)
			}
			if stats.XP == ledgerXP {
				cmd.Printf("user %d: balanced (xp=%d)\n", id, stats.XP)
				continue
			}
			imbalanced++
			cmd.Printf("user %d: IMBALANCED stats=%d ledger=%d drift=%d\n",
				id, stats.XP, ledgerXP, stats.XP-ledgerXP)
		}

		if imbalanced > 0 {
			return fmt.Errorf("%d of %d users imbalanced", imbalanced, len(userIDs))
		}
		cmd.Printf("%d users balanced\n", len(userIDs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ledgerCheckCmd)

	ledgerCheckCmd.Flags().Int64("user", 0, "check a single user id")
	ledgerCheckCmd.Flags().Int32("limit", 100, "number of top users to check when no user id is given")
}
