package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"arma3-server-manager/db"
	"arma3-server-manager/format"
	"arma3-server-manager/logger"
	"arma3-server-manager/ui"
)

// historyCmd shows the local journal of background sync operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent background sync operations",
	Long: `Every optimistic change is sent to the backend in the background.
This lists the most recent outcomes, including changes that were rolled
back because the backend rejected them.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := openLocal(configDir)
		limit, _ := cmd.Flags().GetInt("limit")
		failedOnly, _ := cmd.Flags().GetBool("failed")

		records, err := db.RecentSyncRecords(db.DB, limit)
		if err != nil {
			logger.Log.Fatalw("Failed to query sync journal", zap.Error(err))
		}

		shown := 0
		for _, r := range records {
			if failedOnly && r.Status != db.SyncRolledBack {
				continue
			}
			fmt.Println(historyRow(r, cfg.Locale))
			shown++
		}
		if shown == 0 {
			fmt.Println("No sync operations recorded.")
		}
	},
}

func historyRow(r db.SyncRecord, locale string) string {
	status := ui.SuccessText.Render("ok    ")
	if r.Status == db.SyncRolledBack {
		status = ui.ErrorText.Render("failed")
	}
	line := fmt.Sprintf("%s  %s  %-12s %-14s %s", format.FormatDateTime(r.CreatedAt, locale), status, r.Resource, r.Operation, r.EntityKey)
	if r.Error != "" {
		line += "\n    " + ui.MutedText.Render(r.Error)
	}
	return line
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 50, "number of records to show")
	historyCmd.Flags().Bool("failed", false, "only show rolled back operations")
	rootCmd.AddCommand(historyCmd)
}
