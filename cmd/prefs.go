package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"arma3-server-manager/db"
	"arma3-server-manager/prefs"
	"arma3-server-manager/ui"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Local display preferences",
}

var rowsPerPageCmd = &cobra.Command{
	Use:   "rows-per-page [20|50|100]",
	Short: "Show or set how many rows tables show per page",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		openLocal(configDir)
		store := prefs.New(db.DB)
		current := store.RowsPerPage()

		switch {
		case len(args) == 1:
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid page size %q\n", args[0])
				os.Exit(2)
			}
			current = n
		case ui.Interactive():
			if err := ui.RowsPerPageForm(&current, prefs.ValidPageSizes); err != nil {
				if errors.Is(err, ui.ErrAborted) {
					return
				}
				fail("Rows per page", err)
			}
		default:
			fmt.Println(current)
			return
		}

		if err := store.SetRowsPerPage(current); err != nil {
			fail("Rows per page", err)
		}
		fmt.Printf("Tables now show %d rows per page.\n", current)
	},
}

func init() {
	prefsCmd.AddCommand(rowsPerPageCmd)
	rootCmd.AddCommand(prefsCmd)
}
