package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "arma3-manager",
	Short: "Manage an ARMA 3 dedicated server from the terminal",
	Long: `Administer an ARMA 3 server manager backend: control the server,
subscribe to Steam Workshop mods, organise them into load-ordered
collections, and schedule maintenance tasks.

Run without a subcommand to print a status overview.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		defaultCmd.Run(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing the .env file")
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
