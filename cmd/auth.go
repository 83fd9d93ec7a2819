package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"arma3-server-manager/auth"
	"arma3-server-manager/logger"
	"arma3-server-manager/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the backend API token in the OS keychain",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API token for the configured backend",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(configDir)

		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			var err error
			token, err = ui.ReadSecret("API token: ")
			if err != nil {
				fail("Login", err)
			}
		}
		token = strings.TrimSpace(token)
		if token == "" {
			fmt.Fprintln(os.Stderr, "token must not be empty")
			os.Exit(2)
		}

		account := auth.AccountForTarget(cfg.APITarget)
		if err := auth.DefaultStore().SetToken(account, token); err != nil {
			fail("Login", err)
		}
		logger.Log.Infow("Stored API token", zap.String("account", account))
		fmt.Println(ui.SuccessText.Render(fmt.Sprintf("Token stored for %s.", account)))
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API token for the configured backend",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(configDir)

		account := auth.AccountForTarget(cfg.APITarget)
		err := auth.DefaultStore().DeleteToken(account)
		switch {
		case errors.Is(err, auth.ErrTokenNotFound):
			fmt.Printf("No token stored for %s.\n", account)
		case err != nil:
			fail("Logout", err)
		default:
			fmt.Println(ui.SuccessText.Render(fmt.Sprintf("Token removed for %s.", account)))
		}
	},
}

func init() {
	authLoginCmd.Flags().String("token", "", "token to store (prompted for when omitted)")
	authCmd.AddCommand(authLoginCmd, authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}
