package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arma3-server-manager/format"
	"arma3-server-manager/optimistic"
	"arma3-server-manager/store"
	"arma3-server-manager/ui"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"webhooks"},
	Short:   "Manage webhook notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List webhooks",
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		if err := a.notifications.Refresh(cmd.Context()); err != nil {
			fail("Loading notifications", err)
		}
		items := a.notifications.Items()
		if len(items) == 0 {
			fmt.Println("No webhooks configured.")
			return
		}
		fmt.Println(ui.Header.Render(fmt.Sprintf("%-6s %-44s %-8s %-8s %s", "ID", "URL", "SERVER", "MODS", "LAST RUN")))
		for _, item := range items {
			n := item.Value
			fmt.Printf("%-6d %-42s%s  %-8s %-8s %s\n",
				n.ID,
				ui.Truncate(n.URL, 42),
				ui.PendingMark(item.Pending),
				yesNo(n.SendServer),
				yesNo(n.SendModUpdate),
				format.Timestamp(n.LastRun, a.cfg.Locale))
			if !n.Enabled {
				fmt.Println(ui.MutedText.Render("       (disabled)"))
			}
		}
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

var notificationsAddCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Add a webhook",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		sendServer, _ := cmd.Flags().GetBool("server")
		sendMods, _ := cmd.Flags().GetBool("mods")
		var url string
		if len(args) == 1 {
			url = args[0]
		} else if ui.Interactive() {
			if err := ui.WebhookForm(&url, &sendServer, &sendMods); err != nil {
				if errors.Is(err, ui.ErrAborted) {
					fmt.Fprintln(os.Stderr, "Cancelled.")
					return
				}
				fail("Add webhook", err)
			}
		}

		res, err := a.notifications.Add(url, sendServer, sendMods)
		if err != nil {
			fail("Add webhook", err)
		}
		if awaitResults(cmd.Context(), "Add webhook", res) > 0 {
			os.Exit(1)
		}
		fmt.Println(ui.SuccessText.Render("Webhook added."))
	},
}

var notificationsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable a webhook",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runNotification(cmd, args, "Toggle")
	},
}

var notificationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a webhook",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runNotification(cmd, args, "Delete")
	},
}

func runNotification(cmd *cobra.Command, args []string, action string) {
	a := bootstrap(configDir)
	id := parseID("notification", args[0])
	if err := a.notifications.Refresh(cmd.Context()); err != nil {
		fail("Loading notifications", err)
	}
	item, ok := a.notifications.ByID(id)
	if !ok {
		fail(action, fmt.Errorf("notification %d: %w", id, store.ErrNotFound))
	}
	var res *optimistic.Result
	if action == "Delete" {
		res = a.notifications.Delete(item.ID)
	} else {
		res = a.notifications.Toggle(item.ID)
	}
	if awaitResults(cmd.Context(), action, res) > 0 {
		os.Exit(1)
	}
	fmt.Println(ui.SuccessText.Render("Done."))
}

func init() {
	notificationsAddCmd.Flags().Bool("server", true, "send server events")
	notificationsAddCmd.Flags().Bool("mods", true, "send mod update events")

	notificationsCmd.AddCommand(notificationsListCmd, notificationsAddCmd, notificationsToggleCmd, notificationsDeleteCmd)
	rootCmd.AddCommand(notificationsCmd)
}
