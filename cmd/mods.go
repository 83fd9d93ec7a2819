package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"arma3-server-manager/arma"
	"arma3-server-manager/format"
	"arma3-server-manager/optimistic"
	"arma3-server-manager/steam"
	"arma3-server-manager/ui"
)

var modsCmd = &cobra.Command{
	Use:   "mods",
	Short: "Manage Steam Workshop mod subscriptions",
}

var modsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribed mods",
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		ctx, cancel := withTimeout(cmd.Context(), a.cfg.RequestTimeout())
		defer cancel()

		var err error
		spin("Loading mods...", func() { err = a.mods.Refresh(ctx) })
		if err != nil {
			fail("Loading mods", err)
		}

		items := a.mods.Items()
		if len(items) == 0 {
			fmt.Println("No mods subscribed. Use 'mods subscribe <steam id>' to add one.")
			return
		}
		page, _ := cmd.Flags().GetInt("page")
		rows, pages := paginate(items, page, a.prefs.RowsPerPage())

		fmt.Println(ui.Header.Render(modHeader()))
		for _, item := range rows {
			fmt.Println(modRow(item, a.cfg.Locale))
		}
		fmt.Println(ui.Footer.Render(fmt.Sprintf("%d mods, page %d of %d", len(items), max(1, min(page, pages)), pages)))
	},
}

func modHeader() string {
	return fmt.Sprintf("%-12s %-36s %-18s %-12s %s", "STEAM ID", "NAME", "STATUS", "SIZE", "UPDATED")
}

func modRow(item optimistic.Item[arma.ModSubscription], locale string) string {
	mod := item.Value
	status := format.ModStatus(mod)
	label := ui.Colorize(fmt.Sprintf("%-18s", status.Label), ui.ModStatusColor(status.Type))
	name := fmt.Sprintf("%-34s", ui.Truncate(mod.Name, 34)) + ui.PendingMark(item.Pending)
	return fmt.Sprintf("%-12d %s  %s %-12s %s", mod.SteamID, name, label, format.FileSize(mod.SizeBytes), format.Timestamp(mod.LastUpdated, locale))
}

var modsSubscribeCmd = &cobra.Command{
	Use:   "subscribe [steam ids or collection id...]",
	Short: "Subscribe to mods by Steam id, or to every item of a Workshop collection",
	Long: `Subscribe to Steam Workshop items.

A single id is first tried as a Workshop collection; its items that are not
yet subscribed are added. If it is not a collection it is subscribed as a mod.
Several ids, separated by commas or spaces, are always treated as mods.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		input := strings.Join(args, " ")
		if input == "" {
			if !ui.Interactive() {
				fmt.Fprintln(os.Stderr, "no Steam ids given")
				os.Exit(2)
			}
			if err := ui.SubscribeForm(&input); err != nil {
				if errors.Is(err, ui.ErrAborted) {
					fmt.Fprintln(os.Stderr, "Subscription cancelled.")
					return
				}
				fail("Subscribe", err)
			}
		}

		ctx := cmd.Context()
		if err := a.mods.Refresh(ctx); err != nil {
			fail("Loading mods", err)
		}
		res, results, err := a.resolver.Subscribe(ctx, input, a.mods)
		if err != nil {
			fail("Subscribe", err)
		}
		if res.Kind == steam.KindCollection {
			fmt.Printf("Workshop collection %d: %d new items\n", res.CollectionID, len(res.ModIDs))
		}
		if len(results) == 0 {
			fmt.Println("Already subscribed to everything requested.")
			return
		}

		var failed int
		spin(fmt.Sprintf("Subscribing to %d mods...", len(results)), func() {
			failed = awaitResults(ctx, "Subscribe", results...)
		})
		fmt.Println(ui.SuccessText.Render(fmt.Sprintf("Subscribed to %d mods.", len(results)-failed)))
		if failed > 0 {
			os.Exit(1)
		}
	},
}

var modsRemoveCmd = &cobra.Command{
	Use:   "remove <steam id>",
	Short: "Unsubscribe from a mod",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		steamID := parseID("steam", args[0])
		ctx := cmd.Context()
		if err := a.mods.Refresh(ctx); err != nil {
			fail("Loading mods", err)
		}
		item, ok := a.mods.FindBySteamID(steamID)
		if !ok {
			fail("Remove", fmt.Errorf("mod %d is not subscribed", steamID))
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes && ui.Interactive() {
			confirmed, err := ui.Confirm(fmt.Sprintf("Remove %s?", item.Value.Name), "The subscription and its downloaded files are removed.")
			if err != nil || !confirmed {
				fmt.Fprintln(os.Stderr, "Removal cancelled.")
				return
			}
		}

		res, err := a.mods.Remove(steamID)
		if err != nil {
			fail("Remove", err)
		}
		if awaitResults(ctx, "Remove", res) > 0 {
			os.Exit(1)
		}
		fmt.Println(ui.SuccessText.Render(fmt.Sprintf("Removed %s.", item.Value.Name)))
	},
}

var modsDownloadCmd = &cobra.Command{
	Use:   "download <steam id>...",
	Short: "Download or update mod files on the server",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runModJobs(cmd, args, "Download")
	},
}

var modsUninstallCmd = &cobra.Command{
	Use:   "uninstall <steam id>...",
	Short: "Remove mod files from the server but keep the subscription",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runModJobs(cmd, args, "Uninstall")
	},
}

func runModJobs(cmd *cobra.Command, args []string, action string) {
	a := bootstrap(configDir)
	ctx := cmd.Context()
	if err := a.mods.Refresh(ctx); err != nil {
		fail("Loading mods", err)
	}

	request := a.mods.Download
	if action == "Uninstall" {
		request = a.mods.Uninstall
	}

	var jobs []jobRef
	for _, raw := range args {
		steamID := parseID("steam", raw)
		jobID, err := request(ctx, steamID)
		if err != nil {
			fmt.Fprintln(os.Stderr, ui.ErrorText.Render(fmt.Sprintf("%s %d: %s", action, steamID, errorText(err))))
			continue
		}
		label := fmt.Sprintf("%d", steamID)
		if item, ok := a.mods.FindBySteamID(steamID); ok {
			label = item.Value.Name
		}
		fmt.Printf("%s requested for %s (job %s)\n", action, label, jobID)
		jobs = append(jobs, jobRef{Label: label, ID: jobID})
	}

	failed := len(args) - len(jobs)
	if wait, _ := cmd.Flags().GetBool("wait"); wait && len(jobs) > 0 {
		failed += followJobs(ctx, a.client, jobs)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

var modsSetCmd = &cobra.Command{
	Use:   "set <steam id>",
	Short: "Change mod options",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		steamID := parseID("steam", args[0])
		ctx := cmd.Context()
		if err := a.mods.Refresh(ctx); err != nil {
			fail("Loading mods", err)
		}

		flags := cmd.Flags()
		res, err := a.mods.Edit(steamID, func(mod arma.ModSubscription) arma.ModSubscription {
			if flags.Changed("server-mod") {
				mod.ServerMod, _ = flags.GetBool("server-mod")
			}
			if flags.Changed("auto-update") {
				mod.ShouldUpdate, _ = flags.GetBool("auto-update")
			}
			if flags.Changed("arguments") {
				v, _ := flags.GetString("arguments")
				mod.Arguments = &v
			}
			if flags.Changed("name") {
				if v, _ := flags.GetString("name"); strings.TrimSpace(v) != "" {
					mod.Name = strings.TrimSpace(v)
				}
			}
			return mod
		})
		if err != nil {
			fail("Update", err)
		}
		if awaitResults(ctx, "Update", res) > 0 {
			os.Exit(1)
		}
		fmt.Println(ui.SuccessText.Render("Mod updated."))
	},
}

var modsInfoCmd = &cobra.Command{
	Use:   "info <steam id>",
	Short: "Show Steam Workshop details for a mod",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		steamID := parseID("steam", args[0])
		ctx, cancel := withTimeout(cmd.Context(), a.cfg.RequestTimeout())
		defer cancel()

		var (
			helper *arma.ModHelper
			err    error
		)
		spin("Fetching Workshop details...", func() { helper, err = a.mods.Helper(ctx, steamID) })
		if err != nil {
			fail("Info", err)
		}

		fmt.Println(ui.Title.Render(helper.Title))
		fmt.Printf("Size:    %s\n", helper.FileSize)
		if t, perr := format.ParseTimestamp(helper.TimeUpdated); perr == nil {
			fmt.Printf("Updated: %s\n", format.FormatDateTime(t, a.cfg.Locale))
		}
		if len(helper.Tags) > 0 {
			fmt.Printf("Tags:    %s\n", strings.Join(helper.Tags, ", "))
		}
		if helper.Description != "" {
			fmt.Println()
			fmt.Println(ui.Card.Render(ui.Truncate(helper.Description, 600)))
		}
	},
}

func init() {
	modsListCmd.Flags().Int("page", 1, "page to show")
	modsRemoveCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	modsDownloadCmd.Flags().Bool("wait", false, "follow the download jobs until they finish")
	modsUninstallCmd.Flags().Bool("wait", false, "follow the uninstall jobs until they finish")
	modsSetCmd.Flags().Bool("server-mod", false, "load as a server-side mod")
	modsSetCmd.Flags().Bool("auto-update", false, "let scheduled mod updates refresh this mod")
	modsSetCmd.Flags().String("arguments", "", "extra launch arguments")
	modsSetCmd.Flags().String("name", "", "display name")

	modsCmd.AddCommand(modsListCmd, modsSubscribeCmd, modsRemoveCmd, modsDownloadCmd, modsUninstallCmd, modsSetCmd, modsInfoCmd)
	rootCmd.AddCommand(modsCmd)
}
