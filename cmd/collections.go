package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"arma3-server-manager/arma"
	"arma3-server-manager/optimistic"
	"arma3-server-manager/store"
	"arma3-server-manager/ui"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"collection", "col"},
	Short:   "Manage load-ordered mod collections",
}

// loadCollections refreshes collections and returns the one with id.
func loadCollections(ctx context.Context, a *app, id int64) optimistic.Item[arma.Collection] {
	if err := a.collections.Refresh(ctx); err != nil {
		fail("Loading collections", err)
	}
	item, ok := a.collections.ByID(id)
	if !ok {
		fail("Collection", fmt.Errorf("collection %d: %w", id, store.ErrNotFound))
	}
	return item
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		var err error
		spin("Loading collections...", func() { err = a.collections.Refresh(cmd.Context()) })
		if err != nil {
			fail("Loading collections", err)
		}
		items := a.collections.Items()
		if len(items) == 0 {
			fmt.Println("No collections yet. Use 'collections create' to add one.")
			return
		}
		fmt.Println(ui.Header.Render(fmt.Sprintf("%-6s %-32s %-6s %s", "ID", "NAME", "MODS", "ACTIVE")))
		for _, item := range items {
			fmt.Println(collectionRow(item))
		}
	},
}

func collectionRow(item optimistic.Item[arma.Collection]) string {
	col := item.Value
	active := ""
	if col.IsActive {
		active = ui.SuccessText.Render("●")
	}
	name := fmt.Sprintf("%-30s", ui.Truncate(col.Name, 30)) + ui.PendingMark(item.Pending)
	return fmt.Sprintf("%-6d %s  %-6d %s", col.ID, name, col.ModCount, active)
}

var collectionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a collection and its load order",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		item := loadCollections(cmd.Context(), a, parseID("collection", args[0]))
		col := item.Value

		fmt.Println(ui.Title.Render(col.Name))
		if col.Description != nil && *col.Description != "" {
			fmt.Println(ui.Subtitle.Render(*col.Description))
		}
		for _, line := range loadOrderLines(col, a.mods) {
			fmt.Println(line)
		}
	},
}

// loadOrderLines renders the entries of col in load order.
func loadOrderLines(col arma.Collection, mods *store.Mods) []string {
	entries := slices.Clone(col.Mods)
	store.SortEntries(entries)
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%3d. %s", e.LoadOrder, entryName(e, mods)))
	}
	return lines
}

func entryName(e arma.CollectionEntry, mods *store.Mods) string {
	if e.Mod != nil {
		return fmt.Sprintf("%s (%d)", e.Mod.Name, e.Mod.SteamID)
	}
	if mods != nil {
		if mod, ok := mods.Find(func(m arma.ModSubscription) bool { return m.ID == e.ModID }); ok {
			return fmt.Sprintf("%s (%d)", mod.Value.Name, mod.Value.SteamID)
		}
	}
	return fmt.Sprintf("mod #%d", e.ModID)
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a collection",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		description, _ := cmd.Flags().GetString("description")
		var name string
		if len(args) == 1 {
			name = args[0]
		} else if ui.Interactive() {
			if err := ui.CollectionForm(&name, &description); err != nil {
				if errors.Is(err, ui.ErrAborted) {
					fmt.Fprintln(os.Stderr, "Collection creation cancelled.")
					return
				}
				fail("Create collection", err)
			}
		}

		res, err := a.collections.Create(name, description)
		if err != nil {
			fail("Create collection", err)
		}
		if awaitResults(cmd.Context(), "Create collection", res) > 0 {
			os.Exit(1)
		}
		fmt.Println(ui.SuccessText.Render(fmt.Sprintf("Created collection %s.", res.Key())))
	},
}

var collectionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a collection",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		item := loadCollections(cmd.Context(), a, parseID("collection", args[0]))
		res := a.collections.Rename(item.ID, args[1])
		if res == nil {
			fmt.Println("Name is blank, nothing changed.")
			return
		}
		if awaitResults(cmd.Context(), "Rename", res) > 0 {
			os.Exit(1)
		}
		fmt.Println(ui.SuccessText.Render("Collection renamed."))
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		item := loadCollections(cmd.Context(), a, parseID("collection", args[0]))
		if yes, _ := cmd.Flags().GetBool("yes"); !yes && ui.Interactive() {
			ok, err := ui.Confirm(fmt.Sprintf("Delete collection %s?", item.Value.Name), "Mods stay subscribed.")
			if err != nil || !ok {
				fmt.Fprintln(os.Stderr, "Deletion cancelled.")
				return
			}
		}
		if awaitResults(cmd.Context(), "Delete collection", a.collections.Delete(item.ID)) > 0 {
			os.Exit(1)
		}
		fmt.Println(ui.SuccessText.Render("Collection deleted."))
	},
}

var collectionsAddCmd = &cobra.Command{
	Use:   "add <id> <steam id>...",
	Short: "Append subscribed mods to a collection",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		ctx := cmd.Context()
		item := loadCollections(ctx, a, parseID("collection", args[0]))
		if err := a.mods.Refresh(ctx); err != nil {
			fail("Loading mods", err)
		}

		var mods []arma.ModSubscription
		for _, raw := range args[1:] {
			steamID := parseID("steam", raw)
			mod, ok := a.mods.FindBySteamID(steamID)
			if !ok {
				fmt.Fprintf(os.Stderr, "mod %d is not subscribed, skipping\n", steamID)
				continue
			}
			mods = append(mods, mod.Value)
		}
		if len(mods) == 0 {
			return
		}
		if awaitResults(ctx, "Add mods", a.collections.AddMods(item.ID, mods)) > 0 {
			os.Exit(1)
		}
		fmt.Println(ui.SuccessText.Render(fmt.Sprintf("Added %d mods to %s.", len(mods), item.Value.Name)))
	},
}

// resolveEntry finds the backend mod id for steamID within col.
func resolveEntry(col arma.Collection, mods *store.Mods, steamID int64) (int64, bool) {
	for _, e := range col.Mods {
		if e.Mod != nil && e.Mod.SteamID == steamID {
			return e.ModID, true
		}
	}
	if mod, ok := mods.FindBySteamID(steamID); ok {
		for _, e := range col.Mods {
			if e.ModID == mod.Value.ID {
				return e.ModID, true
			}
		}
	}
	return 0, false
}

var collectionsRemoveCmd = &cobra.Command{
	Use:   "remove <id> <steam id>",
	Short: "Remove a mod from a collection",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		ctx := cmd.Context()
		item := loadCollections(ctx, a, parseID("collection", args[0]))
		if err := a.mods.Refresh(ctx); err != nil {
			fail("Loading mods", err)
		}
		steamID := parseID("steam", args[1])
		modID, ok := resolveEntry(item.Value, a.mods, steamID)
		if !ok {
			fail("Remove mod", fmt.Errorf("mod %d is not in %s", steamID, item.Value.Name))
		}
		if awaitResults(ctx, "Remove mod", a.collections.RemoveMod(item.ID, modID)) > 0 {
			os.Exit(1)
		}
		fmt.Println(ui.SuccessText.Render("Mod removed from collection."))
	},
}

var collectionsActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Make a collection the active server's mod set",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		item := loadCollections(cmd.Context(), a, parseID("collection", args[0]))
		if awaitResults(cmd.Context(), "Activate", a.collections.SetActive(item.ID)) > 0 {
			os.Exit(1)
		}
		fmt.Println(ui.SuccessText.Render(fmt.Sprintf("%s is now active.", item.Value.Name)))
	},
}

var collectionsReorderCmd = &cobra.Command{
	Use:   "reorder <id> <steam id> <position>",
	Short: "Move a mod to a 1-based load order position",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		ctx := cmd.Context()
		item := loadCollections(ctx, a, parseID("collection", args[0]))
		if err := a.mods.Refresh(ctx); err != nil {
			fail("Loading mods", err)
		}
		steamID := parseID("steam", args[1])
		position := int(parseID("position", args[2]))
		modID, ok := resolveEntry(item.Value, a.mods, steamID)
		if !ok {
			fail("Reorder", fmt.Errorf("mod %d is not in %s", steamID, item.Value.Name))
		}

		ctrl, err := a.collections.Reorderer(item.ID)
		if err != nil {
			fail("Reorder", err)
		}
		if !ctrl.Move(modID, position-1) {
			fmt.Println("Mod is already at that position.")
			return
		}
		ctrl.Close()
		if err := ctrl.Settle(ctx); err != nil {
			fail("Reorder", err)
		}
		if !slices.Equal(ctrl.Order(), ctrl.Confirmed()) || slices.Index(ctrl.Confirmed(), modID) != min(position, len(ctrl.Confirmed()))-1 {
			fail("Reorder", errors.New("the backend rejected the move, load order unchanged"))
		}
		if err := a.collections.ApplyOrder(item.ID, ctrl.Order()); err != nil {
			fail("Reorder", err)
		}

		col, _ := a.collections.Get(item.ID)
		for _, line := range loadOrderLines(col, a.mods) {
			fmt.Println(line)
		}
	},
}

func init() {
	collectionsCreateCmd.Flags().String("description", "", "collection description")
	collectionsDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	collectionsCmd.AddCommand(
		collectionsListCmd,
		collectionsShowCmd,
		collectionsCreateCmd,
		collectionsRenameCmd,
		collectionsDeleteCmd,
		collectionsAddCmd,
		collectionsRemoveCmd,
		collectionsActivateCmd,
		collectionsReorderCmd,
	)
	rootCmd.AddCommand(collectionsCmd)
}
