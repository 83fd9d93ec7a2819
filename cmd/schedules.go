package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"arma3-server-manager/arma"
	"arma3-server-manager/format"
	"arma3-server-manager/optimistic"
	"arma3-server-manager/store"
	"arma3-server-manager/ui"
)

var schedulesCmd = &cobra.Command{
	Use:     "schedules",
	Aliases: []string{"schedule"},
	Short:   "Manage scheduled server tasks",
}

func loadSchedule(ctx context.Context, a *app, id int64) optimistic.Item[arma.Schedule] {
	if err := a.schedules.Refresh(ctx); err != nil {
		fail("Loading schedules", err)
	}
	item, ok := a.schedules.ByID(id)
	if !ok {
		fail("Schedule", fmt.Errorf("schedule %d: %w", id, store.ErrNotFound))
	}
	return item
}

var schedulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schedules",
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		var err error
		spin("Loading schedules...", func() { err = a.schedules.Refresh(cmd.Context()) })
		if err != nil {
			fail("Loading schedules", err)
		}
		items := a.schedules.Items()
		if len(items) == 0 {
			fmt.Println("No schedules configured.")
			return
		}
		fmt.Println(ui.Header.Render(fmt.Sprintf("%-6s %-28s %-16s %-10s %s", "ID", "NAME", "ACTION", "STATUS", "LAST RUN")))
		for _, item := range items {
			fmt.Println(scheduleRow(item, a.cfg.Locale))
		}
	},
}

func scheduleRow(item optimistic.Item[arma.Schedule], locale string) string {
	s := item.Value
	status := fmt.Sprintf("%-10s", format.StatusText(s.Enabled))
	if s.Enabled {
		status = ui.SuccessText.Render(status)
	} else {
		status = ui.MutedText.Render(status)
	}
	name := fmt.Sprintf("%-26s", ui.Truncate(s.Name, 26)) + ui.PendingMark(item.Pending)
	return fmt.Sprintf("%-6d %s  %-16s %s %s", s.ID, name, format.ActionLabel(s.Action), status, format.Timestamp(s.LastRun, locale))
}

var schedulesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a schedule",
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		flags := cmd.Flags()
		var ns store.NewSchedule
		ns.Name, _ = flags.GetString("name")
		ns.Action, _ = flags.GetString("action")
		ns.Recurrence, _ = flags.GetString("recurrence")
		if flags.Changed("enabled") {
			enabled, _ := flags.GetBool("enabled")
			ns.Enabled = &enabled
		}

		if ns.Name == "" && ui.Interactive() {
			v := ui.ScheduleValues{Action: arma.ScheduleServerRestart, Enabled: true}
			if err := ui.ScheduleForm(&v); err != nil {
				if errors.Is(err, ui.ErrAborted) {
					fmt.Fprintln(os.Stderr, "Schedule creation cancelled.")
					return
				}
				fail("Create schedule", err)
			}
			ns = store.NewSchedule{Name: v.Name, Action: v.Action, Recurrence: v.Recurrence, Enabled: &v.Enabled}
		}

		res, err := a.schedules.Create(ns)
		if err != nil {
			fail("Create schedule", err)
		}
		if awaitResults(cmd.Context(), "Create schedule", res) > 0 {
			os.Exit(1)
		}
		fmt.Println(ui.SuccessText.Render(fmt.Sprintf("Created schedule %s.", res.Key())))
	},
}

var schedulesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable a schedule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		item := loadSchedule(cmd.Context(), a, parseID("schedule", args[0]))
		if awaitResults(cmd.Context(), "Toggle", a.schedules.Toggle(item.ID)) > 0 {
			os.Exit(1)
		}
		fmt.Printf("%s is now %s.\n", item.Value.Name, format.StatusText(!item.Value.Enabled))
	},
}

var schedulesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a schedule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		item := loadSchedule(cmd.Context(), a, parseID("schedule", args[0]))
		if yes, _ := cmd.Flags().GetBool("yes"); !yes && ui.Interactive() {
			ok, err := ui.Confirm(fmt.Sprintf("Delete schedule %s?", item.Value.Name), "")
			if err != nil || !ok {
				fmt.Fprintln(os.Stderr, "Deletion cancelled.")
				return
			}
		}
		if awaitResults(cmd.Context(), "Delete schedule", a.schedules.Delete(item.ID)) > 0 {
			os.Exit(1)
		}
		fmt.Println(ui.SuccessText.Render("Schedule deleted."))
	},
}

var schedulesTriggerCmd = &cobra.Command{
	Use:   "trigger <id>",
	Short: "Run a schedule's action now",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		id := parseID("schedule", args[0])
		jobID, err := a.schedules.Trigger(cmd.Context(), id)
		if err != nil {
			fail("Trigger", err)
		}
		fmt.Printf("Triggered schedule %d (job %s)\n", id, jobID)
		if wait, _ := cmd.Flags().GetBool("wait"); wait && jobID != "" {
			if followJobs(cmd.Context(), a.client, []jobRef{{Label: "schedule " + args[0], ID: jobID}}) > 0 {
				os.Exit(1)
			}
		}
	},
}

var schedulesCronCmd = &cobra.Command{
	Use:   "cron <interval> <minutes|hours|days>",
	Short: "Print the cron expression for a repeat interval",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		interval, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid interval %q\n", args[0])
			os.Exit(2)
		}
		expr, err := format.ToCron(interval, args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, ui.ErrorText.Render(err.Error()))
			os.Exit(2)
		}
		fmt.Println(expr)
	},
}

func init() {
	schedulesCreateCmd.Flags().String("name", "", "schedule name")
	schedulesCreateCmd.Flags().String("action", arma.ScheduleServerRestart, "server_restart, server_start, server_stop or mod_update")
	schedulesCreateCmd.Flags().String("recurrence", arma.DefaultRecurrence, "how often the schedule runs")
	schedulesCreateCmd.Flags().Bool("enabled", true, "create the schedule enabled")
	schedulesDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	schedulesTriggerCmd.Flags().Bool("wait", false, "follow the triggered job until it finishes")

	schedulesCmd.AddCommand(schedulesListCmd, schedulesCreateCmd, schedulesToggleCmd, schedulesDeleteCmd, schedulesTriggerCmd, schedulesCronCmd)
	rootCmd.AddCommand(schedulesCmd)
}
