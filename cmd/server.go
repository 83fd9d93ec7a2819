package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"arma3-server-manager/arma"
	"arma3-server-manager/ui"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Control the ARMA 3 dedicated server",
}

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List server configurations",
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		var (
			servers []arma.ServerConfig
			err     error
		)
		spin("Loading servers...", func() { servers, err = a.server.Servers(cmd.Context()) })
		if err != nil {
			fail("Loading servers", err)
		}
		if len(servers) == 0 {
			fmt.Println("No server configurations found.")
			return
		}
		fmt.Println(ui.Header.Render(fmt.Sprintf("%-6s %-24s %-28s %-8s %s", "ID", "NAME", "SERVER NAME", "PLAYERS", "ACTIVE")))
		for _, srv := range servers {
			fmt.Println(serverRow(srv))
		}
	},
}

func serverRow(srv arma.ServerConfig) string {
	active := ""
	if srv.IsActive {
		active = ui.SuccessText.Render("●")
	}
	return fmt.Sprintf("%-6d %-24s %-28s %-8d %s", srv.ID, ui.Truncate(srv.Name, 22), ui.Truncate(srv.ServerName, 26), srv.MaxPlayers, active)
}

var serverShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a server configuration",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		sensitive, _ := cmd.Flags().GetBool("sensitive")
		srv, err := a.server.Details(cmd.Context(), parseID("server", args[0]), sensitive)
		if err != nil {
			fail("Server", err)
		}

		fmt.Println(ui.Title.Render(srv.Name))
		fmt.Printf("Server name: %s\n", srv.ServerName)
		fmt.Printf("Players:     %d\n", srv.MaxPlayers)
		fmt.Printf("Binary:      %s\n", srv.ServerBinary)
		printOptional("Mission", srv.MissionFile)
		printOptional("Parameters", srv.AdditionalParams)
		if srv.CollectionID != nil {
			fmt.Printf("Collection:  %d\n", *srv.CollectionID)
		}
		if sensitive {
			printOptional("Password", srv.Password)
			printOptional("Admin pass", srv.AdminPassword)
		}
	},
}

func printOptional(label string, v *string) {
	if v != nil && *v != "" {
		fmt.Printf("%-12s %s\n", label+":", *v)
	}
}

func serverActionCmd(use, short, progress string, action func(a *app, ctx context.Context) (*arma.ActionResponse, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			a := bootstrap(configDir)
			var (
				res *arma.ActionResponse
				err error
			)
			spin(progress, func() { res, err = action(a, cmd.Context()) })
			if err != nil {
				fail("Server "+use, err)
			}
			fmt.Println(ui.SuccessText.Render(res.Message))
		},
	}
}

var serverActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Make a server configuration the active one",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		if err := a.server.Activate(cmd.Context(), parseID("server", args[0])); err != nil {
			fail("Activate server", err)
		}
		fmt.Println(ui.SuccessText.Render("Server activated."))
	},
}

var serverDetachCmd = &cobra.Command{
	Use:   "detach-collection",
	Short: "Clear the active server's mod collection",
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		if err := a.server.SetActiveCollection(cmd.Context(), nil); err != nil {
			fail("Detach collection", err)
		}
		fmt.Println(ui.SuccessText.Render("The active server no longer loads a collection."))
	},
}

func init() {
	serverShowCmd.Flags().Bool("sensitive", false, "include passwords")

	serverCmd.AddCommand(
		serverListCmd,
		serverShowCmd,
		serverActionCmd("start", "Start the server", "Starting server...", func(a *app, ctx context.Context) (*arma.ActionResponse, error) {
			return a.server.Start(ctx)
		}),
		serverActionCmd("stop", "Stop the server", "Stopping server...", func(a *app, ctx context.Context) (*arma.ActionResponse, error) {
			return a.server.Stop(ctx)
		}),
		serverActionCmd("restart", "Restart the server", "Restarting server...", func(a *app, ctx context.Context) (*arma.ActionResponse, error) {
			return a.server.Restart(ctx)
		}),
		serverActivateCmd,
		serverDetachCmd,
	)
	rootCmd.AddCommand(serverCmd)
}
